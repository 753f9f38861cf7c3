package synth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// Click presses and releases button at p using synthetic events only.
//
// The real pointer location is captured first and logged, but never
// restored.
func (s *Synthesizer) Click(ctx context.Context, p schemas.Point, button schemas.MouseButton) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if button != schemas.ButtonLeft && button != schemas.ButtonRight && button != schemas.ButtonMiddle {
		return fmt.Errorf("synth: unsupported click button %q", button)
	}

	prior, err := s.device.PointerPosition(ctx)
	if err != nil {
		s.logger.Debug("Could not capture pointer before click.", zap.Error(err))
	} else {
		s.logger.Debug("Pointer captured before click.", zap.Stringer("prior", prior), zap.Stringer("target", p))
	}

	move := schemas.MouseEventData{
		Type:   schemas.MouseMove,
		X:      p.X,
		Y:      p.Y,
		Button: schemas.ButtonNone,
	}
	if err := s.device.DispatchMouseEvent(ctx, move); err != nil {
		return synthErr("click move", err)
	}
	s.pointer = p

	// Give the target a moment to register the hover before the press.
	if err := s.sleep(ctx, "click settle", s.timing.ClickSettle); err != nil {
		return err
	}

	if err := s.pressButton(ctx, button, 1); err != nil {
		return synthErr("click press", err)
	}
	if err := s.releaseButton(ctx, false); err != nil {
		s.cleanupRelease(false)
		return synthErr("click release", err)
	}
	return nil
}

// Move posts a single pointer-moved event at p. It does not restore the
// previous location.
func (s *Synthesizer) Move(ctx context.Context, p schemas.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := schemas.MouseEventData{
		Type:    schemas.MouseMove,
		X:       p.X,
		Y:       p.Y,
		Button:  schemas.ButtonNone,
		Buttons: schemas.ButtonsMask(s.heldButton),
	}
	if err := s.device.DispatchMouseEvent(ctx, data); err != nil {
		return synthErr("move", err)
	}
	s.pointer = p
	return nil
}

// Drag presses the left button at from, posts DragSteps interpolated drag
// events ending exactly at to, then releases at to. Every event carries a
// strictly increasing timestamp.
//
// Cancellation is only observed through device calls. When any step fails
// the button is released at the last reached point on a fresh context; if
// that release also fails the button stays held and HeldButton reports it.
func (s *Synthesizer) Drag(ctx context.Context, from, to schemas.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pointer = from
	down := schemas.MouseEventData{
		Type:       schemas.MousePress,
		X:          from.X,
		Y:          from.Y,
		Button:     schemas.ButtonLeft,
		Buttons:    schemas.ButtonsMask(schemas.ButtonLeft),
		ClickCount: 1,
		Timestamp:  s.nextStamp(),
	}
	if err := s.device.DispatchMouseEvent(ctx, down); err != nil {
		return synthErr("drag press", err)
	}
	s.heldButton = schemas.ButtonLeft

	steps := s.timing.DragSteps
	delay := s.timing.dragStepDelay()
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pt := schemas.Point{
			X: from.X + (to.X-from.X)*t,
			Y: from.Y + (to.Y-from.Y)*t,
		}
		if i == steps {
			// Avoid float drift on the final step.
			pt = to
		}
		step := schemas.MouseEventData{
			Type:       schemas.MouseDrag,
			X:          pt.X,
			Y:          pt.Y,
			Button:     schemas.ButtonLeft,
			Buttons:    schemas.ButtonsMask(schemas.ButtonLeft),
			ClickCount: 1,
			Timestamp:  s.nextStamp(),
		}
		if err := s.device.DispatchMouseEvent(ctx, step); err != nil {
			s.logger.Warn("Drag step failed, attempting cleanup (mouse release).", zap.Int("step", i), zap.Error(err))
			s.cleanupRelease(true)
			return synthErr(fmt.Sprintf("drag step %d", i), err)
		}
		s.pointer = pt

		if err := s.sleep(ctx, "drag step delay", delay); err != nil {
			s.logger.Warn("Drag interrupted, attempting cleanup (mouse release).", zap.Int("step", i), zap.Error(err))
			s.cleanupRelease(true)
			return err
		}
	}

	s.pointer = to
	if err := s.releaseButton(ctx, true); err != nil {
		s.cleanupRelease(true)
		return synthErr("drag release", err)
	}
	return nil
}

// pressButton posts button-down at the current pointer. The caller must hold mu.
func (s *Synthesizer) pressButton(ctx context.Context, button schemas.MouseButton, clicks int) error {
	data := schemas.MouseEventData{
		Type:       schemas.MousePress,
		X:          s.pointer.X,
		Y:          s.pointer.Y,
		Button:     button,
		Buttons:    schemas.ButtonsMask(button),
		ClickCount: clicks,
	}
	if err := s.device.DispatchMouseEvent(ctx, data); err != nil {
		return err
	}
	s.heldButton = button
	return nil
}

// releaseButton posts button-up for the held button at the current pointer.
// State is only cleared when the device accepted the event, so a failed
// release stays visible through HeldButton. Drag releases are stamped to
// continue the drag's timestamp sequence. The caller must hold mu.
func (s *Synthesizer) releaseButton(ctx context.Context, stamped bool) error {
	if s.heldButton == schemas.ButtonNone {
		return nil
	}
	data := schemas.MouseEventData{
		Type:       schemas.MouseRelease,
		X:          s.pointer.X,
		Y:          s.pointer.Y,
		Button:     s.heldButton,
		Buttons:    0,
		ClickCount: 1,
	}
	if stamped {
		data.Timestamp = s.nextStamp()
	}
	if err := s.device.DispatchMouseEvent(ctx, data); err != nil {
		return err
	}
	s.heldButton = schemas.ButtonNone
	return nil
}

// cleanupRelease is the best-effort release after a failure. It runs on a
// fresh context so that a cancelled action can still let go of the button.
func (s *Synthesizer) cleanupRelease(stamped bool) {
	if s.heldButton == schemas.ButtonNone {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	if err := s.releaseButton(ctx, stamped); err != nil {
		s.logger.Error("Failed to release mouse button after error; button may remain pressed.",
			zap.String("button", string(s.heldButton)),
			zap.Stringer("at", s.pointer),
			zap.Error(err))
	}
}
