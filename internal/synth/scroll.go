package synth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// ClampScrollLines bounds a requested scroll amount to [0, MaxScrollLines].
func ClampScrollLines(lines int) int {
	if lines < 0 {
		return 0
	}
	if lines > MaxScrollLines {
		return MaxScrollLines
	}
	return lines
}

// Scroll posts single-line wheel events at the current pointer location and
// returns how many were posted. The amount is clamped to MaxScrollLines.
func (s *Synthesizer) Scroll(ctx context.Context, dir schemas.ScrollDirection, lines int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scroll(ctx, dir, lines)
}

// ScrollAt warps the real pointer to p and scrolls there. Unlike clicks this
// relocates the visible cursor, and the previous location is not restored.
func (s *Synthesizer) ScrollAt(ctx context.Context, p schemas.Point, dir schemas.ScrollDirection, lines int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.device.WarpPointer(ctx, p); err != nil {
		return 0, synthErr("scroll warp", err)
	}
	s.pointer = p
	return s.scroll(ctx, dir, lines)
}

// scroll is the lock-free core of Scroll. The caller must hold mu.
func (s *Synthesizer) scroll(ctx context.Context, dir schemas.ScrollDirection, lines int) (int, error) {
	var sign int
	switch dir {
	case schemas.ScrollUp:
		sign = 1
	case schemas.ScrollDown:
		sign = -1
	default:
		return 0, fmt.Errorf("synth: unknown scroll direction %q", dir)
	}

	requested := lines
	lines = ClampScrollLines(lines)
	if lines != requested {
		s.logger.Debug("Scroll amount clamped.", zap.Int("requested", requested), zap.Int("lines", lines))
	}

	posted := 0
	for i := 0; i < lines; i++ {
		// Loop guard independent of the clamp above.
		if i >= MaxScrollLines {
			break
		}
		if err := s.device.DispatchScrollEvent(ctx, schemas.ScrollEventData{Lines: sign}); err != nil {
			return posted, synthErr(fmt.Sprintf("scroll tick %d", i+1), err)
		}
		posted++
		if err := s.sleep(ctx, "scroll tick delay", s.timing.ScrollTick); err != nil {
			return posted, err
		}
	}
	return posted, nil
}
