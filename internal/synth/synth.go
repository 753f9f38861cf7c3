// Package synth turns resolved actions into ordered, timed synthetic input
// events on an injected Device.
package synth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// cleanupTimeout bounds best-effort releases issued after a failure.
const cleanupTimeout = 2 * time.Second

// SynthesisError wraps a failed device call with the operation it belonged to.
type SynthesisError struct {
	Op  string
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("input synthesis failed during %s: %v", e.Op, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

func synthErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SynthesisError{Op: op, Err: err}
}

// Synthesizer owns the event sequencing for every input action. Public
// methods hold mu for the whole action, so events of two actions never
// interleave even if a caller misuses it from several goroutines.
type Synthesizer struct {
	mu     sync.Mutex
	timing Timing
	logger *zap.Logger
	device Device
	now    func() time.Time

	// pointer is where our synthetic events last put the pointer.
	pointer schemas.Point
	// heldButton is non-none while a button-down has not been released.
	heldButton schemas.MouseButton
	// lastStamp keeps drag timestamps strictly increasing.
	lastStamp time.Time
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

// New creates a Synthesizer bound to device.
func New(device Device, timing Timing, logger *zap.Logger, opts ...Option) (*Synthesizer, error) {
	if device == nil {
		return nil, fmt.Errorf("synth: device is required")
	}
	if err := timing.Validate(); err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Synthesizer{
		timing:     timing,
		logger:     logger.Named("synth"),
		device:     device,
		now:        time.Now,
		heldButton: schemas.ButtonNone,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Device returns the underlying device handle.
func (s *Synthesizer) Device() Device { return s.device }

// Timing returns the active delays.
func (s *Synthesizer) Timing() Timing { return s.timing }

// ScreenSize queries the display dimensions from the device.
func (s *Synthesizer) ScreenSize(ctx context.Context) (schemas.Size, error) {
	size, err := s.device.ScreenSize(ctx)
	if err != nil {
		return schemas.Size{}, synthErr("screen size", err)
	}
	if !size.Valid() {
		return schemas.Size{}, synthErr("screen size", fmt.Errorf("device reported %.0fx%.0f", size.Width, size.Height))
	}
	return size, nil
}

// HeldButton reports a button left pressed by an action that failed and
// could not release it. ButtonNone means the input state is clean.
func (s *Synthesizer) HeldButton() schemas.MouseButton {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heldButton
}

// nextStamp returns a timestamp strictly after the previous one.
// The caller must hold mu.
func (s *Synthesizer) nextStamp() time.Time {
	ts := s.now()
	if !ts.After(s.lastStamp) {
		ts = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = ts
	return ts
}

// sleep wraps Device.Sleep, skipping zero delays. The caller must hold mu.
func (s *Synthesizer) sleep(ctx context.Context, op string, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return synthErr(op, s.device.Sleep(ctx, d))
}
