package synth

import (
	"fmt"
	"time"
)

// MaxScrollLines caps a single scroll request.
const MaxScrollLines = 25

// Timing holds the fixed delays between synthetic events. The defaults are
// tuned for UI toolkits that drop events posted faster than a human could.
type Timing struct {
	// ClickSettle is the pause between the pointer move and button-down.
	ClickSettle time.Duration
	// DragSteps is the number of interpolated drag events.
	DragSteps int
	// DragDuration is the total time spent interpolating a drag.
	DragDuration time.Duration
	// ScrollTick is the pause after each wheel event.
	ScrollTick time.Duration
	// TypeInterval is the pause between characters of typed text.
	TypeInterval time.Duration
}

// DefaultTiming returns the stock delays.
func DefaultTiming() Timing {
	return Timing{
		ClickSettle:  30 * time.Millisecond,
		DragSteps:    60,
		DragDuration: 500 * time.Millisecond,
		ScrollTick:   3 * time.Millisecond,
		TypeInterval: 0,
	}
}

// Validate rejects values that would break event sequencing.
func (t Timing) Validate() error {
	if t.DragSteps < 1 {
		return fmt.Errorf("drag steps must be at least 1, got %d", t.DragSteps)
	}
	if t.ClickSettle < 0 || t.DragDuration < 0 || t.ScrollTick < 0 || t.TypeInterval < 0 {
		return fmt.Errorf("timing delays must not be negative")
	}
	return nil
}

// dragStepDelay is the pause after each interpolated drag event.
func (t Timing) dragStepDelay() time.Duration {
	return t.DragDuration / time.Duration(t.DragSteps)
}
