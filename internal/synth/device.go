package synth

import (
	"context"
	"time"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// Device is the single owned handle onto the host input subsystem. Everything
// the Synthesizer emits goes through it, which keeps the synthesis logic
// independent of the backend (CDP, native OS, dry run).
type Device interface {
	// Sleep pauses for d. It is the only suspension point the Synthesizer
	// uses, so backends and tests can observe or compress timing.
	Sleep(ctx context.Context, d time.Duration) error
	// ScreenSize reports the pixel dimensions of the active display.
	ScreenSize(ctx context.Context) (schemas.Size, error)
	// PointerPosition reports where the real pointer currently is.
	PointerPosition(ctx context.Context) (schemas.Point, error)
	// WarpPointer relocates the real, visible pointer.
	WarpPointer(ctx context.Context, p schemas.Point) error
	// DispatchMouseEvent posts a synthetic pointer or button event.
	DispatchMouseEvent(ctx context.Context, data schemas.MouseEventData) error
	// DispatchScrollEvent posts one wheel tick at the pointer location.
	DispatchScrollEvent(ctx context.Context, data schemas.ScrollEventData) error
	// DispatchKeyEvent posts one half of a keystroke.
	DispatchKeyEvent(ctx context.Context, data schemas.KeyEventData) error
}
