// Package desktop posts input to the host OS through robotgo. It needs cgo
// and a display; builds without cgo get a stub that refuses to start.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
	"github.com/xkilldash9x/deskpilot/internal/synth"
)

// ErrUnavailable is returned when the binary was built without native input.
var ErrUnavailable = errors.New("desktop: native input is not available in this build (requires cgo)")

// Backend is the slice of robotgo the device uses.
type Backend interface {
	Move(x, y int)
	Toggle(button string, up bool) error
	Scroll(lines int)
	KeyToggle(key string, up bool) error
	TypeStr(s string)
	ScreenSize() (int, int)
	Location() (int, int)
}

// Device is a synth.Device driving the real pointer and keyboard.
//
// The OS has no way to post a mouse event away from the cursor, so every
// mouse event lands on the real pointer and leaves it there. Callers that
// need the pointer preserved across synthetic clicks must use the cdp
// device.
type Device struct {
	backend Backend
	logger  *zap.Logger
	// robotgo is not safe for concurrent use.
	mu sync.Mutex
}

var _ synth.Device = (*Device)(nil)

// New opens the native backend.
func New(logger *zap.Logger) (*Device, error) {
	b, err := nativeBackend()
	if err != nil {
		return nil, err
	}
	return NewWithBackend(b, logger), nil
}

// NewWithBackend wraps b.
func NewWithBackend(b Backend, logger *zap.Logger) *Device {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Device{backend: b, logger: logger.Named("desktop")}
}

func (d *Device) Sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Device) ScreenSize(ctx context.Context) (schemas.Size, error) {
	if err := ctx.Err(); err != nil {
		return schemas.Size{}, err
	}
	d.mu.Lock()
	w, h := d.backend.ScreenSize()
	d.mu.Unlock()
	return schemas.Size{Width: float64(w), Height: float64(h)}, nil
}

func (d *Device) PointerPosition(ctx context.Context) (schemas.Point, error) {
	if err := ctx.Err(); err != nil {
		return schemas.Point{}, err
	}
	d.mu.Lock()
	x, y := d.backend.Location()
	d.mu.Unlock()
	return schemas.Point{X: float64(x), Y: float64(y)}, nil
}

func (d *Device) WarpPointer(ctx context.Context, p schemas.Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.backend.Move(pixel(p.X), pixel(p.Y))
	return nil
}

// DispatchMouseEvent moves the OS pointer to the event location, unless it
// is already there, and then toggles the button for presses and releases.
// The OS tracks held buttons, so drag steps are plain moves.
func (d *Device) DispatchMouseEvent(ctx context.Context, data schemas.MouseEventData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if x, y := pixel(data.X), pixel(data.Y); !d.at(x, y) {
		d.backend.Move(x, y)
	}
	switch data.Type {
	case schemas.MouseMove, schemas.MouseDrag:
		return nil
	case schemas.MousePress, schemas.MouseRelease:
		if data.Button == schemas.ButtonNone || data.Button == "" {
			return fmt.Errorf("desktop: %s needs a button", data.Type)
		}
		if err := d.backend.Toggle(string(data.Button), data.Type == schemas.MouseRelease); err != nil {
			return fmt.Errorf("desktop: %s %s: %w", data.Button, data.Type, err)
		}
		return nil
	default:
		return fmt.Errorf("desktop: unsupported mouse event %q", data.Type)
	}
}

func (d *Device) DispatchScrollEvent(ctx context.Context, data schemas.ScrollEventData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.backend.Scroll(data.Lines)
	return nil
}

// DispatchKeyEvent toggles a named key. Literal characters go through
// TypeStr on key-down so layouts and IMEs see the real character; the
// matching key-up is a no-op.
func (d *Device) DispatchKeyEvent(ctx context.Context, data schemas.KeyEventData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if data.Key == "" {
		if data.Type == schemas.KeyDown && data.Text != "" {
			d.backend.TypeStr(data.Text)
		}
		return nil
	}
	key := keyName(data.Key)
	if err := d.backend.KeyToggle(key, data.Type == schemas.KeyUp); err != nil {
		return fmt.Errorf("desktop: key %s %s: %w", key, data.Type, err)
	}
	return nil
}

func (d *Device) at(x, y int) bool {
	cx, cy := d.backend.Location()
	return cx == x && cy == y
}

func pixel(v float64) int {
	return int(math.Round(v))
}

// keyName maps common aliases onto robotgo's key names.
func keyName(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	switch key {
	case "cmd", "meta", "super", "win":
		return "command"
	case "ctrl":
		return "control"
	case "option":
		return "alt"
	case "return":
		return "enter"
	case "esc":
		return "escape"
	case "page_up":
		return "pageup"
	case "page_down":
		return "pagedown"
	}
	return key
}
