// Package dryrun is an input device that performs nothing. It logs every
// event it would have posted and keeps a simulated pointer and clock, which
// makes it the safe default for validating batches on a real machine.
//
// Like a browser target, synthetic mouse events do not move the cursor;
// only WarpPointer does.
package dryrun

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// Device is a simulated display of a fixed size.
type Device struct {
	size   schemas.Size
	logger *zap.Logger

	mu sync.Mutex
	// cursor is the real pointer, moved only by WarpPointer.
	cursor schemas.Point
	// synthetic is where the last mouse event was delivered.
	synthetic schemas.Point
	elapsed   time.Duration
	events    int
}

// New creates a dry-run device for a width x height display. The pointer
// starts at the centre.
func New(width, height float64, logger *zap.Logger) *Device {
	if logger == nil {
		logger = zap.NewNop()
	}
	centre := schemas.Point{X: width / 2, Y: height / 2}
	return &Device{
		size:      schemas.Size{Width: width, Height: height},
		logger:    logger.Named("dryrun"),
		cursor:    centre,
		synthetic: centre,
	}
}

// Sleep advances the simulated clock without blocking.
func (d *Device) Sleep(ctx context.Context, dur time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dur <= 0 {
		return nil
	}
	d.mu.Lock()
	d.elapsed += dur
	d.mu.Unlock()
	return nil
}

func (d *Device) ScreenSize(ctx context.Context) (schemas.Size, error) {
	if err := ctx.Err(); err != nil {
		return schemas.Size{}, err
	}
	return d.size, nil
}

func (d *Device) PointerPosition(ctx context.Context) (schemas.Point, error) {
	if err := ctx.Err(); err != nil {
		return schemas.Point{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor, nil
}

func (d *Device) WarpPointer(ctx context.Context, p schemas.Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	d.cursor = p
	d.events++
	d.mu.Unlock()
	d.logger.Debug("warp", zap.Float64("x", p.X), zap.Float64("y", p.Y))
	return nil
}

func (d *Device) DispatchMouseEvent(ctx context.Context, data schemas.MouseEventData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	d.synthetic = schemas.Point{X: data.X, Y: data.Y}
	d.events++
	d.mu.Unlock()

	// Drag steps are too chatty for anything above debug.
	log := d.logger.Info
	if data.Type == schemas.MouseMove || data.Type == schemas.MouseDrag {
		log = d.logger.Debug
	}
	log("mouse",
		zap.String("type", string(data.Type)),
		zap.Float64("x", data.X),
		zap.Float64("y", data.Y),
		zap.String("button", string(data.Button)),
		zap.Int64("buttons", data.Buttons),
	)
	return nil
}

func (d *Device) DispatchScrollEvent(ctx context.Context, data schemas.ScrollEventData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	d.events++
	at := d.cursor
	d.mu.Unlock()
	d.logger.Debug("scroll", zap.Int("lines", data.Lines), zap.Stringer("at", at))
	return nil
}

func (d *Device) DispatchKeyEvent(ctx context.Context, data schemas.KeyEventData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	d.events++
	d.mu.Unlock()
	d.logger.Debug("key",
		zap.String("type", string(data.Type)),
		zap.String("key", data.Key),
		zap.String("text", data.Text),
	)
	return nil
}

// ShowRing logs the highlight a real overlay would draw.
func (d *Device) ShowRing(ctx context.Context, id string, p schemas.Point, radius float64) error {
	d.logger.Info("highlight", zap.String("id", id), zap.Stringer("at", p), zap.Float64("radius", radius))
	return nil
}

func (d *Device) HideRing(ctx context.Context, id string) error {
	d.logger.Debug("highlight dismissed", zap.String("id", id))
	return nil
}

// Elapsed is the total simulated time slept.
func (d *Device) Elapsed() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.elapsed
}

// LastMouseEvent is where the most recent synthetic mouse event landed.
func (d *Device) LastMouseEvent() schemas.Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.synthetic
}

// Events counts everything posted so far.
func (d *Device) Events() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.events
}
