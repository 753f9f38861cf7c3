// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// -- Device Recorder --

// RecordingDevice implements synth.Device by recording every call. It is the
// shared fake for synthesizer and dispatcher tests.
//
// Only WarpPointer moves the reported pointer: synthetic events never touch
// the "real" cursor, which is what lets tests check that clicks do not
// relocate it.
type RecordingDevice struct {
	mu sync.Mutex

	Size    schemas.Size
	Pointer schemas.Point

	MouseEvents  []schemas.MouseEventData
	ScrollEvents []schemas.ScrollEventData
	KeyEvents    []schemas.KeyEventData
	Warps        []schemas.Point
	Sleeps       []time.Duration
	// Ops is the interleaved call log, e.g. "warp", "scroll", "mouse:mousePressed".
	Ops []string

	// ReturnErr is returned by dispatch calls once FailOnCall is reached
	// (FailOnCall 0 means every call). Calls are counted across mouse,
	// scroll and key dispatches.
	ReturnErr  error
	FailOnCall int
	// CancelOnCall invokes CancelFunc after that many dispatches.
	CancelOnCall int
	CancelFunc   context.CancelFunc
	callCount    int

	// Overrides replace the default behavior when set. They may call the
	// matching Default* method.
	MockSleep               func(ctx context.Context, d time.Duration) error
	MockDispatchMouseEvent  func(ctx context.Context, data schemas.MouseEventData) error
	MockDispatchScrollEvent func(ctx context.Context, data schemas.ScrollEventData) error
	MockDispatchKeyEvent    func(ctx context.Context, data schemas.KeyEventData) error
	MockScreenSize          func(ctx context.Context) (schemas.Size, error)
	MockWarpPointer         func(ctx context.Context, p schemas.Point) error
}

// NewRecordingDevice returns a recorder for a display of the given size.
func NewRecordingDevice(width, height float64) *RecordingDevice {
	return &RecordingDevice{Size: schemas.Size{Width: width, Height: height}}
}

// dispatch records the call and applies the failure and cancellation knobs.
// The caller must hold mu.
func (d *RecordingDevice) dispatch(ctx context.Context, op string) error {
	d.Ops = append(d.Ops, op)
	d.callCount++

	if d.ReturnErr != nil && (d.FailOnCall == 0 || d.callCount >= d.FailOnCall) {
		return d.ReturnErr
	}
	// Cleanup paths run on fresh contexts; only a cancelled ctx fails here.
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.CancelOnCall > 0 && d.callCount == d.CancelOnCall && d.CancelFunc != nil {
		d.CancelFunc()
	}
	return nil
}

func (d *RecordingDevice) Sleep(ctx context.Context, dur time.Duration) error {
	if d.MockSleep != nil {
		return d.MockSleep(ctx, dur)
	}
	return d.DefaultSleep(ctx, dur)
}

// DefaultSleep records the duration without sleeping.
func (d *RecordingDevice) DefaultSleep(ctx context.Context, dur time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Sleeps = append(d.Sleeps, dur)
	return nil
}

func (d *RecordingDevice) ScreenSize(ctx context.Context) (schemas.Size, error) {
	if d.MockScreenSize != nil {
		return d.MockScreenSize(ctx)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Size, nil
}

func (d *RecordingDevice) PointerPosition(ctx context.Context) (schemas.Point, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Pointer, nil
}

func (d *RecordingDevice) WarpPointer(ctx context.Context, p schemas.Point) error {
	if d.MockWarpPointer != nil {
		return d.MockWarpPointer(ctx, p)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Ops = append(d.Ops, "warp")
	if err := ctx.Err(); err != nil {
		return err
	}
	d.Warps = append(d.Warps, p)
	d.Pointer = p
	return nil
}

func (d *RecordingDevice) DispatchMouseEvent(ctx context.Context, data schemas.MouseEventData) error {
	if d.MockDispatchMouseEvent != nil {
		return d.MockDispatchMouseEvent(ctx, data)
	}
	return d.DefaultDispatchMouseEvent(ctx, data)
}

// DefaultDispatchMouseEvent records the event first, so cleanup releases
// that follow a failure are visible to the test.
func (d *RecordingDevice) DefaultDispatchMouseEvent(ctx context.Context, data schemas.MouseEventData) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.MouseEvents = append(d.MouseEvents, data)
	return d.dispatch(ctx, "mouse:"+string(data.Type))
}

func (d *RecordingDevice) DispatchScrollEvent(ctx context.Context, data schemas.ScrollEventData) error {
	if d.MockDispatchScrollEvent != nil {
		return d.MockDispatchScrollEvent(ctx, data)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ScrollEvents = append(d.ScrollEvents, data)
	return d.dispatch(ctx, "scroll")
}

func (d *RecordingDevice) DispatchKeyEvent(ctx context.Context, data schemas.KeyEventData) error {
	if d.MockDispatchKeyEvent != nil {
		return d.MockDispatchKeyEvent(ctx, data)
	}
	return d.DefaultDispatchKeyEvent(ctx, data)
}

// DefaultDispatchKeyEvent is the standard recording behavior for key events.
func (d *RecordingDevice) DefaultDispatchKeyEvent(ctx context.Context, data schemas.KeyEventData) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.KeyEvents = append(d.KeyEvents, data)
	return d.dispatch(ctx, fmt.Sprintf("key:%s", data.Type))
}

// Snapshot returns copies of the recorded mouse events and op log.
func (d *RecordingDevice) Snapshot() ([]schemas.MouseEventData, []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]schemas.MouseEventData(nil), d.MouseEvents...), append([]string(nil), d.Ops...)
}

// -- Affordance Mocks --

// MockHighlighter mocks affordance.Highlighter.
type MockHighlighter struct {
	mock.Mock
}

func (m *MockHighlighter) Flash(p schemas.Point) {
	m.Called(p)
}

func (m *MockHighlighter) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockOverlay mocks affordance.Overlay.
type MockOverlay struct {
	mock.Mock
}

func (m *MockOverlay) ShowRing(ctx context.Context, id string, p schemas.Point, radius float64) error {
	return m.Called(ctx, id, p, radius).Error(0)
}

func (m *MockOverlay) HideRing(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// -- Launcher and Recorder Mocks --

// MockLauncher mocks executor.Launcher.
type MockLauncher struct {
	mock.Mock
}

func (m *MockLauncher) OpenApp(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockLauncher) RunScript(ctx context.Context, script string) (string, error) {
	args := m.Called(ctx, script)
	return args.String(0), args.Error(1)
}

// MockRecorder mocks executor.Recorder.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, fileName, text string) (string, error) {
	args := m.Called(ctx, fileName, text)
	return args.String(0), args.Error(1)
}
