// File: internal/mocks/mocks_test.go
package mocks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

func TestRecordingDevice_FailOnCall(t *testing.T) {
	d := NewRecordingDevice(100, 100)
	d.ReturnErr = errors.New("boom")
	d.FailOnCall = 2
	ctx := context.Background()

	require.NoError(t, d.DispatchMouseEvent(ctx, schemas.MouseEventData{Type: schemas.MouseMove}))
	assert.EqualError(t, d.DispatchScrollEvent(ctx, schemas.ScrollEventData{Lines: 1}), "boom")
	assert.EqualError(t, d.DispatchKeyEvent(ctx, schemas.KeyEventData{Type: schemas.KeyDown, Key: "a"}), "boom")

	events, ops := d.Snapshot()
	assert.Len(t, events, 1)
	assert.Equal(t, []string{"mouse:mouseMoved", "scroll", "key:keyDown"}, ops)
}

func TestRecordingDevice_CancelOnCall(t *testing.T) {
	d := NewRecordingDevice(100, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.CancelOnCall = 1
	d.CancelFunc = cancel

	require.NoError(t, d.DispatchKeyEvent(ctx, schemas.KeyEventData{Type: schemas.KeyDown, Key: "a"}))
	assert.ErrorIs(t, d.DispatchKeyEvent(ctx, schemas.KeyEventData{Type: schemas.KeyUp, Key: "a"}), context.Canceled)
	assert.ErrorIs(t, d.Sleep(ctx, 1), context.Canceled)
}

func TestRecordingDevice_OnlyWarpMovesPointer(t *testing.T) {
	d := NewRecordingDevice(100, 100)
	ctx := context.Background()

	require.NoError(t, d.DispatchMouseEvent(ctx, schemas.MouseEventData{Type: schemas.MouseMove, X: 50, Y: 50}))
	p, _ := d.PointerPosition(ctx)
	assert.Equal(t, schemas.Point{}, p)

	require.NoError(t, d.WarpPointer(ctx, schemas.Point{X: 3, Y: 4}))
	p, _ = d.PointerPosition(ctx)
	assert.Equal(t, schemas.Point{X: 3, Y: 4}, p)
}
