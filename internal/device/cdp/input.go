package cdp

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/input"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// wheelPixels is how far one wheel notch scrolls in Chrome.
const wheelPixels = 100

// mouseType maps event types onto CDP. CDP has no drag event; a move with
// Buttons set is how the page sees one.
func mouseType(t schemas.MouseEventType) input.MouseType {
	if t == schemas.MouseDrag {
		return input.MouseMoved
	}
	return input.MouseType(t)
}

func (d *Device) DispatchMouseEvent(ctx context.Context, data schemas.MouseEventData) error {
	d.mu.Lock()
	mods := d.modifiers
	d.mu.Unlock()

	button := data.Button
	if button == "" {
		button = schemas.ButtonNone
	}
	p := input.DispatchMouseEvent(mouseType(data.Type), data.X, data.Y).
		WithButton(input.MouseButton(button)).
		WithButtons(data.Buttons).
		WithClickCount(int64(data.ClickCount)).
		WithModifiers(mods)
	if !data.Timestamp.IsZero() {
		ts := input.TimeSinceEpoch(data.Timestamp)
		p = p.WithTimestamp(&ts)
	}

	if err := d.run(ctx, "mouse "+string(data.Type), p); err != nil {
		return err
	}
	d.mu.Lock()
	d.pointer = schemas.Point{X: data.X, Y: data.Y}
	d.mu.Unlock()
	return nil
}

// WarpPointer moves the page's notion of the pointer. There is no visible
// cursor to relocate inside a tab.
func (d *Device) WarpPointer(ctx context.Context, p schemas.Point) error {
	return d.DispatchMouseEvent(ctx, schemas.MouseEventData{
		Type:   schemas.MouseMove,
		X:      p.X,
		Y:      p.Y,
		Button: schemas.ButtonNone,
	})
}

// DispatchScrollEvent posts one wheel notch at the tracked pointer.
// Positive Lines scroll toward the top, which is a negative CDP deltaY.
func (d *Device) DispatchScrollEvent(ctx context.Context, data schemas.ScrollEventData) error {
	d.mu.Lock()
	at, mods := d.pointer, d.modifiers
	d.mu.Unlock()

	p := input.DispatchMouseEvent(input.MouseWheel, at.X, at.Y).
		WithButton(input.MouseButton(schemas.ButtonNone)).
		WithDeltaX(0).
		WithDeltaY(float64(-data.Lines * wheelPixels)).
		WithModifiers(mods)
	return d.run(ctx, "mouse wheel", p)
}

// DispatchKeyEvent posts one key half. Modifier keys are tracked so that
// later events in a combo carry them, which is what makes shortcuts fire.
func (d *Device) DispatchKeyEvent(ctx context.Context, data schemas.KeyEventData) error {
	var p *input.DispatchKeyEventParams
	var mod input.Modifier

	if data.Key == "" {
		if data.Text == "" {
			return fmt.Errorf("cdp: key event has neither key nor text")
		}
		p = literalKey(data.Type, data.Text)
	} else {
		info := lookupKey(data.Key)
		mod = info.modifier

		d.mu.Lock()
		held := d.modifiers
		d.mu.Unlock()
		if data.Type == schemas.KeyDown {
			held |= mod
		}
		p = namedKey(data.Type, info, held)
	}

	if err := d.run(ctx, "key "+string(data.Type), p); err != nil {
		return err
	}
	if mod != 0 {
		d.mu.Lock()
		if data.Type == schemas.KeyDown {
			d.modifiers |= mod
		} else {
			d.modifiers &^= mod
		}
		d.mu.Unlock()
	}
	return nil
}

// literalKey types a character as the page would receive it from a
// keyboard layout that has it.
func literalKey(t schemas.KeyEventType, text string) *input.DispatchKeyEventParams {
	if t == schemas.KeyUp {
		return input.DispatchKeyEvent(input.KeyUp).WithKey(text)
	}
	return input.DispatchKeyEvent(input.KeyDown).WithKey(text).WithText(text).WithUnmodifiedText(text)
}

func namedKey(t schemas.KeyEventType, info keyInfo, mods input.Modifier) *input.DispatchKeyEventParams {
	kind := input.KeyUp
	if t == schemas.KeyDown {
		kind = input.KeyDown
		// Shortcut keys must not insert text.
		if info.text == "" || mods&^input.ModifierShift != 0 {
			kind = input.KeyRawDown
		}
	}
	p := input.DispatchKeyEvent(kind).
		WithKey(info.key).
		WithModifiers(mods)
	if info.code != "" {
		p = p.WithCode(info.code)
	}
	if info.vk != 0 {
		p = p.WithWindowsVirtualKeyCode(info.vk).WithNativeVirtualKeyCode(info.vk)
	}
	if kind == input.KeyDown && info.text != "" {
		p = p.WithText(info.text).WithUnmodifiedText(info.text)
	}
	return p
}
