package schemas

import (
	"fmt"
	"time"
)

// -- Geometry --

// Point is an absolute device pixel location.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%.1f, %.1f)", p.X, p.Y)
}

// Size is the pixel extent of the active display.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// -- Pointer Events --

// MouseEventType defines the type of a mouse event.
type MouseEventType string

const (
	MouseMove    MouseEventType = "mouseMoved"
	MousePress   MouseEventType = "mousePressed"
	MouseRelease MouseEventType = "mouseReleased"
	// MouseDrag is a move while a button is held. Backends that have no
	// distinct drag event treat it as MouseMove with Buttons set.
	MouseDrag MouseEventType = "mouseDragged"
)

// MouseButton defines the mouse button being pressed.
type MouseButton string

const (
	ButtonNone   MouseButton = "none"
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)

// ButtonsMask returns the "buttons held" bitfield for a single held button,
// using the DOM/CDP bit assignment (left=1, right=2, middle=4).
func ButtonsMask(b MouseButton) int64 {
	switch b {
	case ButtonLeft:
		return 1
	case ButtonRight:
		return 2
	case ButtonMiddle:
		return 4
	default:
		return 0
	}
}

// MouseEventData encapsulates all data for a mouse event.
type MouseEventData struct {
	Type       MouseEventType `json:"type"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Button     MouseButton    `json:"button"`
	Buttons    int64          `json:"buttons"`
	ClickCount int            `json:"clickCount"`
	// Timestamp is set on drag steps; it must strictly increase across one drag.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ScrollDirection is the vertical wheel direction.
type ScrollDirection string

const (
	ScrollUp   ScrollDirection = "up"
	ScrollDown ScrollDirection = "down"
)

// ScrollEventData is a single wheel tick. Lines is signed: positive scrolls
// content up (toward the top), negative scrolls down.
type ScrollEventData struct {
	Lines int `json:"lines"`
}

// -- Keyboard Events --

// KeyEventType distinguishes the press and release halves of a keystroke.
type KeyEventType string

const (
	KeyDown KeyEventType = "keyDown"
	KeyUp   KeyEventType = "keyUp"
)

// KeyEventData represents one half of a keystroke.
type KeyEventData struct {
	Type KeyEventType `json:"type"`
	// Key is a named key ("enter", "cmd", "a"). Empty when Text carries a
	// literal character.
	Key string `json:"key,omitempty"`
	// Text is the literal character produced by the event, for Unicode entry.
	Text string `json:"text,omitempty"`
}
