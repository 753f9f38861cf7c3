//go:build cgo

package desktop

import (
	"github.com/go-vgo/robotgo"
)

type robotgoBackend struct{}

func nativeBackend() (Backend, error) {
	return robotgoBackend{}, nil
}

func (robotgoBackend) Move(x, y int) { robotgo.Move(x, y) }

func (robotgoBackend) Toggle(button string, up bool) error {
	if up {
		return robotgo.Toggle(button, "up")
	}
	return robotgo.Toggle(button)
}

// Scroll takes positive lines as up, which is robotgo's sign as well.
func (robotgoBackend) Scroll(lines int) { robotgo.Scroll(0, lines) }

func (robotgoBackend) KeyToggle(key string, up bool) error {
	if up {
		return robotgo.KeyToggle(key, "up")
	}
	return robotgo.KeyToggle(key, "down")
}

func (robotgoBackend) TypeStr(s string) { robotgo.TypeStr(s) }

func (robotgoBackend) ScreenSize() (int, int) { return robotgo.GetScreenSize() }

func (robotgoBackend) Location() (int, int) { return robotgo.Location() }
