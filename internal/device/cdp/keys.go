package cdp

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chromedp/cdproto/input"
)

// keyInfo is the DOM description of a named key.
type keyInfo struct {
	key      string
	code     string
	text     string
	vk       int64
	modifier input.Modifier
}

var namedKeys = map[string]keyInfo{
	"enter":     {key: "Enter", code: "Enter", text: "\r", vk: 13},
	"return":    {key: "Enter", code: "Enter", text: "\r", vk: 13},
	"tab":       {key: "Tab", code: "Tab", text: "\t", vk: 9},
	"space":     {key: " ", code: "Space", text: " ", vk: 32},
	"backspace": {key: "Backspace", code: "Backspace", vk: 8},
	"delete":    {key: "Delete", code: "Delete", vk: 46},
	"escape":    {key: "Escape", code: "Escape", vk: 27},
	"esc":       {key: "Escape", code: "Escape", vk: 27},
	"up":        {key: "ArrowUp", code: "ArrowUp", vk: 38},
	"down":      {key: "ArrowDown", code: "ArrowDown", vk: 40},
	"left":      {key: "ArrowLeft", code: "ArrowLeft", vk: 37},
	"right":     {key: "ArrowRight", code: "ArrowRight", vk: 39},
	"home":      {key: "Home", code: "Home", vk: 36},
	"end":       {key: "End", code: "End", vk: 35},
	"pageup":    {key: "PageUp", code: "PageUp", vk: 33},
	"pagedown":  {key: "PageDown", code: "PageDown", vk: 34},

	"shift":   {key: "Shift", code: "ShiftLeft", vk: 16, modifier: input.ModifierShift},
	"ctrl":    {key: "Control", code: "ControlLeft", vk: 17, modifier: input.ModifierCtrl},
	"control": {key: "Control", code: "ControlLeft", vk: 17, modifier: input.ModifierCtrl},
	"alt":     {key: "Alt", code: "AltLeft", vk: 18, modifier: input.ModifierAlt},
	"option":  {key: "Alt", code: "AltLeft", vk: 18, modifier: input.ModifierAlt},
	"cmd":     {key: "Meta", code: "MetaLeft", vk: 91, modifier: input.ModifierMeta},
	"command": {key: "Meta", code: "MetaLeft", vk: 91, modifier: input.ModifierMeta},
	"meta":    {key: "Meta", code: "MetaLeft", vk: 91, modifier: input.ModifierMeta},
	"win":     {key: "Meta", code: "MetaLeft", vk: 91, modifier: input.ModifierMeta},
	"super":   {key: "Meta", code: "MetaLeft", vk: 91, modifier: input.ModifierMeta},
}

func init() {
	for i := 1; i <= 12; i++ {
		name := "F" + strconv.Itoa(i)
		namedKeys[strings.ToLower(name)] = keyInfo{key: name, code: name, vk: int64(111 + i)}
	}
}

// lookupKey resolves a key name case-insensitively. A single character is
// its own key; anything else unknown is passed through as the DOM key value.
func lookupKey(name string) keyInfo {
	if info, ok := namedKeys[strings.ToLower(name)]; ok {
		return info
	}
	if utf8.RuneCountInString(name) != 1 {
		return keyInfo{key: name}
	}

	r, _ := utf8.DecodeRuneInString(name)
	info := keyInfo{key: name, text: name}
	switch {
	case r < unicode.MaxASCII && unicode.IsLetter(r):
		upper := unicode.ToUpper(r)
		info.code = "Key" + string(upper)
		info.vk = int64(upper)
	case r >= '0' && r <= '9':
		info.code = "Digit" + name
		info.vk = int64(r)
	}
	return info
}
