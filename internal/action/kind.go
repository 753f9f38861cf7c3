// Package action defines the closed vocabulary of actions a model may request,
// and decodes raw model output into typed, validated action batches.
package action

import "strings"

// Kind names one atomic action in the protocol.
type Kind string

const (
	KindDone        Kind = "done"
	KindInputText   Kind = "input_text"
	KindOpenApp     Kind = "open_app"
	KindRunScript   Kind = "run_script"
	KindPressKey    Kind = "press_key"
	KindPressCombo  Kind = "press_combo"
	KindRightClick  Kind = "right_click"
	KindLeftClick   Kind = "left_click"
	KindDrag        Kind = "drag"
	KindMovePointer Kind = "move_pointer"
	KindScrollUp    Kind = "scroll_up"
	KindScrollDown  Kind = "scroll_down"
	KindRecordInfo  Kind = "record_info"
	KindWait        Kind = "wait"
)

// MaxBatchSize is the upper bound on actions in one agent step.
const MaxBatchSize = 10

// Kinds lists every kind in schema order.
var Kinds = []Kind{
	KindDone,
	KindInputText,
	KindOpenApp,
	KindRunScript,
	KindPressKey,
	KindPressCombo,
	KindRightClick,
	KindLeftClick,
	KindDrag,
	KindMovePointer,
	KindScrollUp,
	KindScrollDown,
	KindRecordInfo,
	KindWait,
}

// legacyAliases maps the field names of the earlier protocol revision onto
// canonical kinds. Models trained against older prompts still emit them.
var legacyAliases = map[string]Kind{
	"Click":            KindLeftClick,
	"RightSingle":      KindRightClick,
	"Drag":             KindDrag,
	"move_mouse":       KindMovePointer,
	"Hotkey":           KindPressKey,
	"multi_Hotkey":     KindPressCombo,
	"run_apple_script": KindRunScript,
}

func (k Kind) String() string { return string(k) }

// Valid reports whether k is one of the canonical kinds.
func (k Kind) Valid() bool {
	for _, c := range Kinds {
		if c == k {
			return true
		}
	}
	return false
}

// NoParams reports whether the kind is a marker that tolerates an empty value.
func (k Kind) NoParams() bool {
	return k == KindDone || k == KindWait
}

// Positional reports whether the kind carries screen positions.
func (k Kind) Positional() bool {
	switch k {
	case KindLeftClick, KindRightClick, KindDrag, KindMovePointer, KindScrollUp, KindScrollDown:
		return true
	}
	return false
}

// lookupKind resolves an entry key to a canonical kind, following legacy
// aliases. The second result is false for unknown keys.
func lookupKind(key string) (Kind, bool) {
	if k := Kind(key); k.Valid() {
		return k, true
	}
	if k, ok := legacyAliases[key]; ok {
		return k, true
	}
	return "", false
}

// parseBareKind handles entries that are a plain string naming a marker kind.
func parseBareKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindDone:
		return KindDone, true
	case KindWait:
		return KindWait, true
	}
	return "", false
}
