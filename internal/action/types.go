package action

import (
	"strings"

	"github.com/xkilldash9x/deskpilot/internal/geometry"
)

// Instance is one decoded action. The set of implementations is closed: only
// the payload types in this package satisfy it.
type Instance interface {
	Kind() Kind
	isInstance()
}

// Batch is the ordered list of actions for one agent step.
type Batch []Instance

// Kinds returns the kind of every action, in order.
func (b Batch) Kinds() []Kind {
	out := make([]Kind, len(b))
	for i, inst := range b {
		out[i] = inst.Kind()
	}
	return out
}

// Done marks the task as finished. The optional text is a closing note.
type Done struct {
	Text string `json:"text,omitempty"`
}

// Wait pauses for the executor's configured wait duration.
type Wait struct {
	Text string `json:"text,omitempty"`
}

type InputText struct {
	Text string `json:"text"`
}

type OpenApp struct {
	AppName string `json:"app_name"`
}

type RunScript struct {
	Script string `json:"script"`
}

type PressKey struct {
	Key string `json:"key"`
}

// PressCombo holds two or three keys pressed together, modifiers first.
type PressCombo struct {
	Key1 string `json:"key1"`
	Key2 string `json:"key2"`
	Key3 string `json:"key3,omitempty"`
}

// Keys returns the populated keys in press order.
func (p PressCombo) Keys() []string {
	keys := []string{p.Key1, p.Key2}
	if p.Key3 != "" {
		keys = append(keys, p.Key3)
	}
	return keys
}

func (p PressCombo) String() string {
	return strings.Join(p.Keys(), "+")
}

type LeftClick struct {
	Position geometry.Position `json:"position"`
}

type RightClick struct {
	Position geometry.Position `json:"position"`
}

type MovePointer struct {
	Position geometry.Position `json:"position"`
}

// Drag presses at Position1 and releases at Position2.
type Drag struct {
	Position1 geometry.Position `json:"position1"`
	Position2 geometry.Position `json:"position2"`
}

// ScrollParams is shared by both scroll kinds. DX and DY are hints; only the
// magnitude of DY is used, as the line count.
type ScrollParams struct {
	Position geometry.Position `json:"position"`
	DX       float64           `json:"dx,omitempty"`
	DY       float64           `json:"dy,omitempty"`
}

type ScrollUp struct {
	ScrollParams
}

type ScrollDown struct {
	ScrollParams
}

// RecordInfo appends a note to a named file in the recorder directory.
type RecordInfo struct {
	Text     string `json:"text"`
	FileName string `json:"file_name"`
}

func (Done) Kind() Kind        { return KindDone }
func (Wait) Kind() Kind        { return KindWait }
func (InputText) Kind() Kind   { return KindInputText }
func (OpenApp) Kind() Kind     { return KindOpenApp }
func (RunScript) Kind() Kind   { return KindRunScript }
func (PressKey) Kind() Kind    { return KindPressKey }
func (PressCombo) Kind() Kind  { return KindPressCombo }
func (LeftClick) Kind() Kind   { return KindLeftClick }
func (RightClick) Kind() Kind  { return KindRightClick }
func (MovePointer) Kind() Kind { return KindMovePointer }
func (Drag) Kind() Kind        { return KindDrag }
func (ScrollUp) Kind() Kind    { return KindScrollUp }
func (ScrollDown) Kind() Kind  { return KindScrollDown }
func (RecordInfo) Kind() Kind  { return KindRecordInfo }

func (Done) isInstance()        {}
func (Wait) isInstance()        {}
func (InputText) isInstance()   {}
func (OpenApp) isInstance()     {}
func (RunScript) isInstance()   {}
func (PressKey) isInstance()    {}
func (PressCombo) isInstance()  {}
func (LeftClick) isInstance()   {}
func (RightClick) isInstance()  {}
func (MovePointer) isInstance() {}
func (Drag) isInstance()        {}
func (ScrollUp) isInstance()    {}
func (ScrollDown) isInstance()  {}
func (RecordInfo) isInstance()  {}

// payloadFactories build a zero payload pointer for unmarshalling.
var payloadFactories = map[Kind]func() interface{}{
	KindDone:        func() interface{} { return &Done{} },
	KindWait:        func() interface{} { return &Wait{} },
	KindInputText:   func() interface{} { return &InputText{} },
	KindOpenApp:     func() interface{} { return &OpenApp{} },
	KindRunScript:   func() interface{} { return &RunScript{} },
	KindPressKey:    func() interface{} { return &PressKey{} },
	KindPressCombo:  func() interface{} { return &PressCombo{} },
	KindLeftClick:   func() interface{} { return &LeftClick{} },
	KindRightClick:  func() interface{} { return &RightClick{} },
	KindMovePointer: func() interface{} { return &MovePointer{} },
	KindDrag:        func() interface{} { return &Drag{} },
	KindScrollUp:    func() interface{} { return &ScrollUp{} },
	KindScrollDown:  func() interface{} { return &ScrollDown{} },
	KindRecordInfo:  func() interface{} { return &RecordInfo{} },
}

// derefPayload turns a decoded payload pointer back into a value Instance.
func derefPayload(p interface{}) Instance {
	switch v := p.(type) {
	case *Done:
		return *v
	case *Wait:
		return *v
	case *InputText:
		return *v
	case *OpenApp:
		return *v
	case *RunScript:
		return *v
	case *PressKey:
		return *v
	case *PressCombo:
		return *v
	case *LeftClick:
		return *v
	case *RightClick:
		return *v
	case *MovePointer:
		return *v
	case *Drag:
		return *v
	case *ScrollUp:
		return *v
	case *ScrollDown:
		return *v
	case *RecordInfo:
		return *v
	}
	return nil
}
