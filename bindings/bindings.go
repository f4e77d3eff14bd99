// Package bindings forwards controller button state into boolean actions,
// once per frame.
package bindings

import "xrscene/engine"

// ButtonType names a controller button.
type ButtonType uint8

const (
	Trigger ButtonType = iota
	Grip
	Thumbstick
	ButtonA
	ButtonB
)

func (b ButtonType) String() string {
	switch b {
	case Trigger:
		return "trigger"
	case Grip:
		return "grip"
	case Thumbstick:
		return "thumbstick"
	case ButtonA:
		return "a"
	case ButtonB:
		return "b"
	default:
		return "unknown"
	}
}

// Controller reports whether a button is held.
type Controller interface {
	Button(b ButtonType) bool
}

// BooleanAction is a sink for a boolean value. It keeps the last value and
// notifies on changes; Receive itself performs no filtering.
type BooleanAction struct {
	Name string

	value    bool
	received uint64

	// Activated is notified when the value becomes true.
	Activated engine.Observable[bool]
	// Deactivated is notified when the value becomes false.
	Deactivated engine.Observable[bool]
	// ValueChanged is notified with the new value on every change.
	ValueChanged engine.Observable[bool]
}

// Receive stores v.
func (a *BooleanAction) Receive(v bool) {
	a.received++
	if v == a.value {
		return
	}
	a.value = v
	a.ValueChanged.Notify(v)
	if v {
		a.Activated.Notify(v)
	} else {
		a.Deactivated.Notify(v)
	}
}

// Value returns the last received value.
func (a *BooleanAction) Value() bool { return a.value }

// IsActivated reports whether the value is true.
func (a *BooleanAction) IsActivated() bool { return a.value }

// Received is the number of Receive calls.
func (a *BooleanAction) Received() uint64 { return a.received }

// ButtonBinding samples one button of a controller into its action.
type ButtonBinding struct {
	BooleanAction

	Controller Controller
	Button     ButtonType
}

// Update forwards the raw button state. A nil controller reads as released.
func (b *ButtonBinding) Update() {
	pressed := false
	if b.Controller != nil {
		pressed = b.Controller.Button(b.Button)
	}
	b.Receive(pressed)
}

// NewGrip binds the controller's grip button.
func NewGrip(c Controller) *ButtonBinding {
	return &ButtonBinding{BooleanAction: BooleanAction{Name: "WebXRGrip"}, Controller: c, Button: Grip}
}

// NewThumb binds the controller's thumbstick press.
func NewThumb(c Controller) *ButtonBinding {
	return &ButtonBinding{BooleanAction: BooleanAction{Name: "WebXRThumb"}, Controller: c, Button: Thumbstick}
}

// Binding is anything updated once per frame.
type Binding interface {
	Update()
}

// Set updates a group of bindings together.
type Set struct {
	bindings []Binding
}

// Add appends bindings to the set.
func (s *Set) Add(b ...Binding) { s.bindings = append(s.bindings, b...) }

// Len returns the number of bindings in the set.
func (s *Set) Len() int { return len(s.bindings) }

// Update calls Update on every binding in insertion order.
func (s *Set) Update() {
	for _, b := range s.bindings {
		b.Update()
	}
}
