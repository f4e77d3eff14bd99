//go:build cgo || js

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"xrscene/bindings"
	"xrscene/engine"
)

// keyNames maps polled keys to DOM KeyboardEvent.key values.
var keyNames = func() map[ebiten.Key]string {
	m := map[ebiten.Key]string{
		ebiten.KeyArrowUp:    "ArrowUp",
		ebiten.KeyArrowDown:  "ArrowDown",
		ebiten.KeyArrowLeft:  "ArrowLeft",
		ebiten.KeyArrowRight: "ArrowRight",
		ebiten.KeyEnter:      "Enter",
		ebiten.KeyEscape:     "Escape",
		ebiten.KeyBackspace:  "Backspace",
		ebiten.KeyTab:        "Tab",
		ebiten.KeySpace:      " ",
		ebiten.KeyDelete:     "Delete",
		ebiten.KeyHome:       "Home",
		ebiten.KeyEnd:        "End",
		ebiten.KeyF1:         "F1",
		ebiten.KeyF2:         "F2",
		ebiten.KeyF3:         "F3",
	}
	for k := ebiten.KeyA; k <= ebiten.KeyZ; k++ {
		m[k] = string(rune('a' + (k - ebiten.KeyA)))
	}
	for k := ebiten.KeyDigit0; k <= ebiten.KeyDigit9; k++ {
		m[k] = string(rune('0' + (k - ebiten.KeyDigit0)))
	}
	return m
}()

type hostInput struct {
	surface *hostSurface
	pad     *Gamepad

	lastX, lastY int
	keys         []ebiten.Key
}

func newHostInput(s *hostSurface, pad *Gamepad) *hostInput {
	return &hostInput{surface: s, pad: pad}
}

func (in *hostInput) poll() {
	in.pollKeyboard()
	in.pollPointer()
	in.pollGamepad()
}

func (in *hostInput) pollKeyboard() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	alt := ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	emit := func(typ engine.EventType, k ebiten.Key) {
		name, ok := keyNames[k]
		if !ok {
			return
		}
		if shift && len(name) == 1 && name[0] >= 'a' && name[0] <= 'z' {
			name = string(name[0] - 'a' + 'A')
		}
		in.surface.emit(engine.Event{Type: typ, Key: name, Ctrl: ctrl, Alt: alt, Shift: shift})
	}

	in.keys = inpututil.AppendJustPressedKeys(in.keys[:0])
	for _, k := range in.keys {
		emit(engine.EventKeyDown, k)
	}
	in.keys = inpututil.AppendJustReleasedKeys(in.keys[:0])
	for _, k := range in.keys {
		emit(engine.EventKeyUp, k)
	}
}

func (in *hostInput) pollPointer() {
	x, y := ebiten.CursorPosition()
	if x != in.lastX || y != in.lastY {
		in.lastX, in.lastY = x, y
		in.surface.emit(engine.Event{Type: engine.EventPointerMove, X: x, Y: y})
	}
	buttons := []ebiten.MouseButton{ebiten.MouseButtonLeft, ebiten.MouseButtonMiddle, ebiten.MouseButtonRight}
	for i, b := range buttons {
		if inpututil.IsMouseButtonJustPressed(b) {
			in.surface.emit(engine.Event{Type: engine.EventPointerDown, X: x, Y: y, Button: i})
		}
		if inpututil.IsMouseButtonJustReleased(b) {
			in.surface.emit(engine.Event{Type: engine.EventPointerUp, X: x, Y: y, Button: i})
		}
	}
}

// pollGamepad reads the first gamepad with a standard layout.
func (in *hostInput) pollGamepad() {
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		in.pad.SetConnected(true)
		in.pad.Set(bindings.Trigger, ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonFrontBottomRight))
		in.pad.Set(bindings.Grip, ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonFrontTopRight))
		in.pad.Set(bindings.Thumbstick, ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightStick))
		in.pad.Set(bindings.ButtonA, ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom))
		in.pad.Set(bindings.ButtonB, ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightRight))
		return
	}
	in.pad.SetConnected(false)
}
