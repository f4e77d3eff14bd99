package hal

import (
	"sync"

	"xrscene/bindings"
)

// Gamepad holds the latest polled button state of a controller. It
// implements bindings.Controller.
type Gamepad struct {
	mu        sync.Mutex
	connected bool
	pressed   [bindings.ButtonB + 1]bool
}

// Set records the state of button b.
func (g *Gamepad) Set(b bindings.ButtonType, pressed bool) {
	if int(b) >= len(g.pressed) {
		return
	}
	g.mu.Lock()
	g.pressed[b] = pressed
	g.mu.Unlock()
}

// SetConnected marks the pad present. Disconnecting releases every button.
func (g *Gamepad) SetConnected(on bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connected = on
	if !on {
		g.pressed = [len(g.pressed)]bool{}
	}
}

func (g *Gamepad) Connected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connected
}

func (g *Gamepad) Button(b bindings.ButtonType) bool {
	if int(b) >= len(g.pressed) {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pressed[b]
}
