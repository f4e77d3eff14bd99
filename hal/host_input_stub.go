//go:build !cgo && !js

package hal

type hostInput struct{}

func newHostInput(*hostSurface, *Gamepad) *hostInput { return &hostInput{} }

func (in *hostInput) poll() {
	// No input without the window backend.
}
