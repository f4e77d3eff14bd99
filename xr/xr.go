// Package xr abstracts the immersive session runtime a scene is presented
// through. A Runtime hands out Sessions; DefaultExperience binds one to a
// scene.
package xr

import (
	"context"
	"errors"
	"sync"

	"xrscene/bindings"
	"xrscene/engine"
)

// SessionMode is a WebXR session mode string.
type SessionMode string

const (
	ImmersiveVR SessionMode = "immersive-vr"
	ImmersiveAR SessionMode = "immersive-ar"
	Inline      SessionMode = "inline"
)

// Valid reports whether m is one of the known modes.
func (m SessionMode) Valid() bool {
	switch m {
	case ImmersiveVR, ImmersiveAR, Inline:
		return true
	}
	return false
}

// ParseSessionMode accepts a full mode string or the short forms "vr",
// "ar" and "inline".
func ParseSessionMode(s string) (SessionMode, error) {
	switch s {
	case "vr", string(ImmersiveVR):
		return ImmersiveVR, nil
	case "ar", string(ImmersiveAR):
		return ImmersiveAR, nil
	case string(Inline):
		return Inline, nil
	}
	return "", ErrUnknownSessionMode
}

var (
	ErrUnknownSessionMode     = errors.New("xr: unknown session mode")
	ErrSessionModeUnsupported = errors.New("xr: session mode not supported")
	ErrSessionActive          = errors.New("xr: a session is already active")
	ErrSessionEnded           = errors.New("xr: session ended")
	ErrNoRuntime              = errors.New("xr: no runtime")
)

// Runtime grants immersive sessions.
type Runtime interface {
	IsSessionSupported(ctx context.Context, mode SessionMode) (bool, error)
	RequestSession(ctx context.Context, mode SessionMode) (Session, error)
}

// ActivationGated is implemented by runtimes that only grant immersive
// sessions while the page holds a user gesture.
type ActivationGated interface {
	RequiresUserActivation() bool
}

// NeedsUserActivation reports whether rt grants mode only from a user
// gesture. Inline sessions never need one.
func NeedsUserActivation(rt Runtime, mode SessionMode) bool {
	g, ok := rt.(ActivationGated)
	return ok && mode != Inline && g.RequiresUserActivation()
}

// Session is a granted XR session.
type Session interface {
	Mode() SessionMode
	// Pose is the latest viewer pose in scene space. ok is false until the
	// runtime has tracked the viewer.
	Pose() (pose engine.Pose, ok bool)
	InputSources() []*InputSource
	// End ends the session. Ending twice is a no-op.
	End() error
	// Ended is closed once the session has ended, whoever ended it.
	Ended() <-chan struct{}
}

// xr-standard gamepad button indices.
const (
	StandardTrigger    = 0
	StandardSqueeze    = 1
	StandardTouchpad   = 2
	StandardThumbstick = 3
	StandardButtonA    = 4
	StandardButtonB    = 5
)

// InputSource is a tracked controller with an xr-standard gamepad. It
// implements bindings.Controller.
type InputSource struct {
	Handedness string

	mu      sync.Mutex
	buttons []bool
}

func NewInputSource(handedness string) *InputSource {
	return &InputSource{Handedness: handedness, buttons: make([]bool, StandardButtonB+1)}
}

// SetButton records the pressed state of gamepad button i.
func (s *InputSource) SetButton(i int, pressed bool) {
	if i < 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.buttons) <= i {
		s.buttons = append(s.buttons, false)
	}
	s.buttons[i] = pressed
}

// Pressed reports gamepad button i. Out of range buttons read as released.
func (s *InputSource) Pressed(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return i >= 0 && i < len(s.buttons) && s.buttons[i]
}

// Button maps b onto the xr-standard layout.
func (s *InputSource) Button(b bindings.ButtonType) bool {
	switch b {
	case bindings.Trigger:
		return s.Pressed(StandardTrigger)
	case bindings.Grip:
		return s.Pressed(StandardSqueeze)
	case bindings.Thumbstick:
		return s.Pressed(StandardThumbstick)
	case bindings.ButtonA:
		return s.Pressed(StandardButtonA)
	case bindings.ButtonB:
		return s.Pressed(StandardButtonB)
	}
	return false
}
