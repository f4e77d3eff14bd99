package xr

import (
	"context"
	"fmt"
	"sync"

	"xrscene/engine"
)

// State is the lifecycle state of a DefaultExperience.
type State uint8

const (
	NotInXR State = iota
	EnteringXR
	InXR
	ExitingXR
)

func (s State) String() string {
	switch s {
	case NotInXR:
		return "not-in-xr"
	case EnteringXR:
		return "entering-xr"
	case InXR:
		return "in-xr"
	case ExitingXR:
		return "exiting-xr"
	default:
		return "unknown"
	}
}

type UIOptions struct {
	// SessionMode defaults to immersive-vr.
	SessionMode SessionMode
}

type ExperienceOptions struct {
	UIOptions UIOptions
}

// DefaultExperience presents a scene through an XR session. While in XR it
// is the scene's view provider, so the viewer pose replaces the active
// camera's pose on every render.
type DefaultExperience struct {
	scene *engine.Scene
	rt    Runtime
	mode  SessionMode

	mu      sync.Mutex
	state   State
	session Session

	disposeObs *engine.Observer[*engine.Scene]

	// OnStateChanged is notified on every state transition.
	OnStateChanged engine.Observable[State]
}

// CreateDefaultExperience checks that rt supports the session mode and
// binds an experience to scene. When rt grants sessions without a user
// gesture the session is requested right away and the experience returns
// InXR; otherwise it returns NotInXR and the caller enters with EnterXR
// from an input handler. It blocks until the runtime answers; call it from
// a goroutine other than the one running Engine.Frame, and never inside
// Engine.Do.
func CreateDefaultExperience(ctx context.Context, scene *engine.Scene, rt Runtime, opts ExperienceOptions) (*DefaultExperience, error) {
	if rt == nil {
		return nil, ErrNoRuntime
	}
	mode := opts.UIOptions.SessionMode
	if mode == "" {
		mode = ImmersiveVR
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSessionMode, mode)
	}
	ok, err := rt.IsSessionSupported(ctx, mode)
	if err != nil {
		return nil, fmt.Errorf("xr: query %s: %w", mode, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionModeUnsupported, mode)
	}

	x := &DefaultExperience{scene: scene, rt: rt, mode: mode}
	if x.NeedsUserActivation() {
		return x, nil
	}
	if err := x.EnterXR(ctx); err != nil {
		return nil, err
	}
	return x, nil
}

// NeedsUserActivation reports whether EnterXR must be called from a user
// gesture.
func (x *DefaultExperience) NeedsUserActivation() bool {
	return NeedsUserActivation(x.rt, x.mode)
}

// EnterXR requests a session and makes it the scene's view. It fails with
// ErrSessionActive unless the experience is NotInXR, and returns to
// NotInXR when the request fails. Same blocking rules as
// CreateDefaultExperience.
func (x *DefaultExperience) EnterXR(ctx context.Context) error {
	x.mu.Lock()
	if x.state != NotInXR {
		x.mu.Unlock()
		return ErrSessionActive
	}
	x.state = EnteringXR
	x.mu.Unlock()
	x.OnStateChanged.Notify(EnteringXR)

	sess, err := x.rt.RequestSession(ctx, x.mode)
	if err != nil {
		x.setState(NotInXR)
		return fmt.Errorf("xr: request %s session: %w", x.mode, err)
	}

	eng := x.scene.Engine()
	var disposed bool
	eng.Do(func() {
		if x.scene.IsDisposed() {
			disposed = true
			return
		}
		x.mu.Lock()
		x.session = sess
		x.mu.Unlock()
		x.scene.SetViewProvider(x)
		x.disposeObs = x.scene.OnDispose.AddOnce(func(*engine.Scene) {
			sess.End()
		})
	})
	if disposed {
		sess.End()
		x.setState(NotInXR)
		return fmt.Errorf("xr: %w", engine.ErrDisposed)
	}
	x.setState(InXR)
	eng.Logf("xr: entered %s", x.mode)

	go func() {
		<-sess.Ended()
		eng.Post(func() { x.ended(sess) })
	}()
	return nil
}

// ended runs on the frame goroutine once sess is over.
func (x *DefaultExperience) ended(sess Session) {
	x.mu.Lock()
	if x.session != sess {
		x.mu.Unlock()
		return
	}
	x.session = nil
	x.mu.Unlock()

	if x.disposeObs != nil {
		x.disposeObs.Remove()
		x.disposeObs = nil
	}
	if x.scene.ViewProvider() == x {
		x.scene.SetViewProvider(nil)
	}
	x.setState(NotInXR)
	x.scene.Engine().Logf("xr: left %s", x.mode)
}

func (x *DefaultExperience) setState(s State) {
	x.mu.Lock()
	changed := x.state != s
	x.state = s
	x.mu.Unlock()
	if changed {
		x.OnStateChanged.Notify(s)
	}
}

func (x *DefaultExperience) State() State {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.state
}

func (x *DefaultExperience) Mode() SessionMode { return x.mode }

func (x *DefaultExperience) Scene() *engine.Scene { return x.scene }

// Session returns the active session, or nil outside XR.
func (x *DefaultExperience) Session() Session {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.session
}

// InputSources returns the active session's controllers.
func (x *DefaultExperience) InputSources() []*InputSource {
	if s := x.Session(); s != nil {
		return s.InputSources()
	}
	return nil
}

// ViewerPose implements engine.ViewProvider.
func (x *DefaultExperience) ViewerPose() (engine.Pose, bool) {
	s := x.Session()
	if s == nil {
		return engine.Pose{}, false
	}
	return s.Pose()
}

// ExitXR ends the session. The state settles to NotInXR on a later frame.
func (x *DefaultExperience) ExitXR() error {
	s := x.Session()
	if s == nil {
		return nil
	}
	x.setState(ExitingXR)
	return s.End()
}
