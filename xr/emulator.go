package xr

import (
	"context"
	"sync"

	"xrscene/engine"
)

// Emulator is an in-process Runtime for desktop and headless hosts. The
// viewer pose and controller buttons are set by the host.
type Emulator struct {
	mu        sync.Mutex
	supported map[SessionMode]bool
	active    *emulatedSession
	pose      engine.Pose
	tracked   bool

	// Fail, when set, is returned by RequestSession.
	Fail error
	// Gated makes immersive sessions wait for a user gesture, as a browser
	// does.
	Gated bool

	Left, Right *InputSource
}

// NewEmulator supports the given modes; none means immersive-vr and inline.
func NewEmulator(modes ...SessionMode) *Emulator {
	if len(modes) == 0 {
		modes = []SessionMode{ImmersiveVR, Inline}
	}
	e := &Emulator{
		supported: make(map[SessionMode]bool, len(modes)),
		Left:      NewInputSource("left"),
		Right:     NewInputSource("right"),
	}
	for _, m := range modes {
		e.supported[m] = true
	}
	return e
}

func (e *Emulator) IsSessionSupported(ctx context.Context, mode SessionMode) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.supported[mode], nil
}

func (e *Emulator) RequestSession(ctx context.Context, mode SessionMode) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Fail != nil {
		return nil, e.Fail
	}
	if !e.supported[mode] {
		return nil, ErrSessionModeUnsupported
	}
	if e.active != nil {
		return nil, ErrSessionActive
	}
	s := &emulatedSession{rt: e, mode: mode, ended: make(chan struct{})}
	e.active = s
	return s, nil
}

func (e *Emulator) RequiresUserActivation() bool { return e.Gated }

// SetPose sets the tracked viewer pose.
func (e *Emulator) SetPose(p engine.Pose) {
	e.mu.Lock()
	e.pose, e.tracked = p, true
	e.mu.Unlock()
}

// Active returns the live session, or nil.
func (e *Emulator) Active() Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return nil
	}
	return e.active
}

type emulatedSession struct {
	rt   *Emulator
	mode SessionMode

	once  sync.Once
	ended chan struct{}
}

func (s *emulatedSession) Mode() SessionMode { return s.mode }

func (s *emulatedSession) Pose() (engine.Pose, bool) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	if s.rt.active != s {
		return engine.Pose{}, false
	}
	return s.rt.pose, s.rt.tracked
}

func (s *emulatedSession) InputSources() []*InputSource {
	return []*InputSource{s.rt.Left, s.rt.Right}
}

func (s *emulatedSession) End() error {
	s.once.Do(func() {
		s.rt.mu.Lock()
		if s.rt.active == s {
			s.rt.active = nil
		}
		s.rt.mu.Unlock()
		close(s.ended)
	})
	return nil
}

func (s *emulatedSession) Ended() <-chan struct{} { return s.ended }
