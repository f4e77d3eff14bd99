//go:build js

package xr

import (
	"context"
	"fmt"
	"sync"
	"syscall/js"

	"xrscene/engine"
)

// BrowserRuntime drives navigator.xr.
type BrowserRuntime struct {
	xr js.Value
}

// NewBrowserRuntime fails with ErrNoRuntime when the page has no WebXR.
func NewBrowserRuntime() (*BrowserRuntime, error) {
	xr := js.Global().Get("navigator").Get("xr")
	if xr.IsUndefined() || xr.IsNull() {
		return nil, ErrNoRuntime
	}
	return &BrowserRuntime{xr: xr}, nil
}

// RequiresUserActivation is true: requestSession for immersive modes is
// rejected outside a user gesture.
func (r *BrowserRuntime) RequiresUserActivation() bool { return true }

func (r *BrowserRuntime) IsSessionSupported(ctx context.Context, mode SessionMode) (bool, error) {
	v, err := await(ctx, r.xr.Call("isSessionSupported", string(mode)))
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

func (r *BrowserRuntime) RequestSession(ctx context.Context, mode SessionMode) (Session, error) {
	init := js.Global().Get("Object").New()
	init.Set("optionalFeatures", js.ValueOf([]any{"local-floor"}))
	sv, err := await(ctx, r.xr.Call("requestSession", string(mode), init))
	if err != nil {
		return nil, err
	}
	space, err := await(ctx, sv.Call("requestReferenceSpace", "local-floor"))
	if err != nil {
		space, err = await(ctx, sv.Call("requestReferenceSpace", "local"))
		if err != nil {
			sv.Call("end")
			return nil, err
		}
	}
	s := &browserSession{
		mode:    mode,
		session: sv,
		space:   space,
		sources: map[string]*InputSource{},
		ended:   make(chan struct{}),
	}
	s.onEnd = js.FuncOf(func(js.Value, []js.Value) any {
		s.finish()
		return nil
	})
	sv.Call("addEventListener", "end", s.onEnd)
	s.onFrame = js.FuncOf(func(_ js.Value, args []js.Value) any {
		s.frame(args[1])
		return nil
	})
	sv.Call("requestAnimationFrame", s.onFrame)
	return s, nil
}

type browserSession struct {
	mode    SessionMode
	session js.Value
	space   js.Value

	onEnd, onFrame js.Func

	mu      sync.Mutex
	pose    engine.Pose
	tracked bool
	sources map[string]*InputSource
	order   []*InputSource

	once  sync.Once
	ended chan struct{}
}

func (s *browserSession) frame(f js.Value) {
	select {
	case <-s.ended:
		return
	default:
	}
	if vp := f.Call("getViewerPose", s.space); vp.Truthy() {
		t := vp.Get("transform")
		p, o := t.Get("position"), t.Get("orientation")
		pose := PoseFromWebXR(
			p.Get("x").Float(), p.Get("y").Float(), p.Get("z").Float(),
			o.Get("x").Float(), o.Get("y").Float(), o.Get("z").Float(), o.Get("w").Float())
		s.mu.Lock()
		s.pose, s.tracked = pose, true
		s.mu.Unlock()
	}

	srcs := s.session.Get("inputSources")
	for i := 0; i < srcs.Length(); i++ {
		src := srcs.Index(i)
		gp := src.Get("gamepad")
		if !gp.Truthy() {
			continue
		}
		in := s.source(src.Get("handedness").String())
		buttons := gp.Get("buttons")
		for b := 0; b < buttons.Length(); b++ {
			in.SetButton(b, buttons.Index(b).Get("pressed").Bool())
		}
	}
	s.session.Call("requestAnimationFrame", s.onFrame)
}

func (s *browserSession) source(handedness string) *InputSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.sources[handedness]
	if !ok {
		in = NewInputSource(handedness)
		s.sources[handedness] = in
		s.order = append(s.order, in)
	}
	return in
}

func (s *browserSession) Mode() SessionMode { return s.mode }

func (s *browserSession) Pose() (engine.Pose, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pose, s.tracked
}

func (s *browserSession) InputSources() []*InputSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*InputSource(nil), s.order...)
}

func (s *browserSession) End() error {
	select {
	case <-s.ended:
		return nil
	default:
	}
	s.session.Call("end")
	return nil
}

func (s *browserSession) Ended() <-chan struct{} { return s.ended }

func (s *browserSession) finish() {
	s.once.Do(func() {
		close(s.ended)
		s.onEnd.Release()
		s.onFrame.Release()
	})
}

type jsError struct{ v js.Value }

func (e jsError) Error() string {
	if e.v.Type() == js.TypeObject {
		if m := e.v.Get("message"); m.Type() == js.TypeString {
			return fmt.Sprintf("%s: %s", e.v.Get("name").String(), m.String())
		}
	}
	return e.v.String()
}

// await blocks on a JS promise. On ctx cancellation the callbacks stay
// registered until the promise settles.
func await(ctx context.Context, p js.Value) (js.Value, error) {
	type result struct {
		v   js.Value
		err error
	}
	ch := make(chan result, 1)
	var then, catch js.Func
	then = js.FuncOf(func(_ js.Value, args []js.Value) any {
		v := js.Undefined()
		if len(args) > 0 {
			v = args[0]
		}
		ch <- result{v: v}
		then.Release()
		catch.Release()
		return nil
	})
	catch = js.FuncOf(func(_ js.Value, args []js.Value) any {
		err := error(jsError{v: js.ValueOf("promise rejected")})
		if len(args) > 0 {
			err = jsError{v: args[0]}
		}
		ch <- result{err: err}
		then.Release()
		catch.Release()
		return nil
	})
	p.Call("then", then, catch)
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return js.Undefined(), ctx.Err()
	}
}
