package xr

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"
	"time"

	"xrscene/bindings"
	"xrscene/engine"
)

type surface struct{}

func (surface) ID() string                  { return "renderCanvas" }
func (surface) ClientSize() (int, int)      { return 16, 16 }
func (surface) Events() <-chan engine.Event { return nil }
func (surface) Present(*image.RGBA) error   { return nil }

func newScene(t *testing.T) (*engine.Engine, *engine.Scene) {
	t.Helper()
	e, err := engine.New(surface{}, engine.Options{})
	if err != nil {
		t.Fatal(err)
	}
	s := engine.NewScene(e)
	engine.NewUniversalCamera("cam", engine.V3(0, 0, -5), s)
	return e, s
}

func waitState(t *testing.T, e *engine.Engine, x *DefaultExperience, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for x.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("state=%v, want %v", x.State(), want)
		}
		e.RunPending()
		time.Sleep(time.Millisecond)
	}
}

func TestDefaultExperienceEntersVR(t *testing.T) {
	_, s := newScene(t)
	rt := NewEmulator()
	rt.SetPose(engine.Pose{Position: engine.V3(0, 1.6, 0)})

	x, err := CreateDefaultExperience(context.Background(), s, rt, ExperienceOptions{UIOptions: UIOptions{SessionMode: ImmersiveVR}})
	if err != nil {
		t.Fatal(err)
	}
	if x.State() != InXR || x.Mode() != ImmersiveVR {
		t.Fatalf("state=%v mode=%v", x.State(), x.Mode())
	}
	if s.ViewProvider() != engine.ViewProvider(x) {
		t.Fatal("experience is not the view provider")
	}
	p, ok := x.ViewerPose()
	if !ok || p.Position.Y != 1.6 {
		t.Fatalf("pose=%v ok=%v", p, ok)
	}
	if len(x.InputSources()) != 2 {
		t.Fatalf("input sources=%d", len(x.InputSources()))
	}
}

func TestDefaultExperienceDefaultsToVR(t *testing.T) {
	_, s := newScene(t)
	x, err := CreateDefaultExperience(context.Background(), s, NewEmulator(), ExperienceOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if x.Mode() != ImmersiveVR {
		t.Fatalf("mode=%v", x.Mode())
	}
}

func TestDefaultExperienceUnsupportedMode(t *testing.T) {
	_, s := newScene(t)
	rt := NewEmulator(ImmersiveVR)
	_, err := CreateDefaultExperience(context.Background(), s, rt, ExperienceOptions{UIOptions: UIOptions{SessionMode: ImmersiveAR}})
	if !errors.Is(err, ErrSessionModeUnsupported) {
		t.Fatalf("err=%v", err)
	}
	if s.ViewProvider() != nil || rt.Active() != nil {
		t.Fatal("unsupported mode left state behind")
	}
}

func TestDefaultExperienceRequestFails(t *testing.T) {
	_, s := newScene(t)
	rt := NewEmulator()
	denied := errors.New("user denied")
	rt.Fail = denied
	_, err := CreateDefaultExperience(context.Background(), s, rt, ExperienceOptions{})
	if !errors.Is(err, denied) {
		t.Fatalf("err=%v", err)
	}
	if s.ViewProvider() != nil {
		t.Fatal("view provider installed after failure")
	}
}

func TestDefaultExperienceCanceledContext(t *testing.T) {
	_, s := newScene(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CreateDefaultExperience(ctx, s, NewEmulator(), ExperienceOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}

func TestSceneDisposeEndsSession(t *testing.T) {
	e, s := newScene(t)
	rt := NewEmulator()
	x, err := CreateDefaultExperience(context.Background(), s, rt, ExperienceOptions{})
	if err != nil {
		t.Fatal(err)
	}
	sess := x.Session()
	e.Do(s.Dispose)
	select {
	case <-sess.Ended():
	case <-time.After(time.Second):
		t.Fatal("session not ended by scene dispose")
	}
	if rt.Active() != nil {
		t.Fatal("emulator still has an active session")
	}
	waitState(t, e, x, NotInXR)
}

func TestExitXR(t *testing.T) {
	e, s := newScene(t)
	rt := NewEmulator()
	x, err := CreateDefaultExperience(context.Background(), s, rt, ExperienceOptions{})
	if err != nil {
		t.Fatal(err)
	}
	var seen []State
	x.OnStateChanged.Add(func(st State) { seen = append(seen, st) })
	if err := x.ExitXR(); err != nil {
		t.Fatal(err)
	}
	waitState(t, e, x, NotInXR)
	if len(seen) != 2 || seen[0] != ExitingXR || seen[1] != NotInXR {
		t.Fatalf("transitions=%v", seen)
	}
	if s.ViewProvider() != nil || x.Session() != nil {
		t.Fatal("session still bound after exit")
	}
	if _, err := rt.RequestSession(context.Background(), ImmersiveVR); err != nil {
		t.Fatalf("new session after exit: %v", err)
	}
}

func TestGatedRuntimeWaitsForEnterXR(t *testing.T) {
	e, s := newScene(t)
	rt := NewEmulator()
	rt.Gated = true

	x, err := CreateDefaultExperience(context.Background(), s, rt, ExperienceOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if x.State() != NotInXR || rt.Active() != nil || !x.NeedsUserActivation() {
		t.Fatalf("state=%v active=%v before a gesture", x.State(), rt.Active())
	}
	if err := x.EnterXR(context.Background()); err != nil {
		t.Fatal(err)
	}
	if x.State() != InXR || s.ViewProvider() != engine.ViewProvider(x) {
		t.Fatalf("state=%v after EnterXR", x.State())
	}
	if err := x.EnterXR(context.Background()); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second EnterXR err=%v", err)
	}
	if err := x.ExitXR(); err != nil {
		t.Fatal(err)
	}
	waitState(t, e, x, NotInXR)
	if err := x.EnterXR(context.Background()); err != nil {
		t.Fatalf("re-enter: %v", err)
	}
}

func TestGatedEnterXRFailureReturnsToNotInXR(t *testing.T) {
	_, s := newScene(t)
	rt := NewEmulator()
	rt.Gated = true
	x, err := CreateDefaultExperience(context.Background(), s, rt, ExperienceOptions{})
	if err != nil {
		t.Fatal(err)
	}
	rt.Fail = errors.New("not allowed")
	if err := x.EnterXR(context.Background()); !errors.Is(err, rt.Fail) {
		t.Fatalf("err=%v", err)
	}
	if x.State() != NotInXR {
		t.Fatalf("state=%v", x.State())
	}
}

func TestInlineNeverNeedsActivation(t *testing.T) {
	rt := NewEmulator()
	rt.Gated = true
	if NeedsUserActivation(rt, Inline) || !NeedsUserActivation(rt, ImmersiveVR) {
		t.Fatal("activation gating wrong")
	}
}

func TestEmulatorSingleSession(t *testing.T) {
	rt := NewEmulator()
	if _, err := rt.RequestSession(context.Background(), ImmersiveVR); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.RequestSession(context.Background(), ImmersiveVR); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("err=%v", err)
	}
}

func TestInputSourceStandardMapping(t *testing.T) {
	in := NewInputSource("right")
	in.SetButton(StandardSqueeze, true)
	if !in.Button(bindings.Grip) || in.Button(bindings.Thumbstick) {
		t.Fatal("squeeze not mapped to grip")
	}
	in.SetButton(StandardThumbstick, true)
	if !in.Button(bindings.Thumbstick) {
		t.Fatal("thumbstick not mapped")
	}
	if in.Pressed(42) {
		t.Fatal("out of range button pressed")
	}
	g := bindings.NewGrip(in)
	g.Update()
	if !g.Value() {
		t.Fatal("grip binding did not read input source")
	}
}

func TestPoseFromWebXR(t *testing.T) {
	a := math.Pi / 3
	p := PoseFromWebXR(1, 2, 3, 0, math.Sin(a/2), 0, math.Cos(a/2))
	if p.Position != engine.V3(1, 2, -3) {
		t.Fatalf("position=%v", p.Position)
	}
	if d := float64(p.Rotation.Y) + a; math.Abs(d) > 1e-5 || math.Abs(float64(p.Rotation.X)) > 1e-5 {
		t.Fatalf("rotation=%v, want yaw %v", p.Rotation, -a)
	}
}

func TestParseSessionMode(t *testing.T) {
	for in, want := range map[string]SessionMode{"vr": ImmersiveVR, "immersive-ar": ImmersiveAR, "inline": Inline} {
		if got, err := ParseSessionMode(in); err != nil || got != want {
			t.Fatalf("ParseSessionMode(%q)=%v,%v", in, got, err)
		}
	}
	if _, err := ParseSessionMode("xr"); !errors.Is(err, ErrUnknownSessionMode) {
		t.Fatalf("err=%v", err)
	}
}
