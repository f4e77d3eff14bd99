package composer

import (
	"context"
	"errors"
	"image"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"xrscene/engine"
	"xrscene/gui"
	"xrscene/xr"
)

type surface struct{}

func (surface) ID() string                  { return DefaultCanvas }
func (surface) ClientSize() (int, int)      { return 32, 24 }
func (surface) Events() <-chan engine.Event { return nil }
func (surface) Present(*image.RGBA) error   { return nil }

func modelGLB(t *testing.T) []byte {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{Name: "oxygen", Primitives: []*gltf.Primitive{{
		Indices:    gltf.Index(idx),
		Attributes: map[string]int{"POSITION": pos},
	}}}}
	n := &gltf.Node{Mesh: gltf.Index(0)}
	n.Rotation[3] = 1
	n.Scale[0], n.Scale[1], n.Scale[2] = 1, 1, 1
	doc.Nodes = []*gltf.Node{n}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}
	doc.Scene = gltf.Index(0)

	name := filepath.Join(t.TempDir(), ModelFile)
	if err := gltf.SaveBinary(doc, name); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func newEngine(t *testing.T, assets fs.FS) *engine.Engine {
	t.Helper()
	e, err := engine.New(surface{}, engine.Options{Assets: assets})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// wait runs posted tasks until done is closed.
func wait(t *testing.T, e *engine.Engine, done <-chan struct{}) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		e.RunPending()
		select {
		case <-done:
			return
		case <-deadline:
			t.Fatal("timed out waiting for background work")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestCreateXRSceneContents(t *testing.T) {
	e := newEngine(t, fstest.MapFS{})
	app := New(e, surface{}, xr.NewEmulator(), Config{})
	c, err := app.CreateXRScene(context.Background(), "renderCanvas", AuthoringData{"recordingData": {"take": 1}})
	if err != nil {
		t.Fatal(err)
	}
	s := c.Scene
	if s == nil || c.Experience == nil || c.Experience.State() != xr.InXR {
		t.Fatalf("scene=%v experience=%v", s, c.Experience)
	}
	if n := len(s.Cameras()); n != 1 {
		t.Fatalf("cameras=%d, want 1", n)
	}
	if len(s.Lights()) < 1 || s.LightByName("hemiLight") == nil {
		t.Fatalf("lights=%v", s.Lights())
	}
	if n := len(s.Skyboxes()); n != 1 {
		t.Fatalf("skyboxes=%d, want 1", n)
	}
	cam := s.CameraByName("uniCamera")
	if cam == nil || !cam.IsAttached() || cam.Position != engine.V3(0, 0, -5) {
		t.Fatalf("camera=%+v", cam)
	}
	if m := s.MeshByName("sphere"); m == nil || m.Position != engine.V3(0, 1, 5) {
		t.Fatalf("sphere=%v", m)
	}
	if s.ParticleSystemByName("particleSystem") == nil || !c.Particles.IsStarted() || c.Particles.Capacity() != 5000 {
		t.Fatal("particle system missing or stopped")
	}
	if snd := s.SoundByName("music"); snd == nil || !snd.Loop() || !snd.Autoplay() {
		t.Fatal("music missing or not looping")
	}
	if c.Text.Text.Text() != "GOOD DAY" || s.MeshByName("hello plane") != c.Text.Plane {
		t.Fatalf("text plane %q", c.Text.Text.Text())
	}
	if s.ViewProvider() == nil || e.RenderLoopCount() != 0 {
		t.Fatal("composer must bind XR but leave the render loop to its caller")
	}
}

func TestCreateXRSceneUnknownSurface(t *testing.T) {
	e := newEngine(t, nil)
	app := New(e, surface{}, xr.NewEmulator(), Config{})
	if _, err := app.CreateXRScene(context.Background(), "otherCanvas", nil); !errors.Is(err, ErrUnknownSurface) {
		t.Fatalf("err=%v", err)
	}
	if len(e.Scenes()) != 0 {
		t.Fatal("scene created for unknown surface")
	}
}

func TestCreateXRSceneRejectedSession(t *testing.T) {
	e := newEngine(t, nil)
	rt := xr.NewEmulator()
	denied := errors.New("NotAllowedError")
	rt.Fail = denied
	app := New(e, surface{}, rt, Config{})
	c, err := app.CreateXRScene(context.Background(), "renderCanvas", nil)
	if !errors.Is(err, denied) || c != nil {
		t.Fatalf("composition=%v err=%v", c, err)
	}
	if e.RenderLoopCount() != 0 {
		t.Fatal("render loop registered after XR failure")
	}
	if len(e.Scenes()) != 0 || e.Window().ListenerCount(engine.EventKeyDown) != 0 {
		t.Fatal("failed scene left behind")
	}
}

func TestGatedRuntimeEntersOnPointerPress(t *testing.T) {
	e := newEngine(t, nil)
	rt := xr.NewEmulator()
	rt.Gated = true
	app := New(e, surface{}, rt, Config{NoModel: true, NoAudio: true})
	c, err := app.CreateXRScene(context.Background(), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Experience.State() != xr.NotInXR || rt.Active() != nil {
		t.Fatalf("state=%v before a gesture", c.Experience.State())
	}

	entered := make(chan struct{})
	c.Experience.OnStateChanged.Add(func(s xr.State) {
		if s == xr.InXR {
			close(entered)
		}
	})
	e.Do(func() { e.Window().Dispatch(engine.Event{Type: engine.EventPointerDown}) })
	wait(t, e, entered)
	if rt.Active() == nil {
		t.Fatal("no session after pointer press")
	}

	e.Do(c.Scene.Dispose)
	if e.Window().ListenerCount(engine.EventPointerDown) != 0 {
		t.Fatal("gesture listener outlived the scene")
	}
}

func TestCreateXRSceneUnsupportedMode(t *testing.T) {
	e := newEngine(t, nil)
	app := New(e, surface{}, xr.NewEmulator(xr.ImmersiveVR), Config{SessionMode: xr.ImmersiveAR})
	if _, err := app.CreateXRScene(context.Background(), "", nil); !errors.Is(err, xr.ErrSessionModeUnsupported) {
		t.Fatalf("err=%v", err)
	}
}

func TestInspectorShortcut(t *testing.T) {
	e := newEngine(t, nil)
	app := New(e, surface{}, xr.NewEmulator(), Config{NoAudio: true, NoModel: true, NoParticles: true})
	c, err := app.CreateXRScene(context.Background(), "renderCanvas", nil)
	if err != nil {
		t.Fatal(err)
	}
	dl := c.Scene.DebugLayer()
	press := engine.Event{Type: engine.EventKeyDown, Key: "i", Ctrl: true, Alt: true}

	e.Window().Dispatch(engine.Event{Type: engine.EventKeyDown, Key: "i", Ctrl: true})
	if dl.IsVisible() {
		t.Fatal("toggled without Alt")
	}
	e.Window().Dispatch(press)
	if !dl.IsVisible() {
		t.Fatal("first press did not show the inspector")
	}
	e.Window().Dispatch(press)
	if dl.IsVisible() {
		t.Fatal("second press did not hide the inspector")
	}

	e.Do(c.Scene.Dispose)
	if n := e.Window().ListenerCount(engine.EventKeyDown); n != 0 {
		t.Fatalf("%d keydown listeners survive scene dispose", n)
	}
}

func TestModelPlacedAndAnimated(t *testing.T) {
	e := newEngine(t, fstest.MapFS{"assets/models/h2o.glb": {Data: modelGLB(t)}})
	app := New(e, surface{}, xr.NewEmulator(), Config{NoAudio: true})
	c, err := app.CreateXRScene(context.Background(), "renderCanvas", nil)
	if err != nil {
		t.Fatal(err)
	}
	wait(t, e, c.Model.Done())
	root, err, _ := c.Model.Result()
	if err != nil {
		t.Fatal(err)
	}
	if root.Name != "h2oRoot" || c.Scene.MeshByName("h2oRoot") != root {
		t.Fatalf("root=%q", root.Name)
	}
	if root.Position.Y != -1 || root.Scaling != engine.V3(1.5, 1.5, 1.5) {
		t.Fatalf("position=%v scaling=%v", root.Position, root.Scaling)
	}
	if len(root.Animations) != 1 || root.Animations[0].LoopMode != engine.LoopCycle {
		t.Fatalf("animations=%v", root.Animations)
	}
	keys := root.Animations[0].Keys()
	if len(keys) != 2 || keys[1].Frame != 30 || math.Abs(float64(keys[1].Value.Y)-2*math.Pi) > 1e-6 {
		t.Fatalf("keys=%v", keys)
	}
	if len(c.Scene.Animatables()) != 1 {
		t.Fatal("animation not started")
	}
}

func TestModelFailureIsReported(t *testing.T) {
	e := newEngine(t, fstest.MapFS{})
	app := New(e, surface{}, xr.NewEmulator(), Config{NoAudio: true})
	c, err := app.CreateXRScene(context.Background(), "renderCanvas", nil)
	if err != nil {
		t.Fatalf("scene must not wait for the model: %v", err)
	}
	wait(t, e, c.Model.Done())
	if _, err, _ := c.Model.Result(); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("model err=%v", err)
	}
}

func TestOptionalLightsAndSparks(t *testing.T) {
	e := newEngine(t, nil)
	app := New(e, surface{}, xr.NewEmulator(), Config{PointLight: true, Sparks: true, NoModel: true, NoAudio: true})
	c, err := app.CreateXRScene(context.Background(), "renderCanvas", nil)
	if err != nil {
		t.Fatal(err)
	}
	pl := c.Scene.LightByName("pointLight")
	if pl == nil || pl.Intensity != 0.5 {
		t.Fatalf("point light=%+v", pl)
	}
	if c.Particles.EmitRate != 50 || c.Particles.Gravity.Y != -9.81 {
		t.Fatalf("sparks not applied: rate=%v gravity=%v", c.Particles.EmitRate, c.Particles.Gravity)
	}
	if c.Music != nil || c.Scene.SoundByName("music") != nil {
		t.Fatal("music created with NoAudio")
	}
	if _, err, _ := c.Model.Result(); !errors.Is(err, ErrModelDisabled) {
		t.Fatalf("model err=%v", err)
	}
}

func TestTextPointerAlerts(t *testing.T) {
	e := newEngine(t, nil)
	var alerts []string
	app := New(e, surface{}, xr.NewEmulator(), Config{NoModel: true, NoAudio: true, Alert: func(m string) { alerts = append(alerts, m) }})
	c, err := app.CreateXRScene(context.Background(), "renderCanvas", nil)
	if err != nil {
		t.Fatal(err)
	}
	c.Text.Text.OnPointerUp.Notify(gui.Vector2WithInfo{X: 12, Y: 7})
	c.Text.Text.OnPointerDown.Notify(gui.Vector2WithInfo{})
	if len(alerts) != 2 || alerts[0] != "Hello Text up at:\nx: 12\ny: 7" || alerts[1] != "Hello Text down" {
		t.Fatalf("alerts=%q", alerts)
	}
}
