package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io/fs"
	"math"
	"testing"
	"testing/fstest"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-3 }

func TestAnimationCycle(t *testing.T) {
	e, _ := newTestEngine(t, 8, 8)
	s := NewScene(e)
	m := NewMesh("model", s)
	a := NewAnimation("rotation", "rotation", 10, AnimationTypeVector3, LoopCycle)
	a.SetKeys([]AnimationKey{
		{Frame: 30, Value: V3(0, 2*math.Pi, 0)},
		{Frame: 0, Value: V3(0, 0, 0)},
	})
	m.Animations = append(m.Animations, a)
	anim := s.BeginAnimation(m, 0, 30, true)

	anim.advance(1)
	if !near(anim.Frame(), 10) || !near(m.Rotation.Y, 2*math.Pi/3) {
		t.Fatalf("frame=%v rot=%v", anim.Frame(), m.Rotation.Y)
	}
	anim.advance(3)
	if !near(anim.Frame(), 10) {
		t.Fatalf("frame after wrap=%v, want 10", anim.Frame())
	}
	if !anim.IsRunning() {
		t.Fatal("looping animation stopped")
	}
}

func TestAnimationNegativeFrameRatePlaysBackwards(t *testing.T) {
	e, _ := newTestEngine(t, 8, 8)
	s := NewScene(e)
	m := NewMesh("model", s)
	a := NewAnimation("rotation", "rotation", -10, AnimationTypeVector3, LoopCycle)
	a.SetKeys([]AnimationKey{{Frame: 0, Value: Zero()}, {Frame: 30, Value: V3(0, 3, 0)}})
	m.Animations = append(m.Animations, a)
	anim := s.BeginAnimation(m, 0, 30, true)
	if !near(m.Rotation.Y, 3) {
		t.Fatalf("start rot=%v, want 3", m.Rotation.Y)
	}
	anim.advance(1)
	if !near(anim.Frame(), 20) || !near(m.Rotation.Y, 2) {
		t.Fatalf("frame=%v rot=%v", anim.Frame(), m.Rotation.Y)
	}
	anim.advance(2.5)
	if !near(anim.Frame(), 25) {
		t.Fatalf("frame after wrap=%v, want 25", anim.Frame())
	}
}

func TestAnimationWithoutLoopEnds(t *testing.T) {
	e, _ := newTestEngine(t, 8, 8)
	s := NewScene(e)
	m := NewMesh("model", s)
	a := NewAnimation("y", "position.y", 30, AnimationTypeFloat, LoopCycle)
	a.SetKeys([]AnimationKey{{Frame: 0, Value: V3(0, 0, 0)}, {Frame: 30, Value: V3(4, 0, 0)}})
	m.Animations = append(m.Animations, a)
	anim := s.BeginAnimation(m, 0, 30, false)
	ended := 0
	anim.OnEnd.Add(func(*Animatable) { ended++ })
	s.animate(2)
	if !near(m.Position.Y, 4) || anim.IsRunning() || ended != 1 {
		t.Fatalf("y=%v running=%v ended=%d", m.Position.Y, anim.IsRunning(), ended)
	}
	if len(s.Animatables()) != 0 {
		t.Fatalf("finished animatable still registered")
	}
}

func TestAnimationRelativeAccumulates(t *testing.T) {
	e, _ := newTestEngine(t, 8, 8)
	s := NewScene(e)
	m := NewMesh("model", s)
	a := NewAnimation("x", "position", 10, AnimationTypeVector3, LoopRelative)
	a.SetKeys([]AnimationKey{{Frame: 0, Value: Zero()}, {Frame: 10, Value: V3(1, 0, 0)}})
	m.Animations = append(m.Animations, a)
	anim := s.BeginAnimation(m, 0, 10, true)
	anim.advance(1.5)
	if !near(m.Position.X, 1.5) {
		t.Fatalf("x=%v, want 1.5", m.Position.X)
	}
}

func TestSceneRenderDrawsLitSphere(t *testing.T) {
	e, _ := newTestEngine(t, 64, 48)
	s := NewScene(e)
	s.ClearColor = NewColor3(0, 0, 0)
	NewUniversalCamera("cam", V3(0, 0, -5), s)
	NewHemisphericLight("light", V3(0, 1, 0), s)
	sphere := CreateSphere("sphere", SphereOptions{Diameter: 2}, s)
	mat := NewStandardMaterial("red")
	mat.DiffuseColor = NewColor3(1, 0, 0)
	sphere.Material = mat

	s.Render()
	c := RGBATarget{Img: e.FrameBuffer()}.At(32, 24)
	if c.R == 0 || c.G != 0 || c.B != 0 {
		t.Fatalf("center pixel=%v, want red", c)
	}
	corner := RGBATarget{Img: e.FrameBuffer()}.At(0, 0)
	if corner != (color.RGBA{A: 0xFF}) {
		t.Fatalf("corner pixel=%v, want clear color", corner)
	}
	if s.RenderCount() != 1 {
		t.Fatalf("RenderCount=%d", s.RenderCount())
	}
}

func TestPickPlane(t *testing.T) {
	e, _ := newTestEngine(t, 64, 64)
	s := NewScene(e)
	NewUniversalCamera("cam", V3(0, 0, -5), s)
	plane := CreatePlane("plane", PlaneOptions{Width: 4, Height: 3}, s)
	plane.Position = V3(0, 0, 5)

	info := s.Pick(32, 32)
	if !info.Hit || info.Mesh != plane {
		t.Fatalf("Pick missed: %+v", info)
	}
	if !near(info.Distance, 10) {
		t.Fatalf("distance=%v, want 10", info.Distance)
	}
	if math.Abs(float64(info.U-0.5)) > 0.05 || math.Abs(float64(info.V-0.5)) > 0.05 {
		t.Fatalf("uv=(%v,%v), want centre", info.U, info.V)
	}
	if miss := s.Pick(0, 0); miss.Hit {
		t.Fatalf("corner pick hit %s", miss.Mesh.Name)
	}
}

func TestPointerEventNotifiesPickedMesh(t *testing.T) {
	e, surf := newTestEngine(t, 64, 64)
	s := NewScene(e)
	NewUniversalCamera("cam", V3(0, 0, -5), s)
	plane := CreatePlane("plane", PlaneOptions{Width: 4, Height: 3}, s)
	plane.Position = V3(0, 0, 5)

	var got []PointerInfo
	plane.OnPointer.Add(func(p PointerInfo) { got = append(got, p) })
	surf.events <- Event{Type: EventPointerUp, X: 32, Y: 32}
	if err := e.Frame(); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Type != EventPointerUp {
		t.Fatalf("got %+v", got)
	}
}

func TestDebugLayerToggle(t *testing.T) {
	e, _ := newTestEngine(t, 320, 200)
	s := NewScene(e)
	NewUniversalCamera("uniCamera", V3(0, 0, -5), s)
	dl := s.DebugLayer()
	if dl.IsVisible() {
		t.Fatal("visible by default")
	}
	if !dl.Toggle() || dl.Toggle() {
		t.Fatal("Toggle did not flip twice")
	}
	dl.Show()
	s.Render()
	found := false
	for _, l := range dl.Lines() {
		if bytes.Contains([]byte(l), []byte("uniCamera")) {
			found = true
		}
	}
	if !found {
		t.Fatalf("inspector does not list camera: %q", dl.Lines())
	}
}

func TestSceneDisposeReleasesListeners(t *testing.T) {
	e, _ := newTestEngine(t, 8, 8)
	before := e.Window().ListenerCount(EventPointerUp)
	s := NewScene(e)
	cam := NewUniversalCamera("cam", V3(0, 0, -5), s)
	cam.AttachControl(e.Surface(), false)
	if e.Window().ListenerCount(EventPointerUp) != before+2 {
		t.Fatalf("listeners=%d", e.Window().ListenerCount(EventPointerUp))
	}
	disposed := 0
	s.OnDispose.Add(func(*Scene) { disposed++ })
	s.Dispose()
	s.Dispose()
	if disposed != 1 {
		t.Fatalf("OnDispose notified %d times", disposed)
	}
	if e.Window().ListenerCount(EventPointerUp) != before {
		t.Fatalf("listeners=%d after dispose", e.Window().ListenerCount(EventPointerUp))
	}
	if len(e.Scenes()) != 0 {
		t.Fatal("scene still registered")
	}
}

func TestImportMeshAsync(t *testing.T) {
	fsys := fstest.MapFS{"assets/models/tri.glb": {Data: triangleGLB(t)}}
	e, err := New(newFakeSurface(8, 8), Options{Assets: fsys})
	if err != nil {
		t.Fatal(err)
	}
	s := NewScene(e)
	f := ImportMeshAsync(context.Background(), s, "assets/models/", "tri.glb")
	waitFor(t, e, f.Done())
	res, err, _ := f.Result()
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(res.Meshes) != 2 || res.Root().Name != "__root__" {
		t.Fatalf("meshes=%d root=%v", len(res.Meshes), res.Root())
	}
	water := res.Meshes[1]
	if water.Name != "water" || water.Parent() != &res.Root().Node || water.TotalIndices() != 3 {
		t.Fatalf("unexpected mesh %q parent=%v indices=%d", water.Name, water.Parent(), water.TotalIndices())
	}
	if z := water.Vertices[0].Pos.Z; !near(z, -2) {
		t.Fatalf("z=%v, want -2 after handedness flip", z)
	}
}

func TestImportMeshAsyncMissingAsset(t *testing.T) {
	e, _ := newTestEngine(t, 8, 8)
	s := NewScene(e)
	f := ImportMeshAsync(context.Background(), s, "assets/models/", "h2o.glb")
	waitFor(t, e, f.Done())
	if _, err, _ := f.Result(); err == nil {
		t.Fatal("import of missing asset succeeded")
	}
	if len(s.Meshes()) != 0 {
		t.Fatalf("failed import added %d meshes", len(s.Meshes()))
	}
}

func TestSoundAutoplay(t *testing.T) {
	fsys := fstest.MapFS{"assets/sounds/test.mp3": {Data: []byte("ID3")}}
	e, err := New(newFakeSurface(8, 8), Options{Assets: fsys})
	if err != nil {
		t.Fatal(err)
	}
	s := NewScene(e)
	ready := make(chan struct{})
	snd := NewSound("music", "assets/sounds/test.mp3", s, func() { close(ready) }, SoundOptions{Loop: true, Autoplay: true})
	waitFor(t, e, ready)
	if !snd.IsReady() || !snd.IsPlaying() || !snd.Loop() {
		t.Fatalf("ready=%v playing=%v loop=%v", snd.IsReady(), snd.IsPlaying(), snd.Loop())
	}
	if err := snd.Stop(); err != nil || snd.IsPlaying() {
		t.Fatalf("Stop err=%v playing=%v", err, snd.IsPlaying())
	}
	s.Dispose()
	if snd.IsReady() {
		t.Fatal("disposed sound still ready")
	}
}

func TestSoundMissingAssetReportsError(t *testing.T) {
	e, _ := newTestEngine(t, 8, 8)
	s := NewScene(e)
	snd := NewSound("music", "assets/sounds/none.mp3", s, nil, SoundOptions{Autoplay: true})
	failed := make(chan struct{})
	snd.OnError.Add(func(err error) {
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("err=%v", err)
		}
		close(failed)
	})
	waitFor(t, e, failed)
	if snd.IsPlaying() {
		t.Fatal("missing sound playing")
	}
}

func TestParticlesEmitUpToCapacity(t *testing.T) {
	e, _ := newTestEngine(t, 8, 8)
	s := NewScene(e)
	ps := NewParticleSystem("particleSystem", 5, s)
	ps.EmitRate = 1000
	ps.Start()
	ps.update(1)
	if ps.ActiveCount() != 5 {
		t.Fatalf("active=%d, want capacity 5", ps.ActiveCount())
	}
	ps.Stop()
	ps.update(5)
	if ps.ActiveCount() != 0 {
		t.Fatalf("active=%d after lifetime, want 0", ps.ActiveCount())
	}
}

func TestDebugLayerDrawShortFrame(t *testing.T) {
	e, _ := newTestEngine(t, 320, 200)
	s := NewScene(e)
	NewUniversalCamera("uniCamera", V3(0, 0, -5), s)
	frame := image.NewRGBA(image.Rect(0, 0, 40, 15))
	s.DebugLayer().draw(frame)
	if frame.RGBAAt(0, 0).A == 0 {
		t.Fatal("inspector panel not painted")
	}
}
