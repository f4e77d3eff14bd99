package meshes

import (
	"image"
	"testing"

	"xrscene/engine"
)

type surface struct{}

func (surface) ID() string                  { return "renderCanvas" }
func (surface) ClientSize() (int, int)      { return 32, 32 }
func (surface) Events() <-chan engine.Event { return nil }
func (surface) Present(*image.RGBA) error   { return nil }

func TestNewTextPlane(t *testing.T) {
	e, err := engine.New(surface{}, engine.Options{})
	if err != nil {
		t.Fatal(err)
	}
	s := engine.NewScene(e)
	tp := NewTextPlane("greeting", 4, 3, 1, 2, 5, "GOOD DAY", "white", "purple", 500, s)

	if got := tp.Text.Text(); got != "GOOD DAY" {
		t.Fatalf("text=%q, want GOOD DAY", got)
	}
	if tp.Text.Name != "greeting text" || tp.Plane.Name != "greeting text plane" {
		t.Fatalf("names %q / %q", tp.Text.Name, tp.Plane.Name)
	}
	if s.MeshByName("greeting text plane") != tp.Plane {
		t.Fatal("plane not in scene")
	}
	if tp.Plane.Position != engine.V3(1, 2, 5) {
		t.Fatalf("position=%v", tp.Plane.Position)
	}
	if w, h := tp.Texture.Texture().Size(); w != TextureSize || h != TextureSize {
		t.Fatalf("texture %dx%d", w, h)
	}
	if tp.Text.Color() != "purple" || tp.Text.FontSize() != 500 || tp.Texture.Background() != "white" {
		t.Fatalf("color=%q size=%d bg=%q", tp.Text.Color(), tp.Text.FontSize(), tp.Texture.Background())
	}

	tp.Text.SetText("GOOD NIGHT")
	if tp.Text.Text() != "GOOD NIGHT" {
		t.Fatal("SetText did not update text")
	}
}

func TestNewTextPlaneKeepsDegenerateSize(t *testing.T) {
	e, err := engine.New(surface{}, engine.Options{})
	if err != nil {
		t.Fatal(err)
	}
	s := engine.NewScene(e)
	tp := NewTextPlane("flat", -2, 3, 0, 0, 0, "x", "black", "white", 10, s)
	// A negative width mirrors the plane instead of being rejected.
	if tp.Plane.TotalVertices() != 4 || tp.Plane.Vertices[0].Pos.X != 1 {
		t.Fatalf("vertices=%v", tp.Plane.Vertices)
	}
}
