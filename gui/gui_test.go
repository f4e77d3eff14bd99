package gui

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"xrscene/engine"
)

type surface struct{ w, h int }

func (s surface) ID() string                  { return "renderCanvas" }
func (s surface) ClientSize() (int, int)      { return s.w, s.h }
func (s surface) Events() <-chan engine.Event { return nil }
func (s surface) Present(*image.RGBA) error   { return nil }

func newScene(t *testing.T) *engine.Scene {
	t.Helper()
	e, err := engine.New(surface{w: 64, h: 64}, engine.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return engine.NewScene(e)
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.RGBA{
		"purple":      {R: 0x80, G: 0x00, B: 0x80, A: 0xFF},
		"White":       {R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		"#0f0":        {G: 0xFF, A: 0xFF},
		"#11223344":   {R: 0x11, G: 0x22, B: 0x33, A: 0x44},
		"transparent": {},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Fatalf("ParseColor(%q)=%v,%v want %v", in, got, err, want)
		}
	}
	if _, err := ParseColor("#12"); !errors.Is(err, ErrBadColor) {
		t.Fatalf("ParseColor(#12) err=%v", err)
	}
	if _, err := ParseColor("notacolor"); !errors.Is(err, ErrBadColor) {
		t.Fatalf("ParseColor(notacolor) err=%v", err)
	}
}

func TestTextBlockDrawsOnBackground(t *testing.T) {
	s := newScene(t)
	plane := engine.CreatePlane("plane", engine.PlaneOptions{Width: 4, Height: 3}, s)
	adt := CreateForMesh(plane, 256, 128)
	adt.SetBackground("white")
	tb := NewTextBlock("hello", "GOOD DAY")
	tb.SetColor("purple")
	tb.SetFontSize(40)
	adt.AddControl(tb)

	if plane.Material == nil || plane.Material.DiffuseTexture != adt.Texture() {
		t.Fatal("texture not applied to mesh")
	}
	adt.Update()
	img := adt.Texture().Image()
	if c := img.RGBAAt(0, 0); c != (color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Fatalf("corner=%v, want white", c)
	}
	purple := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c := img.RGBAAt(x, y); c.R == 0x80 && c.G == 0 && c.B == 0x80 {
				purple++
			}
		}
	}
	if purple == 0 {
		t.Fatal("no text pixels drawn")
	}
	if adt.ControlByName("hello") != tb {
		t.Fatal("ControlByName did not find the text block")
	}
}

func TestSetTextMarksDirty(t *testing.T) {
	s := newScene(t)
	plane := engine.CreatePlane("plane", engine.PlaneOptions{}, s)
	adt := CreateForMesh(plane, 32, 32)
	tb := NewTextBlock("t", "a")
	adt.AddControl(tb)
	adt.Update()
	if adt.dirty {
		t.Fatal("dirty after Update")
	}
	tb.SetText("b")
	if !adt.dirty || tb.Text() != "b" {
		t.Fatalf("dirty=%v text=%q", adt.dirty, tb.Text())
	}
}

func TestPointerReachesTextBlock(t *testing.T) {
	s := newScene(t)
	plane := engine.CreatePlane("plane", engine.PlaneOptions{}, s)
	adt := CreateForMesh(plane, 100, 100)
	tb := NewTextBlock("t", "hi")
	adt.AddControl(tb)

	var up, down []Vector2WithInfo
	tb.OnPointerUp.Add(func(v Vector2WithInfo) { up = append(up, v) })
	tb.OnPointerDown.Add(func(v Vector2WithInfo) { down = append(down, v) })
	plane.OnPointer.Notify(engine.PointerInfo{Type: engine.EventPointerUp, X: 5, Y: 6, Hit: true, Mesh: plane, U: 0.25, V: 0.75})
	plane.OnPointer.Notify(engine.PointerInfo{Type: engine.EventPointerDown, X: 1, Y: 2, Hit: true, Mesh: plane, U: 0.5, V: 0.5})

	if len(up) != 1 || up[0].X != 5 || up[0].Y != 6 || up[0].TextureX != 25 || up[0].TextureY != 25 {
		t.Fatalf("up=%+v", up)
	}
	if len(down) != 1 {
		t.Fatalf("down=%+v", down)
	}
	adt.Dispose()
	plane.OnPointer.Notify(engine.PointerInfo{Type: engine.EventPointerUp})
	if len(up) != 1 {
		t.Fatal("pointer delivered after Dispose")
	}
}
