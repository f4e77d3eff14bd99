package gui

import (
	"image"
	"image/color"
	"strings"

	xdraw "golang.org/x/image/draw"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"xrscene/engine"
)

// Font is the bitmap font text is rasterized with before scaling.
var Font = &proggy.TinySZ8pt7b

const (
	// Glyphs are drawn at native size on a scratch canvas with this
	// baseline, then scaled.
	nativeBaseline = 24
	nativeHeight   = 32

	// capRatio is the cap height as a fraction of the font size.
	capRatio = 0.7
)

// TextBlock is a single line of centred text filling its parent texture.
type TextBlock struct {
	Name string

	text     string
	color    string
	fontSize int
	host     *AdvancedDynamicTexture

	OnPointerUp   engine.Observable[Vector2WithInfo]
	OnPointerDown engine.Observable[Vector2WithInfo]
	OnPointerMove engine.Observable[Vector2WithInfo]
}

// NewTextBlock returns a white, 18 px text block.
func NewTextBlock(name, text string) *TextBlock {
	return &TextBlock{Name: name, text: text, color: "white", fontSize: 18}
}

func (t *TextBlock) ControlName() string { return t.Name }

func (t *TextBlock) Text() string  { return t.text }
func (t *TextBlock) Color() string { return t.color }
func (t *TextBlock) FontSize() int { return t.fontSize }

func (t *TextBlock) SetText(s string) {
	t.text = s
	t.changed()
}

// SetColor sets the CSS text color.
func (t *TextBlock) SetColor(c string) {
	t.color = c
	t.changed()
}

// SetFontSize sets the font size in texture pixels.
func (t *TextBlock) SetFontSize(px int) {
	t.fontSize = px
	t.changed()
}

func (t *TextBlock) changed() {
	if t.host != nil {
		t.host.MarkAsDirty()
	}
}

func (t *TextBlock) attach(host *AdvancedDynamicTexture) { t.host = host }

func (t *TextBlock) contains(x, y int, size image.Point) bool {
	return x >= 0 && y >= 0 && x < size.X && y < size.Y
}

func (t *TextBlock) pointer(typ engine.EventType, info Vector2WithInfo) {
	switch typ {
	case engine.EventPointerUp:
		t.OnPointerUp.Notify(info)
	case engine.EventPointerDown:
		t.OnPointerDown.Notify(info)
	case engine.EventPointerMove:
		t.OnPointerMove.Notify(info)
	}
}

func (t *TextBlock) draw(dst *image.RGBA) {
	text := strings.TrimSpace(t.text)
	if text == "" || t.fontSize <= 0 {
		return
	}
	src, glyphs, ok := rasterize(text, mustColor(t.color, color.RGBA{A: 0xFF}))
	if !ok {
		return
	}
	scale := capRatio * float64(t.fontSize) / float64(glyphs.Dy())
	w := int(float64(glyphs.Dx())*scale + 0.5)
	h := int(float64(glyphs.Dy())*scale + 0.5)
	b := dst.Bounds()
	x0 := b.Min.X + (b.Dx()-w)/2
	y0 := b.Min.Y + (b.Dy()-h)/2
	xdraw.NearestNeighbor.Scale(dst, image.Rect(x0, y0, x0+w, y0+h), src, glyphs, xdraw.Over, nil)
}

// rasterize draws text at native size and returns the canvas and the
// bounds of the inked pixels.
func rasterize(text string, c color.RGBA) (*image.RGBA, image.Rectangle, bool) {
	_, outbox := tinyfont.LineWidth(Font, text)
	canvas := image.NewRGBA(image.Rect(0, 0, int(outbox)+8, nativeHeight))
	tinyfont.WriteLine(engine.NewImageDisplay(canvas), Font, 4, nativeBaseline, text, c)

	ink := image.Rectangle{}
	b := canvas.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if canvas.RGBAAt(x, y).A == 0 {
				continue
			}
			ink = ink.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return canvas, ink, !ink.Empty()
}
