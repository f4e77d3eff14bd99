// Package meshes holds reusable mesh assemblies.
package meshes

import (
	"xrscene/engine"
	"xrscene/gui"
)

// TextureSize is the side of the square texture a TextPlane draws on.
const TextureSize = 1024

// TextPlane is a plane carrying a single line of text.
type TextPlane struct {
	Plane   *engine.Mesh
	Texture *gui.AdvancedDynamicTexture
	// Text is the text node; change it with Text.SetText.
	Text *gui.TextBlock
}

// NewTextPlane creates the plane "<name> text plane" of width x height at
// (x, y, z) with a TextBlock "<name> text". Dimensions are passed to the
// mesh builder as given.
func NewTextPlane(name string, width, height, x, y, z float32,
	text, background, textColor string, fontSize int, scene *engine.Scene) *TextPlane {
	plane := engine.CreatePlane(name+" text plane", engine.PlaneOptions{Width: width, Height: height}, scene)
	plane.Position.Set(x, y, z)

	tex := gui.CreateForMesh(plane, TextureSize, TextureSize)
	tex.SetBackground(background)

	tb := gui.NewTextBlock(name+" text", text)
	tb.SetColor(textColor)
	tb.SetFontSize(fontSize)
	tex.AddControl(tb)

	return &TextPlane{Plane: plane, Texture: tex, Text: tb}
}
