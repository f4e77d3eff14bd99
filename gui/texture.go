// Package gui draws 2D controls onto mesh textures.
package gui

import (
	"image"
	"image/color"

	"xrscene/engine"
)

// Vector2WithInfo is passed to control pointer observers. X and Y are the
// pointer's render pixel coordinates; TextureX and TextureY locate it on the
// control's texture.
type Vector2WithInfo struct {
	X, Y               float32
	TextureX, TextureY int
	ButtonIndex        int
}

// Control is drawn by an AdvancedDynamicTexture.
type Control interface {
	ControlName() string
	draw(dst *image.RGBA)
	contains(x, y int, size image.Point) bool
	pointer(typ engine.EventType, info Vector2WithInfo)
	attach(host *AdvancedDynamicTexture)
}

// AdvancedDynamicTexture is a texture whose content is a list of controls,
// redrawn before a render whenever a control changed.
type AdvancedDynamicTexture struct {
	Name string

	background string
	texture    *engine.Texture
	mesh       *engine.Mesh
	controls   []Control
	dirty      bool

	beforeRender *engine.Observer[*engine.Scene]
	meshPointer  *engine.Observer[engine.PointerInfo]
}

// CreateForMesh makes a width x height texture, applies it to mesh with an
// unlit, double-sided material and routes pointer events picked on the mesh
// to the texture's controls.
func CreateForMesh(mesh *engine.Mesh, width, height int) *AdvancedDynamicTexture {
	s := mesh.Scene()
	adt := &AdvancedDynamicTexture{
		Name:    mesh.Name + " texture",
		texture: engine.NewDynamicTexture(mesh.Name+" texture", width, height, s),
		mesh:    mesh,
		dirty:   true,
	}
	mat := engine.NewStandardMaterial(mesh.Name + " material")
	mat.DiffuseTexture = adt.texture
	mat.DisableLighting = true
	mat.BackFaceCulling = false
	mat.SpecularColor = engine.NewColor3(0, 0, 0)
	mesh.Material = mat

	adt.beforeRender = s.OnBeforeRender.Add(func(*engine.Scene) { adt.Update() })
	adt.meshPointer = mesh.OnPointer.Add(adt.onPointer)
	return adt
}

// Texture returns the backing texture.
func (a *AdvancedDynamicTexture) Texture() *engine.Texture { return a.texture }

// Mesh returns the mesh the texture is applied to.
func (a *AdvancedDynamicTexture) Mesh() *engine.Mesh { return a.mesh }

// Background returns the CSS background color.
func (a *AdvancedDynamicTexture) Background() string { return a.background }

// SetBackground sets the CSS color painted under the controls.
func (a *AdvancedDynamicTexture) SetBackground(c string) {
	a.background = c
	a.MarkAsDirty()
}

// AddControl appends c on top of the existing controls.
func (a *AdvancedDynamicTexture) AddControl(c Control) {
	a.controls = append(a.controls, c)
	c.attach(a)
	a.MarkAsDirty()
}

// Controls returns the controls in draw order.
func (a *AdvancedDynamicTexture) Controls() []Control {
	return append([]Control(nil), a.controls...)
}

// ControlByName returns the first control called name.
func (a *AdvancedDynamicTexture) ControlByName(name string) Control {
	for _, c := range a.controls {
		if c.ControlName() == name {
			return c
		}
	}
	return nil
}

// MarkAsDirty schedules a redraw before the next render.
func (a *AdvancedDynamicTexture) MarkAsDirty() { a.dirty = true }

// Update redraws the texture if anything changed.
func (a *AdvancedDynamicTexture) Update() {
	if !a.dirty {
		return
	}
	a.dirty = false
	img := a.texture.Image()
	bg := mustColor(a.background, color.RGBA{})
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, bg)
		}
	}
	for _, c := range a.controls {
		c.draw(img)
	}
	a.texture.SetImage(img)
}

func (a *AdvancedDynamicTexture) onPointer(p engine.PointerInfo) {
	w, h := a.texture.Size()
	tx := int(p.U * float32(w))
	ty := int((1 - p.V) * float32(h))
	size := image.Pt(w, h)
	info := Vector2WithInfo{X: float32(p.X), Y: float32(p.Y), TextureX: tx, TextureY: ty, ButtonIndex: p.Button}
	for i := len(a.controls) - 1; i >= 0; i-- {
		c := a.controls[i]
		if c.contains(tx, ty, size) {
			c.pointer(p.Type, info)
		}
	}
}

// Dispose detaches the texture from the scene and the mesh.
func (a *AdvancedDynamicTexture) Dispose() {
	a.beforeRender.Remove()
	a.meshPointer.Remove()
	a.controls = nil
}
