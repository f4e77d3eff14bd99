package engine

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

const (
	inspectorWidth      = 240
	inspectorFontHeight = 10
	inspectorFontOffset = 6
)

var inspectorBackground = color.RGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xC0}

// DebugLayer is the scene inspector: a terminal overlay on the left edge of
// the frame listing the scene's cameras, lights, meshes, particle systems,
// sounds and animations.
type DebugLayer struct {
	scene   *Scene
	visible bool

	// OnVisibilityChanged is notified with the new state by Show and Hide.
	OnVisibilityChanged Observable[bool]
}

func newDebugLayer(s *Scene) *DebugLayer {
	return &DebugLayer{scene: s}
}

func (d *DebugLayer) IsVisible() bool { return d.visible }

func (d *DebugLayer) Show() {
	if d.visible {
		return
	}
	d.visible = true
	d.scene.engine.Logf("inspector: shown")
	d.OnVisibilityChanged.Notify(true)
}

func (d *DebugLayer) Hide() {
	if !d.visible {
		return
	}
	d.visible = false
	d.scene.engine.Logf("inspector: hidden")
	d.OnVisibilityChanged.Notify(false)
}

// Toggle flips visibility and returns the new state.
func (d *DebugLayer) Toggle() bool {
	if d.visible {
		d.Hide()
	} else {
		d.Show()
	}
	return d.visible
}

// Lines returns the inspector listing.
func (d *DebugLayer) Lines() []string {
	s := d.scene
	var out []string
	add := func(format string, args ...any) { out = append(out, fmt.Sprintf(format, args...)) }

	add("scene  frame %d", s.renderCount)
	add("cameras %d", len(s.cameras))
	for _, c := range s.cameras {
		mark := " "
		if c == s.ActiveCamera {
			mark = "*"
		}
		add("%s %s %s", mark, c.Name, fmtVec(c.Position))
	}
	add("lights %d", len(s.lights))
	for _, l := range s.lights {
		add("  %s i=%.2f", l.Name, l.Intensity)
	}
	add("meshes %d", len(s.meshes))
	for _, m := range s.meshes {
		add("  %s v=%d %s", m.Name, m.TotalVertices(), fmtVec(m.AbsolutePosition()))
	}
	if len(s.particleSystems) > 0 {
		add("particles %d", len(s.particleSystems))
		for _, ps := range s.particleSystems {
			add("  %s %d/%d", ps.Name, ps.ActiveCount(), ps.Capacity())
		}
	}
	if len(s.sounds) > 0 {
		add("sounds %d", len(s.sounds))
		for _, snd := range s.sounds {
			add("  %s playing=%t", snd.Name, snd.IsPlaying())
		}
	}
	add("animations %d", len(s.animatables))
	return out
}

func fmtVec(v Vec3) string {
	return fmt.Sprintf("(%.1f,%.1f,%.1f)", v.X, v.Y, v.Z)
}

func (d *DebugLayer) draw(frame *image.RGBA) {
	b := frame.Bounds()
	w := min(inspectorWidth, b.Dx())
	if w <= 0 || b.Dy() < inspectorFontHeight {
		return
	}
	panel, ok := frame.SubImage(image.Rect(b.Min.X, b.Min.Y, b.Min.X+w, b.Max.Y)).(*image.RGBA)
	if !ok {
		return
	}
	disp := NewImageDisplay(panel)
	_ = disp.FillRectangle(0, 0, int16(w), int16(b.Dy()), inspectorBackground)

	term := tinyterm.NewTerminal(disp)
	term.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: inspectorFontHeight,
		FontOffset: inspectorFontOffset,
	})
	// Configure feeds one line, and the last row is kept free so the
	// terminal never scrolls.
	rows := b.Dy()/inspectorFontHeight - 2
	if rows <= 0 {
		return
	}
	lines := d.Lines()
	if len(lines) > rows {
		lines = lines[:rows]
	}
	_, _ = term.Write([]byte(strings.Join(lines, "\r\n")))
	_ = disp.Display()
}
