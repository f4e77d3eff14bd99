//go:build cgo || js

package hal

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"xrscene/internal/buildinfo"
)

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Host HostConfig
	// Scale is the initial window size multiplier; zero means 1.
	Scale int
}

// RunWindow starts a resizable desktop window showing the surface and
// forwarding keyboard, pointer and gamepad input. It blocks until the
// window closes.
func RunWindow(newApp func(HAL) func() error, cfg WindowConfig) error {
	h := newHost(cfg.Host, newHostTime())
	step := newApp(h)

	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	w, hh := h.surface.ClientSize()
	g := &hostGame{h: h, in: newHostInput(h.surface, h.pad), step: step}
	ebiten.SetWindowTitle("xrscene (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(w*scale, hh*scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h     *hostHAL
	in    *hostInput
	img   *image.RGBA
	fbImg *ebiten.Image
	step  func() error
}

func (g *hostGame) Update() error {
	g.in.poll()
	g.h.t.step(1)
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	img := g.h.surface.snapshot(g.img)
	if img == nil {
		return
	}
	if img != g.img {
		g.img = img
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(img.Bounds().Dx(), img.Bounds().Dy())
	}
	g.fbImg.WritePixels(g.img.Pix)

	// The frame is smaller than the screen when hardware scaling is on.
	op := &ebiten.DrawImageOptions{}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op.GeoM.Scale(float64(sw)/float64(img.Bounds().Dx()), float64(sh)/float64(img.Bounds().Dy()))
	screen.DrawImage(g.fbImg, op)
}

// Layout follows the window size; every change becomes one resize event.
func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		g.h.surface.resize(outsideWidth, outsideHeight)
	}
	return g.h.surface.ClientSize()
}
