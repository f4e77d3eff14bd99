package engine

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"
)

// ImageDisplay exposes an *image.RGBA as a drivers.Displayer so tinyfont and
// tinyterm can draw into frames and textures.
//
// Colors with an alpha below 0xFF are blended over the existing pixels.
type ImageDisplay struct {
	img *image.RGBA
}

func NewImageDisplay(img *image.RGBA) *ImageDisplay {
	return &ImageDisplay{img: img}
}

// Image returns the backing image.
func (d *ImageDisplay) Image() *image.RGBA { return d.img }

func (d *ImageDisplay) Size() (x, y int16) {
	if d.img == nil {
		return 0, 0
	}
	b := d.img.Bounds()
	return int16(min(b.Dx(), 0x7FFF)), int16(min(b.Dy(), 0x7FFF))
}

func (d *ImageDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.img == nil || c.A == 0 {
		return
	}
	b := d.img.Bounds()
	ix, iy := int(x), int(y)
	if ix < 0 || iy < 0 || ix >= b.Dx() || iy >= b.Dy() {
		return
	}
	off := d.img.PixOffset(b.Min.X+ix, b.Min.Y+iy)
	p := d.img.Pix[off : off+4 : off+4]
	if c.A == 0xFF {
		p[0], p[1], p[2], p[3] = c.R, c.G, c.B, 0xFF
		return
	}
	a := uint32(c.A)
	inv := 255 - a
	p[0] = uint8((uint32(c.R)*a + uint32(p[0])*inv) / 255)
	p[1] = uint8((uint32(c.G)*a + uint32(p[1])*inv) / 255)
	p[2] = uint8((uint32(c.B)*a + uint32(p[2])*inv) / 255)
	p[3] = uint8(min(uint32(p[3])+a, 255))
}

func (d *ImageDisplay) Display() error { return nil }

func (d *ImageDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if d.img == nil {
		return nil
	}
	b := d.img.Bounds()
	x0 := clampInt(int(x), 0, b.Dx())
	y0 := clampInt(int(y), 0, b.Dy())
	x1 := clampInt(int(x)+int(width), 0, b.Dx())
	y1 := clampInt(int(y)+int(height), 0, b.Dy())
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			d.SetPixel(int16(px), int16(py), c)
		}
	}
	return nil
}

// ScrollUp shifts the image content up by lines rows and clears the bottom.
func (d *ImageDisplay) ScrollUp(lines int16, bg color.RGBA) error {
	if d.img == nil || lines <= 0 {
		return nil
	}
	b := d.img.Bounds()
	w, h := b.Dx(), b.Dy()
	n := int(lines)
	if n >= h {
		return d.FillRectangle(0, 0, int16(w), int16(h), bg)
	}
	stride := d.img.Stride
	start := d.img.PixOffset(b.Min.X, b.Min.Y)
	for row := 0; row < h-n; row++ {
		dst := start + row*stride
		src := dst + n*stride
		copy(d.img.Pix[dst:dst+w*4], d.img.Pix[src:src+w*4])
	}
	return d.FillRectangle(0, int16(h-n), int16(w), int16(n), bg)
}

func (d *ImageDisplay) SetScroll(line int16) { _ = line }

func (d *ImageDisplay) SetRotation(rotation drivers.Rotation) error {
	_ = rotation
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
