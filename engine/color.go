package engine

import "image/color"

// Color3 is a linear RGB color with 0..1 channels.
type Color3 struct {
	R, G, B float32
}

// Color4 is Color3 plus alpha.
type Color4 struct {
	R, G, B, A float32
}

func NewColor3(r, g, b float32) Color3    { return Color3{R: r, G: g, B: b} }
func NewColor4(r, g, b, a float32) Color4 { return Color4{R: r, G: g, B: b, A: a} }

func (c Color3) Add(o Color3) Color3    { return Color3{c.R + o.R, c.G + o.G, c.B + o.B} }
func (c Color3) Scale(s float32) Color3 { return Color3{c.R * s, c.G * s, c.B * s} }
func (c Color3) Mul(o Color3) Color3    { return Color3{c.R * o.R, c.G * o.G, c.B * o.B} }

// RGBA converts c to 8-bit channels, clamping out-of-range values.
func (c Color3) RGBA() color.RGBA {
	return color.RGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: 0xFF}
}

// Color4 returns c with the given alpha.
func (c Color3) Color4(a float32) Color4 { return Color4{c.R, c.G, c.B, a} }

func (c Color4) Lerp(o Color4, t float32) Color4 {
	return Color4{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}

func (c Color4) RGBA() color.RGBA {
	return color.RGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// Color3FromRGBA converts 8-bit channels to a Color3.
func Color3FromRGBA(c color.RGBA) Color3 {
	return Color3{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

func to8(v float32) uint8 {
	return uint8(Clamp01(v)*255 + 0.5)
}

func mulRGBA(c color.RGBA, l Color3) color.RGBA {
	return color.RGBA{
		R: uint8(clampF32(float32(c.R)*l.R, 0, 255)),
		G: uint8(clampF32(float32(c.G)*l.G, 0, 255)),
		B: uint8(clampF32(float32(c.B)*l.B, 0, 255)),
		A: c.A,
	}
}

func addRGBA(dst, src color.RGBA, amount float32) color.RGBA {
	add := func(d, s uint8) uint8 {
		return uint8(clampF32(float32(d)+float32(s)*amount, 0, 255))
	}
	return color.RGBA{R: add(dst.R, src.R), G: add(dst.G, src.G), B: add(dst.B, src.B), A: 0xFF}
}
