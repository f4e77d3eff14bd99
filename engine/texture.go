package engine

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// CoordinatesMode selects how a texture is mapped.
type CoordinatesMode uint8

const (
	ExplicitMode CoordinatesMode = iota
	SkyboxMode
)

// Texture is a 2D RGBA image sampled by materials and particles.
type Texture struct {
	Name     string
	URL      string
	HasAlpha bool

	img   *image.RGBA
	ready bool

	// OnLoad is notified on the frame goroutine once the image is decoded.
	OnLoad Observable[*Texture]
	// OnError is notified if loading fails.
	OnError Observable[error]
}

// NewTexture loads url from the engine's assets in the background.
func NewTexture(url string, s *Scene) *Texture {
	t := &Texture{Name: url, URL: url}
	s.textures = append(s.textures, t)
	e := s.engine
	go func() {
		img, err := readImage(e.assets, url)
		e.Post(func() {
			if err != nil {
				e.Logf("texture %s: %v", url, err)
				t.OnError.Notify(err)
				return
			}
			t.SetImage(img)
		})
	}()
	return t
}

// NewDynamicTexture creates a blank w x h texture drawn by code.
func NewDynamicTexture(name string, w, h int, s *Scene) *Texture {
	t := &Texture{Name: name, HasAlpha: true}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	t.img = image.NewRGBA(image.Rect(0, 0, w, h))
	t.ready = true
	if s != nil {
		s.textures = append(s.textures, t)
	}
	return t
}

// SetImage replaces the texture data and marks it ready.
func (t *Texture) SetImage(img *image.RGBA) {
	t.img = img
	t.ready = img != nil
	if t.ready {
		t.OnLoad.Notify(t)
	}
}

// Image returns the backing image, nil until loaded.
func (t *Texture) Image() *image.RGBA { return t.img }

// IsReady reports whether the texture has pixel data.
func (t *Texture) IsReady() bool { return t != nil && t.ready }

// Size returns the texture dimensions.
func (t *Texture) Size() (w, h int) {
	if t.img == nil {
		return 0, 0
	}
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// Sample returns the nearest texel for u, v in [0, 1], v = 0 at the bottom.
func (t *Texture) Sample(u, v float32) color.RGBA {
	if t.img == nil {
		return color.RGBA{}
	}
	return sampleRGBA(t.img, u, 1-v)
}

func sampleRGBA(img *image.RGBA, u, v float32) color.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	x := int(Clamp01(u) * float32(w-1))
	y := int(Clamp01(v) * float32(h-1))
	off := img.PixOffset(b.Min.X+x, b.Min.Y+y)
	p := img.Pix[off : off+4 : off+4]
	return color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Cube faces in storage order.
const (
	facePX = iota
	facePY
	facePZ
	faceNX
	faceNY
	faceNZ
)

// DefaultCubeExtensions are appended to a cube texture root URL.
var DefaultCubeExtensions = []string{"_px.jpg", "_py.jpg", "_pz.jpg", "_nx.jpg", "_ny.jpg", "_nz.jpg"}

// CubeTexture is six images addressed by direction.
type CubeTexture struct {
	RootURL         string
	CoordinatesMode CoordinatesMode

	faces [6]*image.RGBA
	ready bool

	OnLoad  Observable[*CubeTexture]
	OnError Observable[error]
}

// NewCubeTexture loads rootURL plus each of DefaultCubeExtensions.
func NewCubeTexture(rootURL string, s *Scene) *CubeTexture {
	return NewCubeTextureWithExtensions(rootURL, DefaultCubeExtensions, s)
}

// NewCubeTextureWithExtensions loads rootURL+ext for the six faces in
// px, py, pz, nx, ny, nz order.
func NewCubeTextureWithExtensions(rootURL string, exts []string, s *Scene) *CubeTexture {
	c := &CubeTexture{RootURL: rootURL, CoordinatesMode: ExplicitMode}
	s.cubeTextures = append(s.cubeTextures, c)
	e := s.engine
	if len(exts) != 6 {
		err := fmt.Errorf("cube texture %s: need 6 extensions, got %d", rootURL, len(exts))
		e.Post(func() {
			e.Logf("%v", err)
			c.OnError.Notify(err)
		})
		return c
	}
	go func() {
		var faces [6]*image.RGBA
		var err error
		for i, ext := range exts {
			faces[i], err = readImage(e.assets, rootURL+ext)
			if err != nil {
				break
			}
		}
		e.Post(func() {
			if err != nil {
				e.Logf("cube texture %s: %v", rootURL, err)
				c.OnError.Notify(err)
				return
			}
			c.faces = faces
			c.ready = true
			c.OnLoad.Notify(c)
		})
	}()
	return c
}

// IsReady reports whether all six faces are loaded.
func (c *CubeTexture) IsReady() bool { return c != nil && c.ready }

// Sample returns the texel seen along direction d.
func (c *CubeTexture) Sample(d Vec3) color.RGBA {
	if !c.ready {
		return color.RGBA{}
	}
	ax, ay, az := abs32(d.X), abs32(d.Y), abs32(d.Z)
	var face int
	var sc, tc, ma float32
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if d.X > 0 {
			face, sc, tc = facePX, -d.Z, -d.Y
		} else {
			face, sc, tc = faceNX, d.Z, -d.Y
		}
	case ay >= az:
		ma = ay
		if d.Y > 0 {
			face, sc, tc = facePY, d.X, d.Z
		} else {
			face, sc, tc = faceNY, d.X, -d.Z
		}
	default:
		ma = az
		if d.Z > 0 {
			face, sc, tc = facePZ, d.X, -d.Y
		} else {
			face, sc, tc = faceNZ, -d.X, -d.Y
		}
	}
	if ma == 0 {
		return color.RGBA{}
	}
	img := c.faces[face]
	if img == nil {
		return color.RGBA{}
	}
	return sampleRGBA(img, (sc/ma+1)/2, (tc/ma+1)/2)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func readImage(fsys fs.FS, name string) (*image.RGBA, error) {
	data, err := readAsset(fsys, name)
	if err != nil {
		return nil, err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba, nil
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, src, b, xdraw.Src, nil)
	return dst, nil
}

// readAsset reads a slash-separated asset path, tolerating "./" and leading
// "/" prefixes.
func readAsset(fsys fs.FS, name string) ([]byte, error) {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	return fs.ReadFile(fsys, name)
}
