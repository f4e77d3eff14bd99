package engine

import "math"

// SphereOptions configures CreateSphere.
type SphereOptions struct {
	Diameter float32 // default 1
	Segments int     // default 32
}

// BoxOptions configures CreateBox. Width, Height and Depth override Size.
type BoxOptions struct {
	Size                 float32 // default 1
	Width, Height, Depth float32
}

// PlaneOptions configures CreatePlane. Width and Height override Size.
type PlaneOptions struct {
	Size          float32 // default 1
	Width, Height float32
}

// CreateSphere builds a UV sphere centred on the origin.
func CreateSphere(name string, opts SphereOptions, s *Scene) *Mesh {
	d := opts.Diameter
	if d == 0 {
		d = 1
	}
	segs := opts.Segments
	if segs < 3 {
		segs = 32
	}
	r := d / 2
	rings := segs

	m := NewMesh(name, s)
	m.Vertices = make([]Vertex, 0, (rings+1)*(segs+1))
	for i := 0; i <= rings; i++ {
		theta := math.Pi * float64(i) / float64(rings)
		st, ct := float32(math.Sin(theta)), float32(math.Cos(theta))
		for j := 0; j <= segs; j++ {
			phi := 2 * math.Pi * float64(j) / float64(segs)
			sp, cp := float32(math.Sin(phi)), float32(math.Cos(phi))
			n := V3(st*cp, ct, st*sp)
			m.Vertices = append(m.Vertices, Vertex{
				Pos:    n.Mul(r),
				Normal: n,
				U:      float32(j) / float32(segs),
				V:      1 - float32(i)/float32(rings),
			})
		}
	}
	m.Indices = make([]uint32, 0, rings*segs*6)
	row := uint32(segs + 1)
	for i := 0; i < rings; i++ {
		for j := 0; j < segs; j++ {
			a := uint32(i)*row + uint32(j)
			b := a + row
			c := a + 1
			d := b + 1
			m.Indices = append(m.Indices, a, c, b, c, d, b)
		}
	}
	return m
}

// CreateBox builds an axis-aligned box centred on the origin.
func CreateBox(name string, opts BoxOptions, s *Scene) *Mesh {
	size := opts.Size
	if size == 0 {
		size = 1
	}
	w, h, dp := opts.Width, opts.Height, opts.Depth
	if w == 0 {
		w = size
	}
	if h == 0 {
		h = size
	}
	if dp == 0 {
		dp = size
	}
	half := V3(w/2, h/2, dp/2)

	// Each face: outward normal n and in-plane axes u, v with u x v = n.
	faces := [6][3]Vec3{
		{V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1)},
		{V3(-1, 0, 0), V3(0, 0, 1), V3(0, 1, 0)},
		{V3(0, 1, 0), V3(0, 0, 1), V3(1, 0, 0)},
		{V3(0, -1, 0), V3(1, 0, 0), V3(0, 0, 1)},
		{V3(0, 0, 1), V3(1, 0, 0), V3(0, 1, 0)},
		{V3(0, 0, -1), V3(0, 1, 0), V3(1, 0, 0)},
	}
	scale := func(v Vec3) Vec3 { return V3(v.X*half.X, v.Y*half.Y, v.Z*half.Z) }

	m := NewMesh(name, s)
	for _, f := range faces {
		n, u, v := f[0], scale(f[1]), scale(f[2])
		c := scale(n)
		base := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices,
			Vertex{Pos: c.Sub(u).Sub(v), Normal: n, U: 0, V: 0},
			Vertex{Pos: c.Add(u).Sub(v), Normal: n, U: 1, V: 0},
			Vertex{Pos: c.Add(u).Add(v), Normal: n, U: 1, V: 1},
			Vertex{Pos: c.Sub(u).Add(v), Normal: n, U: 0, V: 1},
		)
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// CreatePlane builds a rectangle in the XY plane whose front faces -Z.
func CreatePlane(name string, opts PlaneOptions, s *Scene) *Mesh {
	size := opts.Size
	if size == 0 {
		size = 1
	}
	w, h := opts.Width, opts.Height
	if w == 0 {
		w = size
	}
	if h == 0 {
		h = size
	}
	n := V3(0, 0, -1)
	m := NewMesh(name, s)
	m.Vertices = []Vertex{
		{Pos: V3(-w/2, -h/2, 0), Normal: n, U: 0, V: 0},
		{Pos: V3(w/2, -h/2, 0), Normal: n, U: 1, V: 0},
		{Pos: V3(w/2, h/2, 0), Normal: n, U: 1, V: 1},
		{Pos: V3(-w/2, h/2, 0), Normal: n, U: 0, V: 1},
	}
	m.Indices = []uint32{0, 2, 1, 0, 3, 2}
	return m
}
