package engine

// PointerInfo describes a pointer event and what it hit.
type PointerInfo struct {
	Type   EventType
	Button int

	// X and Y are render pixel coordinates.
	X, Y int

	Hit         bool
	Mesh        *Mesh
	Distance    float32
	PickedPoint Vec3
	// U and V are the texture coordinates at the hit, v = 0 at the bottom.
	U, V float32
}

// intersect returns the distance along dir to the nearest triangle of m and
// the interpolated texture coordinates there.
func (m *Mesh) intersect(origin, dir Vec3) (dist, u, v float32, ok bool) {
	world := m.WorldMatrix()
	best := float32(-1)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := int(m.Indices[i]), int(m.Indices[i+1]), int(m.Indices[i+2])
		if i0 >= len(m.Vertices) || i1 >= len(m.Vertices) || i2 >= len(m.Vertices) {
			continue
		}
		a, b, c := m.Vertices[i0], m.Vertices[i1], m.Vertices[i2]
		p0 := TransformPoint(world, a.Pos)
		p1 := TransformPoint(world, b.Pos)
		p2 := TransformPoint(world, c.Pos)
		t, bu, bv, hit := rayTriangle(origin, dir, p0, p1, p2)
		if !hit || (best >= 0 && t >= best) {
			continue
		}
		best = t
		bw := 1 - bu - bv
		u = bw*a.U + bu*b.U + bv*c.U
		v = bw*a.V + bu*b.V + bv*c.V
	}
	if best < 0 {
		return 0, 0, 0, false
	}
	return best, u, v, true
}

// rayTriangle is the Möller–Trumbore test. Both windings hit.
func rayTriangle(origin, dir, p0, p1, p2 Vec3) (t, u, v float32, ok bool) {
	const eps = 1e-6
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	pv := Cross(dir, e2)
	det := Dot(e1, pv)
	if det > -eps && det < eps {
		return 0, 0, 0, false
	}
	inv := 1 / det
	tv := origin.Sub(p0)
	u = Dot(tv, pv) * inv
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}
	qv := Cross(tv, e1)
	v = Dot(dir, qv) * inv
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	t = Dot(e2, qv) * inv
	if t <= eps {
		return 0, 0, 0, false
	}
	return t, u, v, true
}
