package engine

import (
	"image/color"
	"math"
)

// RenderMode selects the rasterization mode.
type RenderMode uint8

const (
	RenderSolid RenderMode = iota
	RenderWireframe
)

// Renderer is a fixed-pipeline software renderer.
//
// Create it once and reuse it; the depth buffer is kept between frames.
type Renderer struct {
	Mode RenderMode

	depthBuf []float32
}

func NewRenderer() *Renderer {
	return &Renderer{Mode: RenderSolid}
}

// viewState is the camera data a frame is rendered with.
type viewState struct {
	view, proj       Mat4
	eye              Vec3
	fwd, right, up   Vec3
	tanHalf, aspect  float32
	near             float32
}

func newViewState(c *Camera, pose *Pose, w, h int) viewState {
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	pos, rot := c.AbsolutePosition(), c.Rotation
	if pose != nil {
		pos, rot = pose.Position, pose.Rotation
	}
	m := Mat4RotationYawPitchRoll(rot)
	fov := c.FOV
	if fov == 0 {
		fov = 0.8
	}
	near := c.MinZ
	if near <= 0 {
		near = 0.1
	}
	return viewState{
		view:    viewFromPose(pos, rot),
		proj:    c.Projection(aspect),
		eye:     pos,
		fwd:     Normalize(TransformDir(m, V3(0, 0, 1))),
		right:   Normalize(TransformDir(m, V3(1, 0, 0))),
		up:      Normalize(TransformDir(m, V3(0, 1, 0))),
		tanHalf: float32(math.Tan(float64(fov) / 2)),
		aspect:  aspect,
		near:    near,
	}
}

// ray returns the world-space direction through pixel (x, y).
func (v viewState) ray(x, y, w, h int) Vec3 {
	nx := (float32(x)+0.5)/float32(w)*2 - 1
	ny := 1 - (float32(y)+0.5)/float32(h)*2
	d := v.fwd.
		Add(v.right.Mul(nx * v.tanHalf * v.aspect)).
		Add(v.up.Mul(ny * v.tanHalf))
	return Normalize(d)
}

// Render draws s as seen through vs into t.
func (r *Renderer) render(t Target, s *Scene, vs viewState) {
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return
	}
	t.Clear(s.ClearColor.RGBA())

	if sky := s.skybox(); sky != nil {
		r.drawSkybox(t, w, h, vs, sky.Material.ReflectionTexture)
	}

	if cap(r.depthBuf) < w*h {
		r.depthBuf = make([]float32, w*h)
	}
	r.depthBuf = r.depthBuf[:w*h]
	for i := range r.depthBuf {
		r.depthBuf[i] = 1e9
	}

	vp := Mat4Mul(vs.proj, vs.view)
	for _, m := range s.meshes {
		if !m.IsEnabled() || m.Visibility <= 0 || len(m.Indices) < 3 || m.Material.isSkybox() {
			continue
		}
		r.renderMesh(t, w, h, vp, vs, m, s.lights)
	}

	for _, ps := range s.particleSystems {
		r.drawParticles(t, w, h, vp, vs, ps)
	}
}

type screenVert struct {
	x, y  int
	z     float32 // NDC depth
	invW  float32
	u, v  float32 // divided by w
}

func (r *Renderer) renderMesh(t Target, w, h int, vp Mat4, vs viewState, m *Mesh, lights []*Light) {
	mat := m.Material
	if mat == nil {
		mat = defaultMaterial
	}
	world := m.WorldMatrix()
	mvp := Mat4Mul(vp, world)
	tex := mat.DiffuseTexture
	textured := tex.IsReady()

	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := int(m.Indices[i]), int(m.Indices[i+1]), int(m.Indices[i+2])
		if i0 >= len(m.Vertices) || i1 >= len(m.Vertices) || i2 >= len(m.Vertices) {
			continue
		}
		v0, v1, v2 := m.Vertices[i0], m.Vertices[i1], m.Vertices[i2]

		w0 := TransformPoint(world, v0.Pos)
		w1 := TransformPoint(world, v1.Pos)
		w2 := TransformPoint(world, v2.Pos)
		n := Normalize(Cross(w1.Sub(w0), w2.Sub(w0)))
		center := w0.Add(w1).Add(w2).Mul(1.0 / 3)
		facing := Dot(n, center.Sub(vs.eye))
		if facing >= 0 {
			if mat.BackFaceCulling {
				continue
			}
			n = n.Mul(-1)
		}

		var sv [3]screenVert
		ok := true
		for k, vert := range [3]Vertex{v0, v1, v2} {
			p := Mat4MulV4(mvp, Vec4{X: vert.Pos.X, Y: vert.Pos.Y, Z: vert.Pos.Z, W: 1})
			// Trivial near clip: drop triangles that reach behind the near plane.
			if p.W < vs.near*0.5 {
				ok = false
				break
			}
			inv := 1 / p.W
			sv[k] = screenVert{
				z:    p.Z * inv,
				invW: inv,
				u:    vert.U * inv,
				v:    vert.V * inv,
			}
			sv[k].x, sv[k].y = ndcToScreen(p.X*inv, p.Y*inv, w, h)
		}
		if !ok {
			continue
		}

		light := mat.EmissiveColor
		if mat.DisableLighting {
			light = light.Add(NewColor3(1, 1, 1))
		} else {
			for _, l := range lights {
				light = light.Add(l.contribution(center, n))
			}
		}

		if r.Mode == RenderWireframe {
			c := mat.DiffuseColor.Mul(light).RGBA()
			r.drawLine(t, sv[0].x, sv[0].y, sv[1].x, sv[1].y, c)
			r.drawLine(t, sv[1].x, sv[1].y, sv[2].x, sv[2].y, c)
			r.drawLine(t, sv[2].x, sv[2].y, sv[0].x, sv[0].y, c)
			continue
		}
		if textured {
			r.fillTriangleTextured(t, w, h, sv, tex, light)
		} else {
			r.fillTriangleFlat(t, w, h, sv, mat.DiffuseColor.Mul(light).RGBA())
		}
	}
}

var defaultMaterial = NewStandardMaterial("default material")

func ndcToScreen(x, y float32, w, h int) (int, int) {
	sx := (x*0.5 + 0.5) * float32(w-1)
	sy := (1 - (y*0.5 + 0.5)) * float32(h-1)
	return int(sx + 0.5), int(sy + 0.5)
}

func (r *Renderer) depthTest(w, x, y int, z float32) bool {
	idx := y*w + x
	if idx < 0 || idx >= len(r.depthBuf) {
		return false
	}
	d := clampF32(z*0.5+0.5, 0, 1)
	if d >= r.depthBuf[idx] {
		return false
	}
	r.depthBuf[idx] = d
	return true
}

// bounds clamps the triangle's bounding box to the target.
func bounds(sv [3]screenVert, w, h int) (minX, minY, maxX, maxY int, ok bool) {
	minX, maxX = min3(sv[0].x, sv[1].x, sv[2].x), max3(sv[0].x, sv[1].x, sv[2].x)
	minY, maxY = min3(sv[0].y, sv[1].y, sv[2].y), max3(sv[0].y, sv[1].y, sv[2].y)
	minX, minY = max(minX, 0), max(minY, 0)
	maxX, maxY = min(maxX, w-1), min(maxY, h-1)
	return minX, minY, maxX, maxY, minX <= maxX && minY <= maxY
}

// orient returns sv with a positive screen-space area, or false for
// degenerate triangles.
func orient(sv [3]screenVert) ([3]screenVert, int, bool) {
	area := edgeFn(sv[0].x, sv[0].y, sv[1].x, sv[1].y, sv[2].x, sv[2].y)
	if area == 0 {
		return sv, 0, false
	}
	if area < 0 {
		sv[1], sv[2] = sv[2], sv[1]
		area = -area
	}
	return sv, area, true
}

func (r *Renderer) fillTriangleFlat(t Target, w, h int, sv [3]screenVert, c color.RGBA) {
	sv, area, ok := orient(sv)
	if !ok {
		return
	}
	minX, minY, maxX, maxY, ok := bounds(sv, w, h)
	if !ok {
		return
	}
	invArea := 1 / float32(area)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			e0 := edgeFn(sv[1].x, sv[1].y, sv[2].x, sv[2].y, x, y)
			e1 := edgeFn(sv[2].x, sv[2].y, sv[0].x, sv[0].y, x, y)
			e2 := edgeFn(sv[0].x, sv[0].y, sv[1].x, sv[1].y, x, y)
			if (e0 | e1 | e2) < 0 {
				continue
			}
			a0, a1, a2 := float32(e0)*invArea, float32(e1)*invArea, float32(e2)*invArea
			if !r.depthTest(w, x, y, a0*sv[0].z+a1*sv[1].z+a2*sv[2].z) {
				continue
			}
			t.SetPixel(x, y, c)
		}
	}
}

func (r *Renderer) fillTriangleTextured(t Target, w, h int, sv [3]screenVert, tex *Texture, light Color3) {
	sv, area, ok := orient(sv)
	if !ok {
		return
	}
	minX, minY, maxX, maxY, ok := bounds(sv, w, h)
	if !ok {
		return
	}
	invArea := 1 / float32(area)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			e0 := edgeFn(sv[1].x, sv[1].y, sv[2].x, sv[2].y, x, y)
			e1 := edgeFn(sv[2].x, sv[2].y, sv[0].x, sv[0].y, x, y)
			e2 := edgeFn(sv[0].x, sv[0].y, sv[1].x, sv[1].y, x, y)
			if (e0 | e1 | e2) < 0 {
				continue
			}
			a0, a1, a2 := float32(e0)*invArea, float32(e1)*invArea, float32(e2)*invArea
			iw := a0*sv[0].invW + a1*sv[1].invW + a2*sv[2].invW
			if iw == 0 {
				continue
			}
			u := (a0*sv[0].u + a1*sv[1].u + a2*sv[2].u) / iw
			v := (a0*sv[0].v + a1*sv[1].v + a2*sv[2].v) / iw
			texel := tex.Sample(u, v)
			if tex.HasAlpha && texel.A < 0x80 {
				continue
			}
			if !r.depthTest(w, x, y, a0*sv[0].z+a1*sv[1].z+a2*sv[2].z) {
				continue
			}
			texel.A = 0xFF
			t.SetPixel(x, y, mulRGBA(texel, light))
		}
	}
}

func (r *Renderer) drawSkybox(t Target, w, h int, vs viewState, cube *CubeTexture) {
	if !cube.IsReady() {
		return
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t.SetPixel(x, y, cube.Sample(vs.ray(x, y, w, h)))
		}
	}
}

func (r *Renderer) drawParticles(t Target, w, h int, vp Mat4, vs viewState, ps *ParticleSystem) {
	if !ps.IsStarted() && ps.ActiveCount() == 0 {
		return
	}
	spriteTex := ps.ParticleTexture
	focal := float32(h) / (2 * vs.tanHalf)
	for i := range ps.particles {
		p := &ps.particles[i]
		c := Mat4MulV4(vp, Vec4{X: p.pos.X, Y: p.pos.Y, Z: p.pos.Z, W: 1})
		if c.W < vs.near {
			continue
		}
		inv := 1 / c.W
		cx, cy := ndcToScreen(c.X*inv, c.Y*inv, w, h)
		depth := c.Z * inv
		half := int(p.size * focal * inv / 2)
		if half < 1 {
			half = 1
		}
		col := p.color.RGBA()
		for y := cy - half; y <= cy+half; y++ {
			if y < 0 || y >= h {
				continue
			}
			for x := cx - half; x <= cx+half; x++ {
				if x < 0 || x >= w {
					continue
				}
				if d := clampF32(depth*0.5+0.5, 0, 1); d >= r.depthBuf[y*w+x] {
					continue
				}
				src := col
				amount := p.color.A
				if spriteTex.IsReady() {
					u := float32(x-cx+half) / float32(2*half+1)
					v := float32(y-cy+half) / float32(2*half+1)
					texel := sampleRGBA(spriteTex.Image(), u, v)
					src = mulRGBA(texel, Color3{p.color.R, p.color.G, p.color.B})
					amount *= float32(texel.A) / 255
				}
				t.SetPixel(x, y, addRGBA(t.At(x, y), src, amount))
			}
		}
	}
}

func (r *Renderer) drawLine(t Target, x0, y0, x1, y1 int, c color.RGBA) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		t.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func edgeFn(x0, y0, x1, y1, x, y int) int {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}
