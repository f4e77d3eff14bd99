package engine

import (
	"fmt"
	"math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// geometry is one triangle-list primitive with its node transform applied.
// Coordinates stay right-handed as stored in the asset.
type geometry struct {
	name        string
	positions   [][3]float32
	normals     [][3]float32
	uvs         [][2]float32
	indices     []uint32
	baseColor   [4]float32
	doubleSided bool
}

// mat4 is a column-major 4x4 matrix.
type mat4 [16]float64

func identity4() mat4 { return mat4{0: 1, 5: 1, 10: 1, 15: 1} }

func (a mat4) mul(b mat4) mat4 {
	var out mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var s float64
			for k := 0; k < 4; k++ {
				s += a[k*4+r] * b[c*4+k]
			}
			out[c*4+r] = s
		}
	}
	return out
}

func (a mat4) point(p [3]float32) [3]float32 {
	x, y, z := float64(p[0]), float64(p[1]), float64(p[2])
	return [3]float32{
		float32(a[0]*x + a[4]*y + a[8]*z + a[12]),
		float32(a[1]*x + a[5]*y + a[9]*z + a[13]),
		float32(a[2]*x + a[6]*y + a[10]*z + a[14]),
	}
}

func (a mat4) dir(d [3]float32) [3]float32 {
	x, y, z := float64(d[0]), float64(d[1]), float64(d[2])
	v := [3]float64{
		a[0]*x + a[4]*y + a[8]*z,
		a[1]*x + a[5]*y + a[9]*z,
		a[2]*x + a[6]*y + a[10]*z,
	}
	l := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l == 0 {
		return d
	}
	return [3]float32{float32(v[0] / l), float32(v[1] / l), float32(v[2] / l)}
}

func (a mat4) det3() float64 {
	return a[0]*(a[5]*a[10]-a[9]*a[6]) -
		a[4]*(a[1]*a[10]-a[9]*a[2]) +
		a[8]*(a[1]*a[6]-a[5]*a[2])
}

// nodeMatrix is n's local transform. A non-identity matrix wins over TRS;
// a zero quaternion or zero scale counts as unset.
func nodeMatrix(n *gltf.Node) mat4 {
	var m mat4
	for i, v := range n.Matrix {
		m[i] = float64(v)
	}
	if m != (mat4{}) && m != identity4() {
		return m
	}
	t := [3]float64{float64(n.Translation[0]), float64(n.Translation[1]), float64(n.Translation[2])}
	q := [4]float64{float64(n.Rotation[0]), float64(n.Rotation[1]), float64(n.Rotation[2]), float64(n.Rotation[3])}
	if q == ([4]float64{}) {
		q[3] = 1
	}
	s := [3]float64{float64(n.Scale[0]), float64(n.Scale[1]), float64(n.Scale[2])}
	if s == ([3]float64{}) {
		s = [3]float64{1, 1, 1}
	}
	x, y, z, w := q[0], q[1], q[2], q[3]
	return mat4{
		(1 - 2*(y*y+z*z)) * s[0], 2 * (x*y + z*w) * s[0], 2 * (x*z - y*w) * s[0], 0,
		2 * (x*y - z*w) * s[1], (1 - 2*(x*x+z*z)) * s[1], 2 * (y*z + x*w) * s[1], 0,
		2 * (x*z + y*w) * s[2], 2 * (y*z - x*w) * s[2], (1 - 2*(x*x+y*y)) * s[2], 0,
		t[0], t[1], t[2], 1,
	}
}

// sceneGeometries walks the default scene (or every parentless node when
// the document declares none) and returns its triangle primitives in node
// order.
func sceneGeometries(doc *gltf.Document) ([]geometry, error) {
	roots, err := sceneRoots(doc)
	if err != nil {
		return nil, err
	}
	var out []geometry
	visited := make(map[int]bool)
	var walk func(idx int, parent mat4) error
	walk = func(idx int, parent mat4) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("gltf: invalid node index %d", idx)
		}
		if visited[idx] {
			return fmt.Errorf("gltf: node %d visited twice", idx)
		}
		visited[idx] = true
		n := doc.Nodes[idx]
		world := parent.mul(nodeMatrix(n))
		if n.Mesh != nil {
			geos, err := meshGeometries(doc, *n.Mesh, n.Name, world)
			if err != nil {
				return err
			}
			out = append(out, geos...)
		}
		for _, c := range n.Children {
			if err := walk(c, world); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range roots {
		if err := walk(r, identity4()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func sceneRoots(doc *gltf.Document) ([]int, error) {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil {
			idx = *doc.Scene
		}
		if idx < 0 || idx >= len(doc.Scenes) {
			return nil, fmt.Errorf("gltf: invalid scene index %d", idx)
		}
		return doc.Scenes[idx].Nodes, nil
	}
	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots, nil
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("gltf: invalid accessor index %d", idx)
	}
	return doc.Accessors[idx], nil
}

func meshGeometries(doc *gltf.Document, meshIdx int, nodeName string, world mat4) ([]geometry, error) {
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return nil, fmt.Errorf("gltf: invalid mesh index %d", meshIdx)
	}
	m := doc.Meshes[meshIdx]
	name := m.Name
	if name == "" {
		name = nodeName
	}
	flip := world.det3() < 0

	var out []geometry
	for pi, p := range m.Primitives {
		switch p.Mode {
		case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
		default:
			continue
		}
		posIdx, ok := p.Attributes["POSITION"]
		if !ok {
			continue
		}
		fail := func(what string, err error) error {
			return fmt.Errorf("mesh %d primitive %d: %s: %w", meshIdx, pi, what, err)
		}
		acr, err := accessor(doc, posIdx)
		if err != nil {
			return nil, fail("POSITION", err)
		}
		pos, err := modeler.ReadPosition(doc, acr, nil)
		if err != nil {
			return nil, fail("POSITION", err)
		}
		geo := geometry{name: name, baseColor: [4]float32{1, 1, 1, 1}}
		if len(m.Primitives) > 1 {
			geo.name = fmt.Sprintf("%s_primitive%d", name, pi)
		}
		geo.positions = make([][3]float32, len(pos))
		for i, v := range pos {
			geo.positions[i] = world.point(v)
		}

		if ni, ok := p.Attributes["NORMAL"]; ok {
			acr, err := accessor(doc, ni)
			if err != nil {
				return nil, fail("NORMAL", err)
			}
			nrm, err := modeler.ReadNormal(doc, acr, nil)
			if err != nil {
				return nil, fail("NORMAL", err)
			}
			geo.normals = make([][3]float32, len(nrm))
			for i, v := range nrm {
				geo.normals[i] = world.dir(v)
			}
		}
		if ti, ok := p.Attributes["TEXCOORD_0"]; ok {
			acr, err := accessor(doc, ti)
			if err != nil {
				return nil, fail("TEXCOORD_0", err)
			}
			if geo.uvs, err = modeler.ReadTextureCoord(doc, acr, nil); err != nil {
				return nil, fail("TEXCOORD_0", err)
			}
		}

		var idx []uint32
		if p.Indices != nil {
			acr, err := accessor(doc, *p.Indices)
			if err != nil {
				return nil, fail("indices", err)
			}
			if idx, err = modeler.ReadIndices(doc, acr, nil); err != nil {
				return nil, fail("indices", err)
			}
		} else {
			idx = make([]uint32, len(geo.positions))
			for i := range idx {
				idx[i] = uint32(i)
			}
		}
		for _, v := range idx {
			if int(v) >= len(geo.positions) {
				return nil, fmt.Errorf("mesh %d primitive %d: index %d out of range", meshIdx, pi, v)
			}
		}
		geo.indices = triangulate(idx, p.Mode)
		if flip {
			for i := 0; i+2 < len(geo.indices); i += 3 {
				geo.indices[i+1], geo.indices[i+2] = geo.indices[i+2], geo.indices[i+1]
			}
		}

		if p.Material != nil && *p.Material >= 0 && *p.Material < len(doc.Materials) {
			mat := doc.Materials[*p.Material]
			if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
				f := *pbr.BaseColorFactor
				geo.baseColor = [4]float32{float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3])}
			}
			geo.doubleSided = mat.DoubleSided
		}
		out = append(out, geo)
	}
	return out, nil
}

func triangulate(idx []uint32, mode gltf.PrimitiveMode) []uint32 {
	switch mode {
	case gltf.PrimitiveTriangleStrip:
		var out []uint32
		for i := 0; i+2 < len(idx); i++ {
			if i%2 == 0 {
				out = append(out, idx[i], idx[i+1], idx[i+2])
			} else {
				out = append(out, idx[i+1], idx[i], idx[i+2])
			}
		}
		return out
	case gltf.PrimitiveTriangleFan:
		var out []uint32
		for i := 1; i+1 < len(idx); i++ {
			out = append(out, idx[0], idx[i], idx[i+1])
		}
		return out
	default:
		return idx[:len(idx)/3*3]
	}
}
