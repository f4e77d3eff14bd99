package engine

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path"

	"github.com/qmuntal/gltf"
)

// ImportResult is what ImportMeshAsync produces. Meshes[0] is the root
// "__root__" node that every imported mesh is parented to.
type ImportResult struct {
	Meshes []*Mesh
}

// Root returns the import root, nil for an empty result.
func (r *ImportResult) Root() *Mesh {
	if r == nil || len(r.Meshes) == 0 {
		return nil
	}
	return r.Meshes[0]
}

// ImportMeshAsync reads rootURL+file (glTF or GLB) from the engine's assets
// in the background and adds its meshes to s on the frame goroutine.
//
// The asset's right-handed coordinates are mirrored on Z so models keep
// their handedness in the left-handed scene.
func ImportMeshAsync(ctx context.Context, s *Scene, rootURL, file string) *Future[*ImportResult] {
	f := NewFuture[*ImportResult]()
	e := s.engine
	name := path.Join(rootURL, file)
	go func() {
		geos, err := loadGeometries(e, rootURL, name)
		if err == nil {
			err = ctx.Err()
		}
		e.Post(func() {
			if err == nil && ctx.Err() != nil {
				err = ctx.Err()
			}
			if err == nil && s.IsDisposed() {
				err = ErrDisposed
			}
			if err != nil {
				err = fmt.Errorf("import %s: %w", name, err)
				e.Logf("%v", err)
				f.Reject(err)
				return
			}
			f.Resolve(buildImport(s, geos))
		})
	}()
	return f
}

// loadGeometries decodes name (glTF or GLB). External buffers resolve
// against rootURL in the engine's assets.
func loadGeometries(e *Engine, rootURL, name string) ([]geometry, error) {
	data, err := readAsset(e.assets, name)
	if err != nil {
		return nil, err
	}
	dir, err := fs.Sub(e.assets, assetDir(rootURL))
	if err != nil {
		return nil, err
	}
	var doc gltf.Document
	if err := gltf.NewDecoderFS(bytes.NewReader(data), dir).Decode(&doc); err != nil {
		return nil, err
	}
	return sceneGeometries(&doc)
}

func assetDir(rootURL string) string {
	d := path.Clean("/" + rootURL)[1:]
	if d == "" {
		return "."
	}
	return d
}

func buildImport(s *Scene, geos []geometry) *ImportResult {
	root := NewMesh("__root__", s)
	res := &ImportResult{Meshes: []*Mesh{root}}
	for i, g := range geos {
		name := g.name
		if name == "" {
			name = fmt.Sprintf("mesh%d", i)
		}
		m := NewMesh(name, s)
		m.Vertices = make([]Vertex, len(g.positions))
		for j, p := range g.positions {
			v := Vertex{Pos: V3(p[0], p[1], -p[2])}
			if j < len(g.normals) {
				n := g.normals[j]
				v.Normal = V3(n[0], n[1], -n[2])
			}
			if j < len(g.uvs) {
				v.U, v.V = g.uvs[j][0], 1-g.uvs[j][1]
			}
			m.Vertices[j] = v
		}
		m.Indices = make([]uint32, len(g.indices))
		for j := 0; j+2 < len(g.indices); j += 3 {
			m.Indices[j], m.Indices[j+1], m.Indices[j+2] = g.indices[j], g.indices[j+2], g.indices[j+1]
		}
		mat := NewStandardMaterial(name + " material")
		mat.DiffuseColor = NewColor3(g.baseColor[0], g.baseColor[1], g.baseColor[2])
		mat.Alpha = g.baseColor[3]
		mat.BackFaceCulling = !g.doubleSided
		m.Material = mat
		m.SetParent(&root.Node)
		res.Meshes = append(res.Meshes, m)
	}
	return res
}
