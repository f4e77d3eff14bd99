package engine

// Vertex is a mesh vertex.
type Vertex struct {
	Pos    Vec3
	Normal Vec3
	U, V   float32
}

// Mesh is an indexed triangle list with a transform and a material.
// A mesh without indices is a grouping node, e.g. the root of an import.
type Mesh struct {
	Node

	Vertices []Vertex
	Indices  []uint32

	Material   *StandardMaterial
	IsPickable bool
	Visibility float32

	// Animations holds the animations BeginAnimation plays on this mesh.
	Animations []*Animation

	// OnPointer is notified when a pointer event picks this mesh.
	OnPointer Observable[PointerInfo]
}

// NewMesh creates an empty mesh in s.
func NewMesh(name string, s *Scene) *Mesh {
	m := &Mesh{IsPickable: true, Visibility: 1}
	m.init(name, s)
	s.meshes = append(s.meshes, m)
	return m
}

// TotalVertices returns the vertex count.
func (m *Mesh) TotalVertices() int { return len(m.Vertices) }

// TotalIndices returns the index count.
func (m *Mesh) TotalIndices() int { return len(m.Indices) }

// ChildMeshes returns meshes parented directly to m.
func (m *Mesh) ChildMeshes() []*Mesh {
	var out []*Mesh
	for _, c := range m.scene.meshes {
		if c.parent == &m.Node {
			out = append(out, c)
		}
	}
	return out
}

// Property reads an animatable Vec3 property.
func (m *Mesh) Property(name string) (Vec3, bool) {
	switch name {
	case "position":
		return m.Position, true
	case "rotation":
		return m.Rotation, true
	case "scaling":
		return m.Scaling, true
	}
	return Vec3{}, false
}

// SetProperty writes an animatable Vec3 property.
func (m *Mesh) SetProperty(name string, v Vec3) bool {
	switch name {
	case "position":
		m.Position = v
	case "rotation":
		m.Rotation = v
	case "scaling":
		m.Scaling = v
	default:
		return false
	}
	return true
}

// Dispose removes m and its descendants from the scene.
func (m *Mesh) Dispose() {
	if m.scene == nil {
		return
	}
	for _, c := range m.ChildMeshes() {
		c.Dispose()
	}
	s := m.scene
	for i, cur := range s.meshes {
		if cur == m {
			s.meshes = append(s.meshes[:i], s.meshes[i+1:]...)
			break
		}
	}
	s.stopAnimationsOf(m)
	m.SetParent(nil)
	m.OnPointer.Clear()
	m.scene = nil
}
