package engine

// Node is the transform shared by meshes, cameras and lights.
type Node struct {
	Name string
	ID   string

	Position Vec3
	Rotation Vec3 // Euler angles, radians
	Scaling  Vec3

	parent   *Node
	children []*Node
	enabled  bool
	scene    *Scene
}

func (n *Node) init(name string, s *Scene) {
	n.Name = name
	n.ID = name
	n.Scaling = V3(1, 1, 1)
	n.enabled = true
	n.scene = s
}

// Scene returns the scene n belongs to.
func (n *Node) Scene() *Scene { return n.scene }

// Parent returns the parent of n, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the immediate descendants of n.
func (n *Node) Children() []*Node { return append([]*Node(nil), n.children...) }

// SetParent makes p the parent of n. A nil p detaches n.
func (n *Node) SetParent(p *Node) {
	if n.parent != nil {
		ch := n.parent.children
		for i, c := range ch {
			if c == n {
				n.parent.children = append(ch[:i], ch[i+1:]...)
				break
			}
		}
	}
	n.parent = p
	if p != nil {
		p.children = append(p.children, n)
	}
}

// SetEnabled enables or disables n and, implicitly, its descendants.
func (n *Node) SetEnabled(on bool) { n.enabled = on }

// IsEnabled reports whether n and all of its ancestors are enabled.
func (n *Node) IsEnabled() bool {
	for c := n; c != nil; c = c.parent {
		if !c.enabled {
			return false
		}
	}
	return true
}

// LocalMatrix composes scaling, rotation and position.
func (n *Node) LocalMatrix() Mat4 {
	return Mat4Compose(n.Scaling, n.Rotation, n.Position)
}

// WorldMatrix is the local matrix chained through every ancestor.
func (n *Node) WorldMatrix() Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = Mat4Mul(p.LocalMatrix(), m)
	}
	return m
}

// AbsolutePosition is the world-space origin of n.
func (n *Node) AbsolutePosition() Vec3 {
	return TransformPoint(n.WorldMatrix(), Vec3{})
}

// node lets scene lookups treat every entity uniformly.
func (n *Node) node() *Node { return n }

// TransformNode is a node without geometry.
type TransformNode struct {
	Node
}

// NewTransformNode creates a transform node in s.
func NewTransformNode(name string, s *Scene) *TransformNode {
	t := &TransformNode{}
	t.init(name, s)
	s.transforms = append(s.transforms, t)
	return t
}
