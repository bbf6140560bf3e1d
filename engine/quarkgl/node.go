package quarkgl

// NodeKind tags what a Node carries.
type NodeKind uint8

const (
	NodeGroup NodeKind = iota
	NodeMesh
	NodeLight
)

func (k NodeKind) String() string {
	switch k {
	case NodeMesh:
		return "mesh"
	case NodeLight:
		return "light"
	default:
		return "group"
	}
}

// Material is a minimal surface description.
type Material struct {
	BaseColor Color
	Opacity   uint8 // 0..255. 255 means opaque.
}

// Vertex is a mesh vertex.
type Vertex struct {
	Pos    Vec3
	Normal Vec3
	Color  Color
}

// Geometry is an immutable triangle list shared by every clone of a model.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint16 // triangle list
}

// Mesh binds geometry to a per-node material.
type Mesh struct {
	Geometry *Geometry
	Material Material
}

// Node is an element of a scene graph.
type Node struct {
	Name string
	Kind NodeKind

	Position Vec3
	// Heading is a rotation around the world up axis, in radians.
	Heading Scalar
	Scale   Vec3
	Visible bool

	CastShadow    bool
	ReceiveShadow bool

	Mesh  *Mesh
	Light *PointLight

	Children []*Node
	parent   *Node
}

// NewGroup returns an empty visible group node.
func NewGroup(name string) *Node {
	return &Node{Name: name, Kind: NodeGroup, Scale: V3(1, 1, 1), Visible: true}
}

// NewMeshNode returns a visible node drawing g with material m.
func NewMeshNode(name string, g *Geometry, m Material) *Node {
	n := NewGroup(name)
	n.Kind = NodeMesh
	n.Mesh = &Mesh{Geometry: g, Material: m}
	return n
}

// NewLightNode returns a node carrying l.
func NewLightNode(name string, l PointLight) *Node {
	n := NewGroup(name)
	n.Kind = NodeLight
	n.Light = &l
	return n
}

// Add attaches c as the last child of n, detaching it from any previous parent.
func (n *Node) Add(c *Node) {
	if n == nil || c == nil || c == n {
		return
	}
	if c.parent != nil {
		c.parent.removeChild(c)
	}
	c.parent = n
	n.Children = append(n.Children, c)
}

// Parent returns the node's parent, or nil for roots.
func (n *Node) Parent() *Node { return n.parent }

// Detach removes n from its parent.
func (n *Node) Detach() {
	if n == nil || n.parent == nil {
		return
	}
	n.parent.removeChild(n)
}

func (n *Node) removeChild(c *Node) {
	for i, ch := range n.Children {
		if ch == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

// Clone returns an independent copy of the subtree rooted at n. The clone has no
// parent. Geometry is shared; materials, lights and transforms are copied.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.parent = nil
	if n.Mesh != nil {
		m := *n.Mesh
		c.Mesh = &m
	}
	if n.Light != nil {
		l := *n.Light
		c.Light = &l
	}
	c.Children = nil
	if len(n.Children) > 0 {
		c.Children = make([]*Node, 0, len(n.Children))
		for _, ch := range n.Children {
			cc := ch.Clone()
			cc.parent = &c
			c.Children = append(c.Children, cc)
		}
	}
	return &c
}

// Traverse calls fn for n and every descendant, parents first.
func (n *Node) Traverse(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// Find returns the first node in the subtree with the given name.
func (n *Node) Find(name string) *Node {
	var out *Node
	n.Traverse(func(x *Node) {
		if out == nil && x.Name == name {
			out = x
		}
	})
	return out
}

// LocalMatrix returns the node's transform relative to its parent.
func (n *Node) LocalMatrix() Mat4 {
	s := n.Scale
	if s == (Vec3{}) {
		s = V3(1, 1, 1)
	}
	return Mat4TRS(n.Position, n.Heading, s)
}

// WorldMatrix walks up the parent chain.
func (n *Node) WorldMatrix() Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = Mat4Mul(p.LocalMatrix(), m)
	}
	return m
}
