package quarkgl

// CameraType selects camera projection.
type CameraType uint8

const (
	CameraPerspective CameraType = iota
	CameraOrtho
)

// ParseCameraType maps "perspective" or "ortho" to a projection. The empty
// string is perspective.
func ParseCameraType(s string) (CameraType, bool) {
	switch s {
	case "", "perspective":
		return CameraPerspective, true
	case "ortho", "orthographic":
		return CameraOrtho, true
	}
	return CameraPerspective, false
}

// Camera describes the viewing transform.
type Camera struct {
	Type CameraType

	Position Vec3
	Target   Vec3
	Up       Vec3

	// Perspective.
	FOVYRad Scalar

	// Orthographic (half-height).
	OrthoSize Scalar

	Near Scalar
	Far  Scalar
}

// DefaultCamera is the studio camera: a perspective lens high above the
// ground plane, looking at the origin.
func DefaultCamera() Camera {
	return Camera{
		Type:      CameraPerspective,
		Position:  V3(15, 20, 15),
		Target:    V3(0, 0, 0),
		Up:        V3(0, 1, 0),
		FOVYRad:   Deg(39.6),
		Near:      Scalar(0.01),
		Far:       Scalar(100),
		OrthoSize: Scalar(1),
	}
}

// LookAt points the camera at p.
func (c *Camera) LookAt(p Vec3) { c.Target = p }

// View returns the camera view matrix.
func (c Camera) View() Mat4 {
	up := c.Up
	if up == (Vec3{}) {
		up = V3(0, 1, 0)
	}
	return Mat4LookAt(c.Position, c.Target, up)
}

// Projection returns the projection matrix for a target aspect.
func (c Camera) Projection(aspect Scalar) Mat4 {
	switch c.Type {
	case CameraOrtho:
		size := c.OrthoSize
		if size == 0 {
			size = 1
		}
		right := size * aspect
		return Mat4Ortho(-right, right, -size, size, c.Near, c.Far)
	default:
		fov := c.FOVYRad
		if fov == 0 {
			fov = Scalar(1.0)
		}
		return Mat4Perspective(fov, aspect, c.Near, c.Far)
	}
}

// Scene is the set of root nodes to render plus the shared camera and lighting.
type Scene struct {
	Camera Camera
	Light  Light

	roots []*Node
	index map[*Node]int
}

// NewScene returns an empty scene with the default camera and the dim, bluish
// ambient light of the dungeon.
func NewScene() *Scene {
	return &Scene{
		Camera: DefaultCamera(),
		Light: Light{
			Mode:      LightAmbientDirectional,
			Ambient:   Scalar(0.6),
			Color:     Hex(0x37324C),
			Dir:       Normalize(V3(-1, -2, -1)),
			DirAmount: Scalar(0.35),
		},
		index: make(map[*Node]int),
	}
}

// Add inserts n as a root. Adding a node twice is a no-op.
func (s *Scene) Add(n *Node) {
	if s == nil || n == nil {
		return
	}
	if s.index == nil {
		s.index = make(map[*Node]int)
	}
	if _, ok := s.index[n]; ok {
		return
	}
	n.Detach()
	s.index[n] = len(s.roots)
	s.roots = append(s.roots, n)
}

// Remove drops n from the roots and reports whether it was present.
func (s *Scene) Remove(n *Node) bool {
	if s == nil || n == nil {
		return false
	}
	i, ok := s.index[n]
	if !ok {
		return false
	}
	last := len(s.roots) - 1
	if i != last {
		moved := s.roots[last]
		s.roots[i] = moved
		s.index[moved] = i
	}
	s.roots[last] = nil
	s.roots = s.roots[:last]
	delete(s.index, n)
	return true
}

// Contains reports whether n is a root of the scene.
func (s *Scene) Contains(n *Node) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[n]
	return ok
}

// Len returns the number of roots.
func (s *Scene) Len() int {
	if s == nil {
		return 0
	}
	return len(s.roots)
}

// Each calls fn for every root. Order is unspecified.
func (s *Scene) Each(fn func(*Node)) {
	if s == nil {
		return
	}
	for _, n := range s.roots {
		fn(n)
	}
}
