package quarkgl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ModelDoc is the on-disk model format.
//
//	name: Lantern
//	nodes:
//	  - name: body
//	    primitive: box
//	    size: [0.4, 1, 0.4]
//	    position: [0, 0.5, 0]
//	    color: "#8a6f3c"
//	  - name: flame
//	    position: [0, 1.1, 0]
//	    light: {kind: spot, color: "#ffcc66", intensity: 900}
type ModelDoc struct {
	Name  string    `yaml:"name"`
	Nodes []NodeDoc `yaml:"nodes"`
}

// NodeDoc describes one node of a model.
type NodeDoc struct {
	Name      string     `yaml:"name"`
	Position  []Scalar   `yaml:"position,omitempty"`
	Heading   Scalar     `yaml:"heading,omitempty"`
	Scale     []Scalar   `yaml:"scale,omitempty"`
	Hidden    bool       `yaml:"hidden,omitempty"`
	Primitive string     `yaml:"primitive,omitempty"`
	Size      []Scalar   `yaml:"size,omitempty"`
	Color     string     `yaml:"color,omitempty"`
	Opacity   *uint8     `yaml:"opacity,omitempty"`
	Vertices  [][]Scalar `yaml:"vertices,omitempty"`
	Colors    []string   `yaml:"colors,omitempty"`
	Indices   []uint16   `yaml:"indices,omitempty"`
	Light     *LightDoc  `yaml:"light,omitempty"`
	Children  []NodeDoc  `yaml:"children,omitempty"`
}

// LightDoc describes an embedded light.
type LightDoc struct {
	Kind      string `yaml:"kind"`
	Color     string `yaml:"color,omitempty"`
	Intensity Scalar `yaml:"intensity"`
	Distance  Scalar `yaml:"distance,omitempty"`
	Angle     Scalar `yaml:"angle,omitempty"`
	Penumbra  Scalar `yaml:"penumbra,omitempty"`
	Decay     Scalar `yaml:"decay,omitempty"`
}

// DecodeModel reads a model document and builds its node tree. The returned root
// is a group named after the model whose children are the document's nodes.
func DecodeModel(r io.Reader) (*Node, error) {
	var doc ModelDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("quarkgl: decode model: %w", err)
	}
	return doc.Build()
}

// Build converts the document into a node tree.
func (d ModelDoc) Build() (*Node, error) {
	if len(d.Nodes) == 0 {
		return nil, fmt.Errorf("quarkgl: model %q has no nodes", d.Name)
	}
	root := NewGroup(d.Name)
	for i := range d.Nodes {
		n, err := d.Nodes[i].build()
		if err != nil {
			return nil, fmt.Errorf("quarkgl: model %q: %w", d.Name, err)
		}
		root.Add(n)
	}
	return root, nil
}

func (nd NodeDoc) build() (*Node, error) {
	var n *Node
	switch {
	case nd.Light != nil:
		l, err := nd.Light.build()
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nd.Name, err)
		}
		n = NewLightNode(nd.Name, l)
	case nd.Primitive != "" || len(nd.Vertices) > 0:
		g, err := nd.geometry()
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nd.Name, err)
		}
		mat := Material{BaseColor: RGB(0xCC, 0xCC, 0xCC), Opacity: 0xFF}
		if nd.Color != "" {
			c, err := ParseColor(nd.Color)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", nd.Name, err)
			}
			mat.BaseColor = c
		}
		if nd.Opacity != nil {
			mat.Opacity = *nd.Opacity
		}
		n = NewMeshNode(nd.Name, g, mat)
	default:
		n = NewGroup(nd.Name)
	}

	var err error
	if n.Position, err = vec3Of(nd.Position, Vec3{}); err != nil {
		return nil, fmt.Errorf("node %q position: %w", nd.Name, err)
	}
	if n.Scale, err = vec3Of(nd.Scale, V3(1, 1, 1)); err != nil {
		return nil, fmt.Errorf("node %q scale: %w", nd.Name, err)
	}
	n.Heading = nd.Heading
	n.Visible = !nd.Hidden

	for i := range nd.Children {
		c, err := nd.Children[i].build()
		if err != nil {
			return nil, err
		}
		n.Add(c)
	}
	return n, nil
}

func (nd NodeDoc) geometry() (*Geometry, error) {
	if len(nd.Vertices) > 0 {
		g := &Geometry{Indices: nd.Indices}
		for i, v := range nd.Vertices {
			p, err := vec3Of(v, Vec3{})
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
			vx := Vertex{Pos: p, Color: RGB(0xFF, 0xFF, 0xFF)}
			if i < len(nd.Colors) {
				if vx.Color, err = ParseColor(nd.Colors[i]); err != nil {
					return nil, fmt.Errorf("vertex %d: %w", i, err)
				}
			}
			g.Vertices = append(g.Vertices, vx)
		}
		if len(g.Indices)%3 != 0 {
			return nil, fmt.Errorf("index count %d is not a triangle list", len(g.Indices))
		}
		for _, idx := range g.Indices {
			if int(idx) >= len(g.Vertices) {
				return nil, fmt.Errorf("index %d out of range (%d vertices)", idx, len(g.Vertices))
			}
		}
		return g, nil
	}
	size, err := vec3Of(nd.Size, V3(1, 1, 1))
	if err != nil {
		return nil, fmt.Errorf("size: %w", err)
	}
	switch strings.ToLower(nd.Primitive) {
	case "box":
		return Box(size), nil
	case "plane":
		return Plane(size.X, size.Z), nil
	case "pyramid":
		return Pyramid(size), nil
	default:
		return nil, fmt.Errorf("unknown primitive %q", nd.Primitive)
	}
}

func (ld LightDoc) build() (PointLight, error) {
	l := PointLight{
		Intensity: ld.Intensity,
		Distance:  ld.Distance,
		Angle:     ld.Angle,
		Penumbra:  ld.Penumbra,
		Decay:     ld.Decay,
		Color:     RGB(0xFF, 0xFF, 0xFF),
	}
	switch strings.ToLower(ld.Kind) {
	case "", "point":
		l.Kind = KindPoint
	case "spot":
		l.Kind = KindSpot
	default:
		return l, fmt.Errorf("unknown light kind %q", ld.Kind)
	}
	if ld.Color != "" {
		c, err := ParseColor(ld.Color)
		if err != nil {
			return l, err
		}
		l.Color = c
	}
	return l, nil
}

// ParseColor accepts "#rrggbb", "0xrrggbb" and "rrggbb".
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "#"), "0x")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("bad color %q", s)
	}
	return Hex(uint32(v)), nil
}

func vec3Of(v []Scalar, def Vec3) (Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return V3(v[0], v[1], v[2]), nil
	default:
		return Vec3{}, fmt.Errorf("want 3 components, got %d", len(v))
	}
}
