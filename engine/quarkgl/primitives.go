package quarkgl

// Box returns an axis-aligned box of the given size centred on the origin.
func Box(size Vec3) *Geometry {
	x, y, z := size.X/2, size.Y/2, size.Z/2
	corners := [8]Vec3{
		{-x, -y, -z}, {x, -y, -z}, {x, y, -z}, {-x, y, -z},
		{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z},
	}
	faces := [6][4]int{
		{4, 5, 6, 7}, // +z
		{1, 0, 3, 2}, // -z
		{5, 1, 2, 6}, // +x
		{0, 4, 7, 3}, // -x
		{7, 6, 2, 3}, // +y
		{0, 1, 5, 4}, // -y
	}
	g := &Geometry{}
	for _, f := range faces {
		base := uint16(len(g.Vertices))
		for _, ci := range f {
			g.Vertices = append(g.Vertices, Vertex{Pos: corners[ci], Color: RGB(0xFF, 0xFF, 0xFF)})
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}

// Plane returns a w×d quad on the ground plane centred on the origin.
func Plane(w, d Scalar) *Geometry {
	x, z := w/2, d/2
	white := RGB(0xFF, 0xFF, 0xFF)
	return &Geometry{
		Vertices: []Vertex{
			{Pos: V3(-x, 0, z), Color: white},
			{Pos: V3(x, 0, z), Color: white},
			{Pos: V3(x, 0, -z), Color: white},
			{Pos: V3(-x, 0, -z), Color: white},
		},
		Indices: []uint16{0, 1, 2, 0, 2, 3},
	}
}

// Pyramid returns a square-based pyramid standing on the origin.
func Pyramid(size Vec3) *Geometry {
	x, z := size.X/2, size.Z/2
	white := RGB(0xFF, 0xFF, 0xFF)
	return &Geometry{
		Vertices: []Vertex{
			{Pos: V3(-x, 0, z), Color: white},
			{Pos: V3(x, 0, z), Color: white},
			{Pos: V3(x, 0, -z), Color: white},
			{Pos: V3(-x, 0, -z), Color: white},
			{Pos: V3(0, size.Y, 0), Color: white},
		},
		Indices: []uint16{
			0, 1, 4,
			1, 2, 4,
			2, 3, 4,
			3, 0, 4,
			0, 3, 2, 0, 2, 1,
		},
	}
}
