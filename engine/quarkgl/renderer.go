package quarkgl

import "math"

// Renderer is a fixed-pipeline software renderer.
//
// Create it once and reuse it to avoid allocations.
type Renderer struct {
	Mode       RenderMode
	Depth      bool
	ClearColor Color

	depthBuf []float32
	lights   []worldLight
	stats    RenderStats
}

// RenderStats describes the last frame.
type RenderStats struct {
	Nodes     int
	Meshes    int
	Lights    int
	Triangles int
}

type worldLight struct {
	l   *PointLight
	pos Vec3
	dir Vec3
}

// NewRenderer creates a renderer for a given maximum target size.
//
// If enableDepth is true, a depth buffer of size w*h is allocated.
func NewRenderer(w, h int, enableDepth bool) *Renderer {
	r := &Renderer{
		Mode:       RenderSolidFlat,
		ClearColor: RGB(0x07, 0x06, 0x0E),
	}
	r.EnableDepth(enableDepth, w, h)
	return r
}

func (r *Renderer) SetRenderMode(m RenderMode) { r.Mode = m }

// Stats returns counters for the most recent Render call.
func (r *Renderer) Stats() RenderStats { return r.stats }

func (r *Renderer) EnableDepth(on bool, w, h int) {
	r.Depth = on
	if !on || w <= 0 || h <= 0 {
		r.depthBuf = nil
		return
	}
	if cap(r.depthBuf) < w*h {
		r.depthBuf = make([]float32, w*h)
	} else {
		r.depthBuf = r.depthBuf[:w*h]
	}
}

func (r *Renderer) clearDepth() {
	for i := range r.depthBuf {
		r.depthBuf[i] = 1e9
	}
}

// Render renders a scene into the target.
func (r *Renderer) Render(t Target, s *Scene) {
	if r == nil || t == nil || s == nil {
		return
	}
	r.stats = RenderStats{}
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return
	}
	t.Clear(r.ClearColor)

	if r.Depth {
		r.EnableDepth(true, w, h)
		r.clearDepth()
	}

	aspect := Scalar(float32(w) / float32(h))
	viewProj := Mat4Mul(s.Camera.Projection(aspect), s.Camera.View())

	r.lights = r.lights[:0]
	s.Each(func(n *Node) {
		r.collectLights(n, Mat4Identity())
	})
	r.stats.Lights = len(r.lights)

	s.Each(func(n *Node) {
		r.drawNode(t, w, h, viewProj, n, Mat4Identity(), s.Light)
	})
}

func (r *Renderer) collectLights(n *Node, parent Mat4) {
	if !n.Visible {
		return
	}
	world := Mat4Mul(parent, n.LocalMatrix())
	if n.Light != nil {
		r.lights = append(r.lights, worldLight{
			l:   n.Light,
			pos: Mat4MulPoint(world, Vec3{}),
			dir: Normalize(Mat4MulDir(world, V3(0, -1, 0))),
		})
	}
	for _, c := range n.Children {
		r.collectLights(c, world)
	}
}

func (r *Renderer) drawNode(t Target, w, h int, viewProj Mat4, n *Node, parent Mat4, light Light) {
	if !n.Visible {
		return
	}
	r.stats.Nodes++
	world := Mat4Mul(parent, n.LocalMatrix())
	if n.Mesh != nil && n.Mesh.Geometry != nil {
		r.stats.Meshes++
		r.drawMesh(t, w, h, viewProj, world, n.Mesh, light)
	}
	for _, c := range n.Children {
		r.drawNode(t, w, h, viewProj, c, world, light)
	}
}

func (r *Renderer) drawMesh(t Target, w, h int, viewProj, world Mat4, m *Mesh, light Light) {
	g := m.Geometry
	if len(g.Vertices) == 0 || len(g.Indices) < 3 {
		return
	}
	mvp := Mat4Mul(viewProj, world)
	base := m.Material.BaseColor
	if base == (Color{}) {
		base = RGB(0xCC, 0xCC, 0xCC)
	}

	for i := 0; i+2 < len(g.Indices); i += 3 {
		i0, i1, i2 := int(g.Indices[i]), int(g.Indices[i+1]), int(g.Indices[i+2])
		if i0 >= len(g.Vertices) || i1 >= len(g.Vertices) || i2 >= len(g.Vertices) {
			continue
		}
		v0, v1, v2 := g.Vertices[i0], g.Vertices[i1], g.Vertices[i2]

		p0 := Mat4MulV4(mvp, Vec4{X: v0.Pos.X, Y: v0.Pos.Y, Z: v0.Pos.Z, W: 1})
		p1 := Mat4MulV4(mvp, Vec4{X: v1.Pos.X, Y: v1.Pos.Y, Z: v1.Pos.Z, W: 1})
		p2 := Mat4MulV4(mvp, Vec4{X: v2.Pos.X, Y: v2.Pos.Y, Z: v2.Pos.Z, W: 1})

		// Trivial clip: drop triangles with any vertex behind the eye.
		if p0.W <= 0 || p1.W <= 0 || p2.W <= 0 {
			continue
		}
		ndc0, ndc1, ndc2 := toNDC(p0), toNDC(p1), toNDC(p2)
		x0, y0 := ndcToScreen(ndc0, w, h)
		x1, y1 := ndcToScreen(ndc1, w, h)
		x2, y2 := ndcToScreen(ndc2, w, h)
		r.stats.Triangles++

		wp0, wp1, wp2 := Mat4MulPoint(world, v0.Pos), Mat4MulPoint(world, v1.Pos), Mat4MulPoint(world, v2.Pos)
		n := Normalize(Cross(wp1.Sub(wp0), wp2.Sub(wp0)))
		centroid := wp0.Add(wp1).Add(wp2).Mul(Scalar(1) / 3)
		shade := r.shade(light, n, centroid)

		switch r.Mode {
		case RenderWireframe:
			c := base.Modulate(shade.X, shade.Y, shade.Z)
			r.drawLine(t, x0, y0, x1, y1, c)
			r.drawLine(t, x1, y1, x2, y2, c)
			r.drawLine(t, x2, y2, x0, y0, c)
		case RenderSolidVertexColor:
			c0 := v0.Color.Modulate(shade.X, shade.Y, shade.Z)
			c1 := v1.Color.Modulate(shade.X, shade.Y, shade.Z)
			c2 := v2.Color.Modulate(shade.X, shade.Y, shade.Z)
			r.fillTriangle(t, w, h, [3]screenPoint{{x0, y0, ndc0.Z}, {x1, y1, ndc1.Z}, {x2, y2, ndc2.Z}}, [3]Color{c0, c1, c2})
		default:
			c := base.Modulate(shade.X, shade.Y, shade.Z)
			r.fillTriangle(t, w, h, [3]screenPoint{{x0, y0, ndc0.Z}, {x1, y1, ndc1.Z}, {x2, y2, ndc2.Z}}, [3]Color{c, c, c})
		}
	}
}

// shade returns per-channel light intensity at world position p with normal n.
func (r *Renderer) shade(light Light, n, p Vec3) Vec3 {
	if light.Mode == LightOff {
		return V3(1, 1, 1)
	}
	amb := V3(1, 1, 1)
	if light.Color != (Color{}) {
		amb = light.Color.unit()
	}
	out := amb.Mul(Clamp01(light.Ambient))

	if ld := Normalize(light.Dir); ld != (Vec3{}) {
		d := Dot(n, ld.Mul(-1))
		if d > 0 {
			out = out.Add(V3(1, 1, 1).Mul(d * Clamp01(light.DirAmount)))
		}
	}

	for _, wl := range r.lights {
		toLight := wl.pos.Sub(p)
		dist := Len(toLight)
		if dist == 0 {
			continue
		}
		l := toLight.Mul(1 / dist)
		lambert := Dot(n, l)
		if lambert <= 0 {
			continue
		}
		f := wl.l.attenuate(dist) * lambert
		if wl.l.Kind == KindSpot {
			f *= spotFactor(wl.l, wl.dir, l.Mul(-1))
		}
		if f <= 0 {
			continue
		}
		c := V3(1, 1, 1)
		if wl.l.Color != (Color{}) {
			c = wl.l.Color.unit()
		}
		out = out.Add(c.Mul(f))
	}
	return Vec3{X: Clamp01(out.X), Y: Clamp01(out.Y), Z: Clamp01(out.Z)}
}

// spotFactor is 1 inside the inner cone, 0 outside the outer cone, smooth between.
// Cones of a quarter turn or wider behave like point lights.
func spotFactor(l *PointLight, axis, toPoint Vec3) Scalar {
	half := Scalar(math.Abs(float64(l.Angle)))
	if half >= math.Pi/2 {
		return 1
	}
	outer := Scalar(math.Cos(float64(half)))
	inner := outer + Clamp01(l.Penumbra)*(1-outer)
	c := Dot(axis, toPoint)
	if c <= outer {
		return 0
	}
	if c >= inner || inner == outer {
		return 1
	}
	x := (c - outer) / (inner - outer)
	return x * x * (3 - 2*x)
}

type ndcPoint struct {
	X, Y, Z float32
}

type screenPoint struct {
	x, y int
	z    float32
}

func toNDC(p Vec4) ndcPoint {
	invW := 1 / p.W
	return ndcPoint{X: p.X * invW, Y: p.Y * invW, Z: p.Z * invW}
}

func ndcToScreen(p ndcPoint, w, h int) (x, y int) {
	sx := (p.X*0.5 + 0.5) * float32(w-1)
	sy := (1 - (p.Y*0.5 + 0.5)) * float32(h-1)
	return int(sx + 0.5), int(sy + 0.5)
}

func (r *Renderer) depthTest(w int, x, y int, z float32) bool {
	if !r.Depth || r.depthBuf == nil {
		return true
	}
	idx := y*w + x
	if x < 0 || y < 0 || x >= w || idx >= len(r.depthBuf) {
		return false
	}
	// NDC z is in [-1,1]. Map to [0,1].
	d := z*0.5 + 0.5
	if d < 0 {
		d = 0
	}
	if d > 1 {
		d = 1
	}
	if d >= r.depthBuf[idx] {
		return false
	}
	r.depthBuf[idx] = d
	return true
}

func (r *Renderer) drawLine(t Target, x0, y0, x1, y1 int, c Color) {
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

// fillTriangle rasterizes with barycentric colour and depth interpolation.
// Both windings are filled.
func (r *Renderer) fillTriangle(t Target, w, h int, p [3]screenPoint, c [3]Color) {
	minX := max(min(p[0].x, p[1].x, p[2].x), 0)
	maxX := min(max(p[0].x, p[1].x, p[2].x), w-1)
	minY := max(min(p[0].y, p[1].y, p[2].y), 0)
	maxY := min(max(p[0].y, p[1].y, p[2].y), h-1)
	if minX > maxX || minY > maxY {
		return
	}

	area := edgeFn(p[0].x, p[0].y, p[1].x, p[1].y, p[2].x, p[2].y)
	if area == 0 {
		return
	}
	invArea := 1 / float32(area)
	flat := c[0] == c[1] && c[1] == c[2]

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			w0 := edgeFn(p[1].x, p[1].y, p[2].x, p[2].y, x, y)
			w1 := edgeFn(p[2].x, p[2].y, p[0].x, p[0].y, x, y)
			w2 := edgeFn(p[0].x, p[0].y, p[1].x, p[1].y, x, y)
			if area > 0 && (w0|w1|w2) < 0 {
				continue
			}
			if area < 0 && (w0 > 0 || w1 > 0 || w2 > 0) {
				continue
			}
			a0 := float32(w0) * invArea
			a1 := float32(w1) * invArea
			a2 := float32(w2) * invArea
			if !r.depthTest(w, x, y, a0*p[0].z+a1*p[1].z+a2*p[2].z) {
				continue
			}
			if flat {
				t.SetPixel(x, y, c[0])
				continue
			}
			t.SetPixel(x, y, Color{
				R: lerpChannel(a0, a1, a2, c[0].R, c[1].R, c[2].R),
				G: lerpChannel(a0, a1, a2, c[0].G, c[1].G, c[2].G),
				B: lerpChannel(a0, a1, a2, c[0].B, c[1].B, c[2].B),
				A: 0xFF,
			})
		}
	}
}

func lerpChannel(a0, a1, a2 float32, c0, c1, c2 uint8) uint8 {
	v := a0*float32(c0) + a1*float32(c1) + a2*float32(c2)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func edgeFn(x0, y0, x1, y1, x, y int) int {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
