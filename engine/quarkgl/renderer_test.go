package quarkgl

import (
	"image"
	"testing"
)

func countNonClear(img *image.RGBA, clear Color) int {
	n := 0
	for i := 0; i+3 < len(img.Pix); i += 4 {
		if img.Pix[i] != clear.R || img.Pix[i+1] != clear.G || img.Pix[i+2] != clear.B {
			n++
		}
	}
	return n
}

func TestRenderDrawsVisibleMesh(t *testing.T) {
	s := NewScene()
	s.Camera.Position = V3(0, 3, 5)
	s.Add(NewMeshNode("box", Box(V3(2, 2, 2)), Material{BaseColor: RGB(0xFF, 0xFF, 0xFF)}))

	img := image.NewRGBA(image.Rect(0, 0, 48, 32))
	r := NewRenderer(48, 32, true)
	r.Render(ImageTarget{Img: img}, s)

	if countNonClear(img, r.ClearColor) == 0 {
		t.Fatalf("nothing rasterized")
	}
	if st := r.Stats(); st.Meshes != 1 || st.Triangles == 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestRenderSkipsHiddenAndRemoved(t *testing.T) {
	s := NewScene()
	n := NewMeshNode("box", Box(V3(2, 2, 2)), Material{BaseColor: RGB(0xFF, 0xFF, 0xFF)})
	s.Add(n)
	n.Visible = false

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	r := NewRenderer(16, 16, true)
	r.Render(ImageTarget{Img: img}, s)
	if got := countNonClear(img, r.ClearColor); got != 0 {
		t.Fatalf("hidden mesh drew %d pixels", got)
	}

	n.Visible = true
	s.Remove(n)
	r.Render(ImageTarget{Img: img}, s)
	if got := countNonClear(img, r.ClearColor); got != 0 {
		t.Fatalf("removed mesh drew %d pixels", got)
	}
}

func TestPointLightAttenuation(t *testing.T) {
	l := PointLight{Intensity: 4, Distance: 8, Decay: 1}
	near := l.attenuate(1)
	far := l.attenuate(4)
	if !(near > far && far > 0) {
		t.Fatalf("expected falloff, near=%v far=%v", near, far)
	}
	if got := l.attenuate(8); got != 0 {
		t.Fatalf("beyond cutoff = %v", got)
	}
}

func TestWideSpotBehavesLikePoint(t *testing.T) {
	l := &PointLight{Kind: KindSpot, Angle: -3.14159}
	if got := spotFactor(l, V3(0, -1, 0), V3(0, 1, 0)); got != 1 {
		t.Fatalf("wide cone factor = %v", got)
	}
	narrow := &PointLight{Kind: KindSpot, Angle: 0.3}
	if got := spotFactor(narrow, V3(0, -1, 0), V3(0, 1, 0)); got != 0 {
		t.Fatalf("point behind narrow cone lit: %v", got)
	}
}

func TestWireframeDrawsOutlineOnly(t *testing.T) {
	s := NewScene()
	s.Camera.Position = V3(0, 3, 5)
	s.Add(NewMeshNode("box", Box(V3(2, 2, 2)), Material{BaseColor: RGB(0xFF, 0xFF, 0xFF)}))

	draw := func(m RenderMode) int {
		img := image.NewRGBA(image.Rect(0, 0, 48, 32))
		r := NewRenderer(48, 32, true)
		r.SetRenderMode(m)
		r.Render(ImageTarget{Img: img}, s)
		return countNonClear(img, r.ClearColor)
	}
	solid, wire := draw(RenderSolidFlat), draw(RenderWireframe)
	if wire == 0 || wire >= solid {
		t.Fatalf("wireframe pixels = %d, solid = %d", wire, solid)
	}
}

func TestOrthoCameraRendersMesh(t *testing.T) {
	s := NewScene()
	s.Camera.Type = CameraOrtho
	s.Camera.OrthoSize = 3
	s.Camera.Position = V3(0, 3, 5)
	s.Add(NewMeshNode("box", Box(V3(2, 2, 2)), Material{BaseColor: RGB(0xFF, 0xFF, 0xFF)}))

	img := image.NewRGBA(image.Rect(0, 0, 48, 32))
	r := NewRenderer(48, 32, true)
	r.Render(ImageTarget{Img: img}, s)
	if countNonClear(img, r.ClearColor) == 0 {
		t.Fatalf("nothing rasterized through the orthographic camera")
	}
}

func TestParseRenderMode(t *testing.T) {
	for name, want := range map[string]RenderMode{
		"solid":     RenderSolidFlat,
		"wireframe": RenderWireframe,
		"vertex":    RenderSolidVertexColor,
	} {
		got, ok := ParseRenderMode(name)
		if !ok || got != want || got.String() != name {
			t.Fatalf("ParseRenderMode(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := ParseRenderMode("points"); ok {
		t.Fatalf("unknown mode accepted")
	}
}
