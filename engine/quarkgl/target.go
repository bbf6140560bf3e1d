package quarkgl

import "image"

// Target is a minimal pixel target for software rendering.
//
// Implementations should clip out-of-bounds coordinates.
type Target interface {
	Size() (w, h int)
	SetPixel(x, y int, c Color)
	Clear(c Color)
}

// RenderMode selects the rasterization mode.
type RenderMode uint8

const (
	RenderSolidFlat RenderMode = iota
	RenderWireframe
	RenderSolidVertexColor
)

var renderModeNames = [...]string{
	RenderSolidFlat:        "solid",
	RenderWireframe:        "wireframe",
	RenderSolidVertexColor: "vertex",
}

func (m RenderMode) String() string {
	if int(m) < len(renderModeNames) {
		return renderModeNames[m]
	}
	return "unknown"
}

// ParseRenderMode maps "solid", "wireframe" or "vertex" to a mode.
func ParseRenderMode(s string) (RenderMode, bool) {
	for m, name := range renderModeNames {
		if name == s {
			return RenderMode(m), true
		}
	}
	return RenderSolidFlat, false
}

// ImageTarget renders into an *image.RGBA.
type ImageTarget struct {
	Img *image.RGBA
}

func (t ImageTarget) Size() (w, h int) {
	if t.Img == nil {
		return 0, 0
	}
	b := t.Img.Bounds()
	return b.Dx(), b.Dy()
}

func (t ImageTarget) Clear(c Color) {
	if t.Img == nil {
		return
	}
	pix := t.Img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i+0] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = c.A
	}
}

func (t ImageTarget) SetPixel(x, y int, c Color) {
	if t.Img == nil {
		return
	}
	b := t.Img.Bounds()
	if x < 0 || y < 0 || x >= b.Dx() || y >= b.Dy() {
		return
	}
	off := t.Img.PixOffset(b.Min.X+x, b.Min.Y+y)
	t.Img.Pix[off+0] = c.R
	t.Img.Pix[off+1] = c.G
	t.Img.Pix[off+2] = c.B
	t.Img.Pix[off+3] = c.A
}
