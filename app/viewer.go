package app

import (
	"specter/engine/quarkgl"
	"specter/hal"
)

// Viewer renders the scene into the host framebuffer. It is the frame
// synchronizer's Drawer.
type Viewer struct {
	fb  hal.Framebuffer
	r   *quarkgl.Renderer
	hud *HUD
}

// NewViewer returns a viewer drawing into fb with depth testing.
func NewViewer(fb hal.Framebuffer, mode quarkgl.RenderMode) *Viewer {
	r := quarkgl.NewRenderer(fb.Width(), fb.Height(), true)
	r.SetRenderMode(mode)
	return &Viewer{fb: fb, r: r, hud: NewHUD()}
}

// Draw renders one frame of s into the back buffer.
func (v *Viewer) Draw(s *quarkgl.Scene) {
	v.r.Render(quarkgl.ImageTarget{Img: v.fb.Image()}, s)
}

// Overlay draws HUD lines over the back buffer.
func (v *Viewer) Overlay(lines []Line) {
	v.hud.Draw(v.fb.Image(), lines)
}

// Present publishes the back buffer.
func (v *Viewer) Present() error { return v.fb.Present() }

// Stats returns the renderer counters of the last frame.
func (v *Viewer) Stats() quarkgl.RenderStats { return v.r.Stats() }
