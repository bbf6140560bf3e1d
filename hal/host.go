package hal

// Size is the framebuffer size in pixels.
type Size struct {
	Width  int
	Height int
}

// WindowConfig controls the desktop window.
type WindowConfig struct {
	Size  Size
	Scale int
	Hz    int
	Title string
}

type hostHAL struct {
	fb *hostFramebuffer
	t  *hostTime
}

// New returns a host HAL with a framebuffer of the given size.
func New(size Size) HAL {
	return newHost(size)
}

func newHost(size Size) *hostHAL {
	if size.Width <= 0 {
		size.Width = 320
	}
	if size.Height <= 0 {
		size.Height = 240
	}
	return &hostHAL{
		fb: newHostFramebuffer(size.Width, size.Height),
		t:  newHostTime(),
	}
}

func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Time() Time       { return h.t }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }
