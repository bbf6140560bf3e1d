package hal

import (
	"image"
	"sync"
)

type hostFramebuffer struct {
	width  int
	height int
	back   *image.RGBA

	mu       sync.Mutex
	front    []byte
	presents uint64
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	back := image.NewRGBA(image.Rect(0, 0, width, height))
	return &hostFramebuffer{
		width:  width,
		height: height,
		back:   back,
		front:  make([]byte, len(back.Pix)),
	}
}

func (f *hostFramebuffer) Width() int         { return f.width }
func (f *hostFramebuffer) Height() int        { return f.height }
func (f *hostFramebuffer) Image() *image.RGBA { return f.back }

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	pix := f.back.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i+0] = r
		pix[i+1] = g
		pix[i+2] = b
		pix[i+3] = 0xFF
	}
}

func (f *hostFramebuffer) Present() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.front, f.back.Pix)
	f.presents++
	return nil
}

// snapshot copies the last presented frame into dst and returns how many
// frames have been presented.
func (f *hostFramebuffer) snapshot(dst []byte) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.front)
	return f.presents
}
