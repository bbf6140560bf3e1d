// Package hal is the viewer's contact with the host: a framebuffer to render
// into, a frame clock, and the runners that drive the per-frame step.
package hal

import "image"

// Framebuffer is an RGBA back buffer plus a "present" hook that publishes it.
type Framebuffer interface {
	Width() int
	Height() int
	// Image is the back buffer. It is only touched by the frame goroutine.
	Image() *image.RGBA
	ClearRGB(r, g, b uint8)
	// Present publishes the back buffer to the display.
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Time is a monotonic frame clock.
type Time interface {
	// Millis is the time elapsed since the first frame, advanced once per frame.
	Millis() uint64
	// Frames is the number of frames stepped so far.
	Frames() uint64
}

// HAL provides the only contact point between the viewer and the outside world.
type HAL interface {
	Display() Display
	Time() Time
}
