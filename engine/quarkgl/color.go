package quarkgl

import "image/color"

// Color is an RGBA color in 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

func RGB(r, g, b uint8) Color     { return Color{R: r, G: g, B: b, A: 0xFF} }
func RGBA(r, g, b, a uint8) Color { return Color{R: r, G: g, B: b, A: a} }

// Hex builds an opaque color from 0xRRGGBB.
func Hex(v uint32) Color {
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v))
}

// MulScalar scales the RGB channels by s, clamped to 0..1.
func (c Color) MulScalar(s Scalar) Color {
	return c.Modulate(s, s, s)
}

// Modulate scales each RGB channel independently; factors are clamped to 0..1.
func (c Color) Modulate(r, g, b Scalar) Color {
	mul := func(ch uint8, f Scalar) uint8 {
		return uint8(Scalar(ch) * Clamp01(f))
	}
	return Color{R: mul(c.R, r), G: mul(c.G, g), B: mul(c.B, b), A: c.A}
}

func (c Color) WithAlpha(a uint8) Color { c.A = a; return c }

// RGBA returns the color as an image/color value.
func (c Color) ToRGBA() color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// unit returns the channels as 0..1 scalars.
func (c Color) unit() Vec3 {
	return Vec3{X: Scalar(c.R) / 255, Y: Scalar(c.G) / 255, Z: Scalar(c.B) / 255}
}
