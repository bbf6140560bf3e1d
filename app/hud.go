package app

import (
	"image"
	"image/color"
	"strings"
	"unicode/utf8"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Line is one row of HUD text.
type Line struct {
	Text  string
	Alert bool
}

var (
	hudFG     = color.RGBA{R: 0xE8, G: 0xE4, B: 0xD0, A: 0xFF}
	hudAlert  = color.RGBA{R: 0xFF, G: 0x50, B: 0x40, A: 0xFF}
	hudShadow = color.RGBA{A: 0xFF}
)

// HUD draws status text over the rendered frame.
type HUD struct {
	font       tinyfont.Fonter
	fontWidth  int16
	lineHeight int16
	baseline   int16
}

// NewHUD returns a HUD using the small tinyfont Org01 face.
func NewHUD() *HUD {
	font := &tinyfont.Org01
	_, outboxWidth := tinyfont.LineWidth(font, "0")
	lh := int16(font.GetYAdvance())
	if lh <= 0 {
		lh = 6
	}
	return &HUD{
		font:       font,
		fontWidth:  int16(outboxWidth),
		lineHeight: lh + 1,
		baseline:   lh - 1,
	}
}

// Draw writes lines top-down into img, wrapping long lines at the right edge.
// It returns the number of rows used.
func (h *HUD) Draw(img *image.RGBA, lines []Line) int {
	d := hudDisplay{img: img}
	maxW, maxH := d.Size()
	if h.fontWidth <= 0 || maxW <= 2 {
		return 0
	}
	cols := (maxW - 2) / h.fontWidth
	if cols <= 0 {
		cols = 1
	}

	rows := 0
	y := int16(1)
	for _, l := range lines {
		fg := hudFG
		if l.Alert {
			fg = hudAlert
		}
		text := l.Text
		for len(text) > 0 {
			if y+h.lineHeight > maxH {
				return rows
			}
			chunk, rest := takeRunes(text, cols)
			tinyfont.WriteLine(d, h.font, 2, y+h.baseline+1, chunk, hudShadow)
			tinyfont.WriteLine(d, h.font, 1, y+h.baseline, chunk, fg)
			y += h.lineHeight
			rows++
			text = strings.TrimLeft(rest, " ")
		}
	}
	return rows
}

// hudDisplay lets tinyfont draw into an RGBA image.
type hudDisplay struct {
	img *image.RGBA
}

var _ drivers.Displayer = hudDisplay{}

func (d hudDisplay) Size() (x, y int16) {
	if d.img == nil {
		return 0, 0
	}
	b := d.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (d hudDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.img == nil {
		return
	}
	p := image.Pt(int(x), int(y)).Add(d.img.Rect.Min)
	if !p.In(d.img.Rect) {
		return
	}
	d.img.SetRGBA(p.X, p.Y, c)
}

func (d hudDisplay) Display() error { return nil }

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if int64(len(s)) <= int64(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
