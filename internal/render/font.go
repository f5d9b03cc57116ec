package render

import (
	"image"
	"image/color"
)

// 5x7 bitmap glyphs for digits 0-9. Each byte is one row, low 5 bits used.
var digitGlyphs = map[rune][7]uint8{
	'0': {0x0E, 0x11, 0x13, 0x15, 0x19, 0x11, 0x0E},
	'1': {0x04, 0x0C, 0x04, 0x04, 0x04, 0x04, 0x0E},
	'2': {0x0E, 0x11, 0x01, 0x06, 0x08, 0x10, 0x1F},
	'3': {0x0E, 0x11, 0x01, 0x06, 0x01, 0x11, 0x0E},
	'4': {0x02, 0x06, 0x0A, 0x12, 0x1F, 0x02, 0x02},
	'5': {0x1F, 0x10, 0x1E, 0x01, 0x01, 0x11, 0x0E},
	'6': {0x06, 0x08, 0x10, 0x1E, 0x11, 0x11, 0x0E},
	'7': {0x1F, 0x01, 0x02, 0x04, 0x08, 0x08, 0x08},
	'8': {0x0E, 0x11, 0x11, 0x0E, 0x11, 0x11, 0x0E},
	'9': {0x0E, 0x11, 0x11, 0x0F, 0x01, 0x02, 0x0C},
}

const (
	glyphWidth  = 5
	glyphHeight = 7
)

// drawNumber renders a digit string centered at (cx, cy), scaled so the
// glyph height approximates size pixels. Non-digit runes advance the cursor
// without drawing.
func drawNumber(img *image.RGBA, text string, cx, cy int, col color.Color, size int) {
	scale := size / glyphHeight
	if scale < 1 {
		scale = 1
	}

	totalW, totalH := measureNumber(text, scale)
	curX := cx - totalW/2
	startY := cy - totalH/2

	for _, ch := range text {
		glyph, ok := digitGlyphs[ch]
		if !ok {
			curX += (glyphWidth + 1) * scale
			continue
		}
		for row := 0; row < glyphHeight; row++ {
			for bit := 0; bit < glyphWidth; bit++ {
				if glyph[row]&(1<<(glyphWidth-1-bit)) == 0 {
					continue
				}
				fillRect(img,
					curX+bit*scale, startY+row*scale,
					scale, scale, col)
			}
		}
		curX += (glyphWidth + 1) * scale
	}
}

func measureNumber(text string, scale int) (w, h int) {
	n := len([]rune(text))
	if n == 0 {
		return 0, 0
	}
	return n*(glyphWidth*scale) + (n-1)*scale, glyphHeight * scale
}

func fillRect(img *image.RGBA, x, y, w, h int, col color.Color) {
	b := img.Bounds()
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			px, py := x+dx, y+dy
			if px >= b.Min.X && px < b.Max.X && py >= b.Min.Y && py < b.Max.Y {
				img.Set(px, py, col)
			}
		}
	}
}
