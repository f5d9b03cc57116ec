// Package render rasterizes the engine's three output layers from the final
// zone/label state: a contour-only layer, a numbered layer, and a colorized
// layer.
package render

import (
	"image"
	stdcolor "image/color"
	"math"
	"strconv"

	"paintbynum/internal/color"
	"paintbynum/internal/imaging"
	"paintbynum/internal/vectorize"
	"paintbynum/internal/zone"
)

// Layers bundles the three rasterized outputs. All share the label field's
// dimensions.
type Layers struct {
	Contours  *image.RGBA // outlines on transparent background
	Numbered  *image.RGBA // outlines + palette numbers on white
	Colorized *image.RGBA // zones filled with their palette color
}

var (
	white = stdcolor.RGBA{255, 255, 255, 255}
	black = stdcolor.RGBA{0, 0, 0, 255}
)

// Render produces all three layers. The colorized layer comes straight from
// the label field; the contour and numbered layers are drawn from the
// simplified outlines so raster and vector artifacts show the same shapes.
func Render(zones []zone.Zone, field *zone.Field, palette []color.RGBA, outlines []vectorize.Outline) *Layers {
	w, h := field.Width, field.Height

	colorized := image.NewRGBA(image.Rect(0, 0, w, h))
	imaging.ParallelRows(h, func(sy, ey int) {
		for y := sy; y < ey; y++ {
			row := y * w
			for x := 0; x < w; x++ {
				id := field.IDs[row+x]
				colorized.SetRGBA(x, y, palette[zones[id].ColorIdx].ToStdColor())
			}
		}
	})

	contours := image.NewRGBA(image.Rect(0, 0, w, h))
	numbered := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRect(numbered, 0, 0, w, h, white)

	for _, o := range outlines {
		for _, ring := range o.Rings {
			strokeRing(contours, ring, black)
			strokeRing(numbered, ring, black)
		}
	}

	for _, o := range outlines {
		if o.Anchor == nil {
			continue
		}
		z := zones[o.ZoneID]
		size := labelSize(z.Area)
		num := strconv.Itoa(z.ColorIdx + 1)
		drawNumber(numbered, num, int(o.Anchor.X), int(o.Anchor.Y), black, size)
	}

	return &Layers{Contours: contours, Numbered: numbered, Colorized: colorized}
}

// labelSize scales the glyph height with the zone's footprint so numbers
// stay legible in big zones without overflowing small ones.
func labelSize(area int) int {
	size := int(math.Round(math.Sqrt(float64(area)) / 3))
	if size < glyphHeight {
		size = glyphHeight
	}
	if size > 28 {
		size = 28
	}
	return size
}

// strokeRing draws the closed polygon edge-by-edge with integer Bresenham
// steps. Lattice coordinates land on pixel corners; drawing clamps to the
// last pixel row/column so the outer border stays visible.
func strokeRing(img *image.RGBA, ring vectorize.Ring, col stdcolor.RGBA) {
	n := len(ring)
	if n == 0 {
		return
	}
	b := img.Bounds()
	clamp := func(v, hi int) int {
		if v < 0 {
			return 0
		}
		if v > hi {
			return hi
		}
		return v
	}
	for i := 0; i < n; i++ {
		a := ring[i]
		c := ring[(i+1)%n]
		x0 := clamp(int(math.Round(a.X)), b.Max.X-1)
		y0 := clamp(int(math.Round(a.Y)), b.Max.Y-1)
		x1 := clamp(int(math.Round(c.X)), b.Max.X-1)
		y1 := clamp(int(math.Round(c.Y)), b.Max.Y-1)
		drawLine(img, x0, y0, x1, y1, col)
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col stdcolor.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.SetRGBA(x0, y0, col)
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

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
