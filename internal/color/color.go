// Package color provides the 8-bit RGBA value type used throughout the
// engine, hex parsing/formatting, and perceptual color distance.
//
// All perceptual comparisons use Euclidean distance in CIELAB (D65), computed
// via github.com/lucasb-eyer/go-colorful. This metric is part of the engine's
// stability contract: palette assignment and artistic merging both depend on
// it, so changing it changes zone boundaries.
package color

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBA represents a color with 8-bit RGBA components.
type RGBA struct {
	R, G, B, A uint8
}

// FromStdColor converts a standard library color to RGBA.
func FromStdColor(c color.Color) RGBA {
	r, g, b, a := c.RGBA()
	return RGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(a >> 8),
	}
}

// ToStdColor converts RGBA to a standard library color.
func (c RGBA) ToStdColor() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Colorful converts RGBA to a go-colorful color, dropping alpha.
func (c RGBA) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Hex returns the color formatted as "#rrggbb".
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses a hex color string like "#000", "#000000", "#FF00FF".
func ParseHex(s string) (RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	var r, g, b uint8
	switch len(s) {
	case 3:
		_, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b)
		if err != nil {
			return RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		r = r*16 + r
		g = g*16 + g
		b = b*16 + b
	case 6:
		_, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b)
		if err != nil {
			return RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
	default:
		return RGBA{}, fmt.Errorf("invalid hex color %q: must be 3 or 6 hex digits", s)
	}
	return RGBA{R: r, G: g, B: b, A: 255}, nil
}

// DistanceLab computes the Euclidean distance in CIELAB space between two
// colors. go-colorful scales L to [0,1], so typical distances fall in
// [0, ~1.2]; colors below ~0.1 are hard to tell apart.
func DistanceLab(a, b RGBA) float64 {
	return a.Colorful().DistanceLab(b.Colorful())
}

// DistanceRGB computes the Euclidean distance in RGB space between two colors.
func DistanceRGB(a, b RGBA) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// MaxLabDistance is the approximate diameter of the sRGB gamut in CIELAB
// (go-colorful scaling), used to turn percentage tolerances into absolute
// distances.
const MaxLabDistance = 1.0

// WeightedMean computes the weighted mean of a set of colors.
// weights[i] corresponds to colors[i]. If weights is nil, equal weights are used.
func WeightedMean(colors []RGBA, weights []int) RGBA {
	if len(colors) == 0 {
		return RGBA{}
	}
	var totalR, totalG, totalB, totalA float64
	var totalW float64
	for i, c := range colors {
		w := 1.0
		if weights != nil {
			w = float64(weights[i])
		}
		totalR += float64(c.R) * w
		totalG += float64(c.G) * w
		totalB += float64(c.B) * w
		totalA += float64(c.A) * w
		totalW += w
	}
	if totalW == 0 {
		return RGBA{}
	}
	return RGBA{
		R: uint8(math.Round(totalR / totalW)),
		G: uint8(math.Round(totalG / totalW)),
		B: uint8(math.Round(totalB / totalW)),
		A: uint8(math.Round(totalA / totalW)),
	}
}

// IsLight returns true if the color is perceptually light. Used to pick a
// readable glyph color over a filled background.
func (c RGBA) IsLight() bool {
	l, _, _ := c.Colorful().Lab()
	return l > 0.5
}
