package vectorize

import (
	"fmt"
	"io"
	"strings"

	"paintbynum/internal/color"
	"paintbynum/internal/zone"
)

// WriteSVG emits the vectorized template as a standalone SVG document: one
// even-odd-filled path per zone plus a numbered label at each anchor.
// Numbers are 1-based palette indices, matching the numbered raster layer.
func WriteSVG(w io.Writer, width, height int, zones []zone.Zone, outlines []Outline, palette []color.RGBA) error {
	if _, err := fmt.Fprintf(w,
		"<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" width=\"%d\" height=\"%d\">\n",
		width, height, width, height); err != nil {
		return err
	}

	for _, o := range outlines {
		fill := "#ffffff"
		if o.ZoneID >= 0 && o.ZoneID < len(zones) {
			fill = palette[zones[o.ZoneID].ColorIdx].Hex()
		}
		if _, err := fmt.Fprintf(w,
			"  <path d=\"%s\" fill=\"%s\" fill-rule=\"evenodd\" stroke=\"#000000\" stroke-width=\"0.5\"/>\n",
			pathData(o.Rings), fill); err != nil {
			return err
		}
	}

	for _, o := range outlines {
		if o.Anchor == nil {
			continue
		}
		z := zones[o.ZoneID]
		glyph := palette[z.ColorIdx]
		textFill := "#000000"
		if !glyph.IsLight() {
			textFill = "#ffffff"
		}
		if _, err := fmt.Fprintf(w,
			"  <text x=\"%.1f\" y=\"%.1f\" text-anchor=\"middle\" dominant-baseline=\"central\" font-size=\"6\" fill=\"%s\">%d</text>\n",
			o.Anchor.X, o.Anchor.Y, textFill, z.ColorIdx+1); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</svg>\n")
	return err
}

func pathData(rings []Ring) string {
	var sb strings.Builder
	for _, r := range rings {
		if len(r) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "M%.1f %.1f", r[0].X, r[0].Y)
		for _, p := range r[1:] {
			fmt.Fprintf(&sb, " L%.1f %.1f", p.X, p.Y)
		}
		sb.WriteString(" Z ")
	}
	return strings.TrimSpace(sb.String())
}
