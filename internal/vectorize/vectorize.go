// Package vectorize turns the final zone/label state into polygon outlines
// and label anchor points.
//
// Contour extraction is exact by construction: rings are traced along the
// pixel-corner lattice of the label field itself, so an outline can never
// disagree with the field about pixel ownership. A defensive area check
// still verifies that invariant per zone before simplification; a mismatch
// aborts the whole batch, because it means the arena and the field have
// drifted apart.
package vectorize

import (
	"fmt"

	"paintbynum/internal/zone"
)

// Options configures vectorization.
type Options struct {
	// Epsilon is the Ramer–Douglas–Peucker simplification tolerance in
	// pixels. Zero disables simplification.
	Epsilon float64

	// MinAnchorArea is the smallest zone area that still receives a label
	// anchor. Tinier zones keep their outline but drop the anchor, since no
	// legible glyph fits anyway.
	MinAnchorArea int
}

// DefaultOptions returns the tolerances used by the pipeline.
func DefaultOptions() Options {
	return Options{
		Epsilon:       1.0,
		MinAnchorArea: 4,
	}
}

// Outline is the vector artifact of one zone: one or more closed rings
// (outer boundaries and holes) plus an optional interior label anchor.
type Outline struct {
	ZoneID int
	Rings  []Ring
	Anchor *Point // nil when the zone is too small for a label
}

// Vectorize extracts, simplifies, and anchor-places the outline of every
// zone. Zones with degenerate geometry keep their outline and lose only the
// anchor; a contour/label-field mismatch fails the whole batch.
func Vectorize(zones []zone.Zone, field *zone.Field, opts Options) ([]Outline, error) {
	outlines := make([]Outline, 0, len(zones))
	for i := range zones {
		z := &zones[i]
		rings := traceRings(z, field)

		if got := EnclosedArea(rings); got != float64(z.Area) {
			return nil, fmt.Errorf("zone %d: contour encloses %.1f pixels, label field owns %d", z.ID, got, z.Area)
		}

		simplified := make([]Ring, 0, len(rings))
		for _, r := range rings {
			simplified = append(simplified, simplifyRing(r, opts.Epsilon))
		}

		o := Outline{ZoneID: z.ID, Rings: simplified}
		if z.Area >= opts.MinAnchorArea {
			p := anchorPoint(z, field)
			o.Anchor = &p
		}
		if degraded(&o, float64(z.Area)) {
			o.Rings = rings
		}
		outlines = append(outlines, o)
	}
	return outlines, nil
}

// degraded reports whether simplification distorted the outline past what
// the tolerance allows: the label anchor must stay inside and the enclosed
// area must stay close to the zone's exact pixel area. Zones thinner than
// the tolerance (a 1-wide strip puts its anchor only 0.5px from the
// boundary) trip these checks and keep their exact rings.
func degraded(o *Outline, area float64) bool {
	if o.Anchor != nil && !o.Contains(*o.Anchor) {
		return true
	}
	got := EnclosedArea(o.Rings)
	return got < 0.5*area || got > 1.5*area
}

// Contains reports whether p lies inside the outline under the even-odd
// rule, holes excluded.
func (o *Outline) Contains(p Point) bool {
	inside := false
	for _, ring := range o.Rings {
		if ring.contains(p) {
			inside = !inside
		}
	}
	return inside
}

func (r Ring) contains(p Point) bool {
	inside := false
	n := len(r)
	for i := 0; i < n; i++ {
		a := r[i]
		b := r[(i+1)%n]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}
