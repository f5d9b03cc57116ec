// Package zone implements connected-component labeling over the quantized
// palette-index plane and the zone arena shared by the merge and vectorize
// stages.
//
// Connectivity contract: zones are 4-connected. Two pixels belong to the same
// zone only if they share a palette index and are reachable through
// horizontal/vertical steps. This is part of the engine's stability
// guarantee; changing it changes every downstream artifact.
package zone

import (
	"paintbynum/internal/quantize"
)

// Unassigned marks label-field cells not owned by any zone. It only appears
// transiently during labeling and merging; a finished field has none.
const Unassigned int32 = -1

// Field is a dense width×height array of zone ids.
type Field struct {
	Width, Height int
	IDs           []int32 // row-major, index = y*Width + x
}

// NewField returns a field with every cell unassigned.
func NewField(w, h int) *Field {
	f := &Field{Width: w, Height: h, IDs: make([]int32, w*h)}
	for i := range f.IDs {
		f.IDs[i] = Unassigned
	}
	return f
}

// At returns the zone id owning pixel (x, y).
func (f *Field) At(x, y int) int32 {
	return f.IDs[y*f.Width+x]
}

// Zone is one maximal connected region of same-palette pixels. Zones live in
// an arena indexed by id; merging mutates the arena in place instead of
// relinking region objects.
type Zone struct {
	ID       int
	ColorIdx int     // index into the palette
	Area     int     // pixel count
	Pixels   []int32 // flat pixel indices into the field
	SumX     int64   // running coordinate sums for the centroid
	SumY     int64

	// Presentation fields, resolved once the palette assignment is final.
	Hex     string
	Percent float64
}

// Centroid returns the arithmetic mean of the zone's pixel coordinates.
// It may fall outside concave zones; label placement uses the vectorizer's
// interior anchor instead.
func (z *Zone) Centroid() (float64, float64) {
	if z.Area == 0 {
		return 0, 0
	}
	return float64(z.SumX) / float64(z.Area), float64(z.SumY) / float64(z.Area)
}

// Rep returns a representative pixel of the zone (the first one labeled).
func (z *Zone) Rep(width int) (x, y int) {
	if len(z.Pixels) == 0 {
		return 0, 0
	}
	p := int(z.Pixels[0])
	return p % width, p / width
}

// Label runs 4-connected BFS flood fill over the palette-index plane,
// assigning every pixel to exactly one zone. Area and centroid sums
// accumulate during the same pass. The sum of all zone areas equals
// width×height.
func Label(q *quantize.Result) ([]Zone, *Field) {
	w, h := q.Width, q.Height
	field := NewField(w, h)

	var zones []Zone
	var queue []int32

	for start := 0; start < w*h; start++ {
		if field.IDs[start] != Unassigned {
			continue
		}
		id := int32(len(zones))
		colorIdx := q.Plane[start]

		z := Zone{ID: int(id), ColorIdx: int(colorIdx)}
		queue = queue[:0]
		queue = append(queue, int32(start))
		field.IDs[start] = id

		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			z.Pixels = append(z.Pixels, p)
			z.Area++
			x := int(p) % w
			y := int(p) / w
			z.SumX += int64(x)
			z.SumY += int64(y)

			if x > 0 {
				visit(q, field, p-1, colorIdx, id, &queue)
			}
			if x < w-1 {
				visit(q, field, p+1, colorIdx, id, &queue)
			}
			if y > 0 {
				visit(q, field, p-int32(w), colorIdx, id, &queue)
			}
			if y < h-1 {
				visit(q, field, p+int32(w), colorIdx, id, &queue)
			}
		}

		zones = append(zones, z)
	}

	return zones, field
}

func visit(q *quantize.Result, f *Field, p int32, colorIdx uint8, id int32, queue *[]int32) {
	if f.IDs[p] != Unassigned || q.Plane[p] != colorIdx {
		return
	}
	f.IDs[p] = id
	*queue = append(*queue, p)
}

// Adjacency builds, for each zone id, the set of zone ids sharing at least
// one 4-connected pixel edge with it. One scan over the field; each edge is
// recorded in both directions.
func Adjacency(f *Field, zoneCount int) []map[int32]struct{} {
	adj := make([]map[int32]struct{}, zoneCount)
	link := func(a, b int32) {
		if a == b || a < 0 || b < 0 {
			return
		}
		if adj[a] == nil {
			adj[a] = make(map[int32]struct{})
		}
		if adj[b] == nil {
			adj[b] = make(map[int32]struct{})
		}
		adj[a][b] = struct{}{}
		adj[b][a] = struct{}{}
	}

	w, h := f.Width, f.Height
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			id := f.IDs[row+x]
			if x < w-1 {
				link(id, f.IDs[row+x+1])
			}
			if y < h-1 {
				link(id, f.IDs[row+w+x])
			}
		}
	}
	return adj
}
