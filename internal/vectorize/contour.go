package vectorize

import (
	"sort"

	"paintbynum/internal/zone"
)

// Point is a vertex in image space. Contour vertices sit on the pixel-corner
// lattice, so a W×H image yields coordinates in [0,W]×[0,H].
type Point struct {
	X, Y float64
}

// Ring is a closed polygon; the edge from the last vertex back to the first
// is implicit. Outer rings wind so the zone interior is on the left of the
// walking direction; hole rings wind the opposite way, which makes the
// even-odd fill rule and signed-area bookkeeping line up.
type Ring []Point

// SignedArea returns the shoelace area of the ring. With the interior-left
// winding used by the tracer, outer rings come out negative and holes
// positive in the y-down image coordinate system; EnclosedArea accounts for
// the sign.
func (r Ring) SignedArea() float64 {
	if len(r) < 3 {
		return 0
	}
	sum := 0.0
	for i := range r {
		j := (i + 1) % len(r)
		sum += r[i].X*r[j].Y - r[j].X*r[i].Y
	}
	return sum / 2
}

// EnclosedArea returns the pixel area enclosed by a set of rings traced from
// one zone mask: outer ring areas minus hole areas.
func EnclosedArea(rings []Ring) float64 {
	total := 0.0
	for _, r := range rings {
		total -= r.SignedArea()
	}
	return total
}

// traceRings extracts the closed boundary rings of one zone from the label
// field. Every boundary edge between a zone pixel and a non-zone pixel
// becomes a directed lattice edge with the zone interior on its left; the
// edges are then linked into closed loops. The result is exact: the rings
// enclose precisely the zone's pixels, holes included.
func traceRings(z *zone.Zone, field *zone.Field) []Ring {
	w := field.Width
	vw := w + 1 // vertex lattice width
	id := int32(z.ID)

	// start vertex -> end vertices of directed boundary edges.
	// Degree is at most 2 (checkerboard corner).
	edges := make(map[int32][]int32, len(z.Pixels))
	addEdge := func(from, to int32) {
		edges[from] = append(edges[from], to)
	}

	for _, p := range z.Pixels {
		x := int(p) % w
		y := int(p) / w
		tl := int32(y*vw + x) // top-left vertex of the pixel square

		if y == 0 || field.IDs[p-int32(w)] != id { // top edge, walk right-to-left
			addEdge(tl+1, tl)
		}
		if y == field.Height-1 || field.IDs[p+int32(w)] != id { // bottom edge, left-to-right
			addEdge(tl+int32(vw), tl+int32(vw)+1)
		}
		if x == 0 || field.IDs[p-1] != id { // left edge, downward
			addEdge(tl, tl+int32(vw))
		}
		if x == w-1 || field.IDs[p+1] != id { // right edge, upward
			addEdge(tl+int32(vw)+1, tl+1)
		}
	}

	// Deterministic loop extraction: always start from the smallest unused
	// start vertex.
	starts := make([]int32, 0, len(edges))
	for v := range edges {
		starts = append(starts, v)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	var rings []Ring
	for _, start := range starts {
		for len(edges[start]) > 0 {
			rings = append(rings, walkRing(edges, start, vw))
		}
	}
	return rings
}

// walkRing follows directed edges from start until the loop closes. At a
// checkerboard vertex with two outgoing edges it takes the left turn
// relative to the incoming direction, pinching the vertex so the traced
// region stays consistent with 4-connectivity.
func walkRing(edges map[int32][]int32, start int32, vw int) Ring {
	var ring Ring
	cur := start
	var dirX, dirY int

	for {
		outs := edges[cur]
		pick := 0
		if len(outs) > 1 {
			pick = leftmostTurn(cur, outs, dirX, dirY, vw)
		}
		next := outs[pick]

		outs[pick] = outs[len(outs)-1]
		outs = outs[:len(outs)-1]
		if len(outs) == 0 {
			delete(edges, cur)
		} else {
			edges[cur] = outs
		}

		ring = append(ring, Point{X: float64(cur % int32(vw)), Y: float64(cur / int32(vw))})
		dirX = int(next%int32(vw)) - int(cur%int32(vw))
		dirY = int(next/int32(vw)) - int(cur/int32(vw))
		cur = next
		if cur == start {
			return ring
		}
	}
}

// leftmostTurn picks the outgoing edge that turns left relative to the
// incoming direction (in, y-down coordinates). With at most two candidates
// on the lattice, the left turn is the one whose direction equals the
// incoming direction rotated counterclockwise.
func leftmostTurn(cur int32, outs []int32, dirX, dirY, vw int) int {
	leftX, leftY := dirY, -dirX
	for i, o := range outs {
		ox := int(o%int32(vw)) - int(cur%int32(vw))
		oy := int(o/int32(vw)) - int(cur/int32(vw))
		if ox == leftX && oy == leftY {
			return i
		}
	}
	return 0
}
