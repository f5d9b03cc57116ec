package vectorize

import (
	"math"

	"paintbynum/internal/zone"
)

// anchorPoint places the zone's label anchor: the center of the zone pixel
// deepest inside the region, preferring depth first and proximity to the
// centroid second. Depth is the 4-connected distance to the nearest
// non-zone pixel, computed with a multi-source BFS from the boundary in
// O(area), so the placement survives concave and multi-part shapes where
// the raw centroid escapes the region.
func anchorPoint(z *zone.Zone, field *zone.Field) Point {
	w := field.Width
	id := int32(z.ID)

	// Distance-to-boundary per zone pixel, tracked sparsely.
	dist := make(map[int32]int32, len(z.Pixels))
	queue := make([]int32, 0, len(z.Pixels)/4+1)

	inZone := func(p int32) bool {
		return field.IDs[p] == id
	}

	for _, p := range z.Pixels {
		x := int(p) % w
		y := int(p) / w
		boundary := x == 0 || y == 0 || x == w-1 || y == field.Height-1 ||
			!inZone(p-1) || !inZone(p+1) || !inZone(p-int32(w)) || !inZone(p+int32(w))
		if boundary {
			dist[p] = 0
			queue = append(queue, p)
		} else {
			dist[p] = -1
		}
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		nd := dist[p] + 1
		x := int(p) % w
		y := int(p) / w
		for _, n := range [4]int32{p - 1, p + 1, p - int32(w), p + int32(w)} {
			switch {
			case n == p-1 && x == 0:
				continue
			case n == p+1 && x == w-1:
				continue
			case n == p-int32(w) && y == 0:
				continue
			case n == p+int32(w) && y == field.Height-1:
				continue
			}
			if d, ok := dist[n]; ok && d == -1 {
				dist[n] = nd
				queue = append(queue, n)
			}
		}
	}

	cx, cy := z.Centroid()
	var best int32 = -1
	bestDepth := int32(-1)
	bestSq := math.MaxFloat64
	for _, p := range z.Pixels {
		d := dist[p]
		dx := float64(int(p)%w) - cx
		dy := float64(int(p)/w) - cy
		sq := dx*dx + dy*dy
		if d > bestDepth || (d == bestDepth && sq < bestSq) {
			bestDepth = d
			bestSq = sq
			best = p
		}
	}

	return Point{
		X: float64(int(best)%w) + 0.5,
		Y: float64(int(best)/w) + 0.5,
	}
}
