package vectorize

import "math"

// segmentDistance returns the distance from p to the segment a-b, falling
// back to the nearest endpoint when the perpendicular foot lies outside the
// segment.
func segmentDistance(p, a, b Point) float64 {
	abX := b.X - a.X
	abY := b.Y - a.Y
	lenSq := abX*abX + abY*abY
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*abX + (p.Y-a.Y)*abY) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(p.X-(a.X+t*abX), p.Y-(a.Y+t*abY))
}

// simplifyOpen runs Ramer–Douglas–Peucker on an open polyline, keeping both
// endpoints and every vertex farther than epsilon from the simplified chords.
func simplifyOpen(points []Point, epsilon float64) []Point {
	if len(points) < 3 {
		out := make([]Point, len(points))
		copy(out, points)
		return out
	}

	first, last := points[0], points[len(points)-1]
	dmax := 0.0
	index := 0
	for i := 1; i < len(points)-1; i++ {
		d := segmentDistance(points[i], first, last)
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if dmax < epsilon {
		return []Point{first, last}
	}

	left := simplifyOpen(points[:index+1], epsilon)
	right := simplifyOpen(points[index:], epsilon)
	return append(left[:len(left)-1], right...)
}

// simplifyRing simplifies a closed ring. The ring is split at its first
// vertex and at the vertex farthest from it, each half simplified
// independently, so closure survives and the two anchor vertices pin the
// shape in place. Rings that would degenerate below three vertices are
// returned unsimplified.
func simplifyRing(ring Ring, epsilon float64) Ring {
	if epsilon <= 0 || len(ring) < 5 {
		return ring
	}

	far := 1
	dmax := -1.0
	for i := 1; i < len(ring); i++ {
		dx := ring[i].X - ring[0].X
		dy := ring[i].Y - ring[0].Y
		if d := dx*dx + dy*dy; d > dmax {
			dmax = d
			far = i
		}
	}

	firstHalf := simplifyOpen(ring[:far+1], epsilon)
	secondHalf := simplifyOpen(append(append([]Point{}, ring[far:]...), ring[0]), epsilon)

	out := make(Ring, 0, len(firstHalf)+len(secondHalf)-2)
	out = append(out, firstHalf...)
	// Drop the shared split vertex and the duplicated closing vertex.
	out = append(out, secondHalf[1:len(secondHalf)-1]...)

	if len(out) < 3 {
		return ring
	}
	return out
}
