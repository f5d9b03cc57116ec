// Package merge eliminates zones below the minimum-area threshold by
// absorbing them into adjacent zones.
//
// Processing order is deterministic: always the smallest under-threshold
// zone, ties broken by ascending id. Each merge step retires exactly one
// zone and retired zones are never revisited, so the pass converges in at
// most zone-count steps. Adjacency is maintained incrementally instead of
// re-labeling the field after every merge.
package merge

import (
	"math"
	"sort"

	"paintbynum/internal/color"
	"paintbynum/internal/zone"
)

// Options configures a merge pass.
type Options struct {
	// MinRegionSize is the smallest zone area allowed to survive, in pixels.
	MinRegionSize int

	// Tolerance is the CIELAB distance within which neighbors count as
	// "similar" for artistic merging.
	Tolerance float64

	// Artistic selects perceptual-color-distance-guided absorption instead
	// of the plain largest-neighbor rule.
	Artistic bool
}

// Merge absorbs every zone with area < MinRegionSize into a neighbor, then
// compacts the arena to sequential ids and rewrites the label field to
// match. The absorbing zone keeps its palette assignment. If merging would
// eliminate every zone, the largest one survives.
func Merge(zones []zone.Zone, field *zone.Field, palette []color.RGBA, opts Options) []zone.Zone {
	if opts.MinRegionSize <= 1 || len(zones) <= 1 {
		return compact(zones, field)
	}

	adj := zone.Adjacency(field, len(zones))
	alive := make([]bool, len(zones))
	aliveCount := len(zones)
	for i := range alive {
		alive[i] = true
	}

	for aliveCount > 1 {
		src := pickSmallest(zones, alive, opts.MinRegionSize)
		if src < 0 {
			break
		}
		dst := pickTarget(zones, palette, src, adj[src], opts)
		if dst < 0 {
			// Isolated zone; nothing to absorb it into.
			break
		}
		absorb(zones, adj, src, dst)
		alive[src] = false
		aliveCount--
	}

	kept := zones[:0]
	for i := range zones {
		if alive[i] {
			kept = append(kept, zones[i])
		}
	}
	return compact(kept, field)
}

// pickSmallest returns the id of the smallest live under-threshold zone,
// ties broken by ascending id, or -1 when every live zone is large enough.
func pickSmallest(zones []zone.Zone, alive []bool, minSize int) int {
	best := -1
	for i := range zones {
		if !alive[i] || zones[i].Area >= minSize {
			continue
		}
		if best < 0 || zones[i].Area < zones[best].Area {
			best = i
		}
	}
	return best
}

// pickTarget chooses the neighbor that absorbs zone src. Artistic mode
// prefers the largest neighbor within the color tolerance, falling back to
// the perceptually closest one; plain mode takes the largest neighbor.
// All tie-breaks resolve to the lower id.
func pickTarget(zones []zone.Zone, palette []color.RGBA, src int, neighbors map[int32]struct{}, opts Options) int {
	if len(neighbors) == 0 {
		return -1
	}
	ids := make([]int, 0, len(neighbors))
	for n := range neighbors {
		ids = append(ids, int(n))
	}
	sort.Ints(ids)

	if !opts.Artistic {
		best := ids[0]
		for _, n := range ids[1:] {
			if zones[n].Area > zones[best].Area {
				best = n
			}
		}
		return best
	}

	srcColor := palette[zones[src].ColorIdx]
	bestWithin := -1
	bestClosest := -1
	bestDist := math.MaxFloat64
	for _, n := range ids {
		d := color.DistanceLab(srcColor, palette[zones[n].ColorIdx])
		if d <= opts.Tolerance {
			if bestWithin < 0 || zones[n].Area > zones[bestWithin].Area {
				bestWithin = n
			}
		}
		if d < bestDist {
			bestDist = d
			bestClosest = n
		}
	}
	if bestWithin >= 0 {
		return bestWithin
	}
	return bestClosest
}

// absorb folds zone src into zone dst: pixels, area, centroid sums, and
// adjacency all move over; dst keeps its own palette color.
func absorb(zones []zone.Zone, adj []map[int32]struct{}, src, dst int) {
	s := &zones[src]
	d := &zones[dst]
	d.Pixels = append(d.Pixels, s.Pixels...)
	d.Area += s.Area
	d.SumX += s.SumX
	d.SumY += s.SumY
	s.Pixels = nil
	s.Area = 0

	for n := range adj[src] {
		delete(adj[n], int32(src))
		if int(n) != dst {
			adj[n][int32(dst)] = struct{}{}
			adj[dst][n] = struct{}{}
		}
	}
	delete(adj[dst], int32(src))
	adj[src] = nil
}

// compact renumbers the surviving zones sequentially and rewrites the label
// field from their pixel lists in a single pass.
func compact(zones []zone.Zone, field *zone.Field) []zone.Zone {
	for i := range zones {
		zones[i].ID = i
		for _, p := range zones[i].Pixels {
			field.IDs[p] = int32(i)
		}
	}
	return zones
}
