// Package quantize reduces a full-color bitmap to a small fixed palette and
// assigns every pixel a palette index.
//
// The quantizer is deterministic by construction: clustering is seeded from
// the image's own color histogram (or its dominant-color candidates in smart
// mode), never from a random source, so identical input and settings always
// produce the identical palette and pixel assignment.
//
// Color resolution contract: clustering and assignment operate on a
// 5-bit-per-channel histogram (32768 bins). Nearest-palette assignment uses
// Euclidean distance in CIELAB; ties resolve to the lower palette index.
package quantize

import (
	"fmt"
	"math"
	"sort"

	"github.com/cenkalti/dominantcolor"

	"paintbynum/internal/color"
	"paintbynum/internal/imaging"
)

// MaxColors is the largest palette the engine will produce. Palette indices
// are stored as uint8 throughout, so this is a hard limit.
const MaxColors = 256

// Options configures a quantization pass.
type Options struct {
	// Colors is the requested palette size K, 1..MaxColors. If K exceeds the
	// number of distinct histogram bins in the image it is clamped down.
	Colors int

	// Smoothness (0..100) biases cluster merging before the palette is
	// finalized: clusters closer than the derived CIELAB tolerance collapse
	// into one, which can shrink the palette below K. Near-zero smoothness
	// keeps clusters apart, the behavior line-art sources want.
	Smoothness float64

	// SmartPalette seeds clustering from weighted dominant-color candidates
	// with farthest-point selection instead of raw histogram frequency.
	SmartPalette bool
}

// Result is the quantizer output: the palette in seed (quantization-rank)
// order and the dense per-pixel palette-index plane.
type Result struct {
	Palette       []color.RGBA
	Plane         []uint8 // row-major, index = y*Width + x
	Width, Height int
}

// IndexAt returns the palette index of the pixel at (x, y).
func (r *Result) IndexAt(x, y int) uint8 {
	return r.Plane[y*r.Width+x]
}

type bin struct {
	key              uint16
	count            int
	sumR, sumG, sumB uint64
	lab              [3]float64
}

func (b *bin) mean() color.RGBA {
	n := uint64(b.count)
	return color.RGBA{
		R: uint8(b.sumR / n),
		G: uint8(b.sumG / n),
		B: uint8(b.sumB / n),
		A: 255,
	}
}

func binKey(c color.RGBA) uint16 {
	return uint16(c.R>>3)<<10 | uint16(c.G>>3)<<5 | uint16(c.B>>3)
}

// Quantize clusters the buffer's colors into at most opts.Colors palette
// entries and maps every pixel to its nearest entry.
func Quantize(buf *imaging.Buffer, opts Options) (*Result, error) {
	if buf == nil || buf.Width <= 0 || buf.Height <= 0 || len(buf.Pix) == 0 {
		return nil, fmt.Errorf("quantize: empty bitmap")
	}
	if opts.Colors < 1 || opts.Colors > MaxColors {
		return nil, fmt.Errorf("quantize: numColors %d out of range 1..%d", opts.Colors, MaxColors)
	}

	bins, binIdx := buildHistogram(buf)

	k := opts.Colors
	if k > len(bins) {
		k = len(bins)
	}

	var centers []cluster
	if opts.SmartPalette {
		centers = seedDominant(buf, k)
	}
	if centers == nil {
		centers = seedFrequency(bins, k)
	}

	refine(bins, centers)

	tol := opts.Smoothness / 100.0 * smoothnessLabRange
	centers = mergeClose(centers, tol)

	palette := make([]color.RGBA, len(centers))
	for i, c := range centers {
		palette[i] = c.mean()
	}

	// Per-bin nearest-palette assignment, then one parallel pixel sweep.
	assign := make([]uint8, len(bins))
	palLab := make([][3]float64, len(palette))
	for i, p := range palette {
		palLab[i] = labOf(p)
	}
	for i := range bins {
		assign[i] = nearestLab(bins[i].lab, palLab)
	}

	plane := make([]uint8, buf.Width*buf.Height)
	w := buf.Width
	imaging.ParallelRows(buf.Height, func(sy, ey int) {
		for y := sy; y < ey; y++ {
			row := y * w
			for x := 0; x < w; x++ {
				plane[row+x] = assign[binIdx[binKey(buf.Pix[row+x])]]
			}
		}
	})

	return &Result{
		Palette: palette,
		Plane:   plane,
		Width:   buf.Width,
		Height:  buf.Height,
	}, nil
}

// smoothnessLabRange maps smoothness=100 to this CIELAB merge tolerance.
// Beyond ~0.35 even strongly contrasting colors would collapse.
const smoothnessLabRange = 0.35 * color.MaxLabDistance

func buildHistogram(buf *imaging.Buffer) ([]bin, map[uint16]int) {
	byKey := make(map[uint16]*bin)
	for _, px := range buf.Pix {
		key := binKey(px)
		b, ok := byKey[key]
		if !ok {
			b = &bin{key: key}
			byKey[key] = b
		}
		b.count++
		b.sumR += uint64(px.R)
		b.sumG += uint64(px.G)
		b.sumB += uint64(px.B)
	}

	bins := make([]bin, 0, len(byKey))
	for _, b := range byKey {
		bins = append(bins, *b)
	}
	// Deterministic order: most frequent first, ties by packed key.
	sort.Slice(bins, func(i, j int) bool {
		if bins[i].count != bins[j].count {
			return bins[i].count > bins[j].count
		}
		return bins[i].key < bins[j].key
	})

	binIdx := make(map[uint16]int, len(bins))
	for i := range bins {
		bins[i].lab = labOf(bins[i].mean())
		binIdx[bins[i].key] = i
	}
	return bins, binIdx
}

type cluster struct {
	sumR, sumG, sumB float64
	weight           float64
	lab              [3]float64
}

func newCluster(c color.RGBA, weight float64) cluster {
	return cluster{
		sumR:   float64(c.R) * weight,
		sumG:   float64(c.G) * weight,
		sumB:   float64(c.B) * weight,
		weight: weight,
		lab:    labOf(c),
	}
}

func (c *cluster) mean() color.RGBA {
	if c.weight == 0 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{
		R: uint8(math.Round(c.sumR / c.weight)),
		G: uint8(math.Round(c.sumG / c.weight)),
		B: uint8(math.Round(c.sumB / c.weight)),
		A: 255,
	}
}

// seedFrequency picks seeds in histogram-frequency order, skipping candidates
// that sit almost on top of an already chosen seed so the initial centers
// spread across the gamut.
func seedFrequency(bins []bin, k int) []cluster {
	const minSeedDist = 0.02
	centers := make([]cluster, 0, k)
	for pass := 0; pass < 2 && len(centers) < k; pass++ {
		for i := range bins {
			if len(centers) == k {
				break
			}
			lab := bins[i].lab
			tooClose := false
			for _, c := range centers {
				if pass == 0 && labDist(lab, c.lab) < minSeedDist {
					tooClose = true
					break
				}
				if pass == 1 && labDist(lab, c.lab) == 0 {
					tooClose = true
					break
				}
			}
			if !tooClose {
				centers = append(centers, newCluster(bins[i].mean(), float64(bins[i].count)))
			}
		}
	}
	return centers
}

// seedDominant seeds from weighted dominant-color candidates, selected by
// farthest-point traversal in CIELAB so the palette favors perceptually
// diverse tones over raw pixel counts. Returns nil when no candidates are
// found, letting the caller fall back to frequency seeding.
func seedDominant(buf *imaging.Buffer, k int) []cluster {
	n := k * 8
	if n < 24 {
		n = 24
	}
	candidates := dominantcolor.FindWeight(buf.Image(), n)
	if len(candidates) == 0 {
		return nil
	}

	type item struct {
		col color.RGBA
		lab [3]float64
		w   float64
	}
	items := make([]item, 0, len(candidates))
	maxW := 0.0
	for _, c := range candidates {
		col := color.FromStdColor(c.RGBA)
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		if w > maxW {
			maxW = w
		}
		items = append(items, item{col: col, lab: labOf(col), w: w})
	}
	if k > len(items) {
		k = len(items)
	}
	if maxW <= 0 {
		maxW = 1.0
	}

	// Seed with the strongest candidate, then greedily add the candidate
	// maximizing (distance to selection) × (weight boost).
	best := 0
	for i := 1; i < len(items); i++ {
		if items[i].w > items[best].w {
			best = i
		}
	}
	selected := []int{best}
	taken := make([]bool, len(items))
	taken[best] = true

	for len(selected) < k {
		bestIdx := -1
		bestScore := -1.0
		for i := range items {
			if taken[i] {
				continue
			}
			minD := math.MaxFloat64
			for _, s := range selected {
				if d := labDist(items[i].lab, items[s].lab); d < minD {
					minD = d
				}
			}
			score := minD * (0.55 + 0.45*math.Sqrt(items[i].w/maxW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		taken[bestIdx] = true
		selected = append(selected, bestIdx)
	}

	centers := make([]cluster, 0, len(selected))
	for _, idx := range selected {
		// Weight by the candidate's share of the histogram so refinement
		// starts from realistic masses.
		w := items[idx].w
		if w < 1 {
			w = 1
		}
		centers = append(centers, newCluster(items[idx].col, w))
	}
	return centers
}

// refine runs fixed-count Lloyd iterations over the histogram bins. Bins are
// assigned to the nearest center in CIELAB; centers move to the weighted RGB
// mean of their bins. Stops early once assignments stabilize.
func refine(bins []bin, centers []cluster) {
	const iterations = 10
	assign := make([]int, len(bins))
	for i := range assign {
		assign[i] = -1
	}

	centerLab := make([][3]float64, len(centers))
	for it := 0; it < iterations; it++ {
		for i := range centers {
			centerLab[i] = centers[i].lab
		}

		changed := false
		for i := range bins {
			best := int(nearestLab(bins[i].lab, centerLab))
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			return
		}

		next := make([]cluster, len(centers))
		for i := range bins {
			c := &next[assign[i]]
			w := float64(bins[i].count)
			c.sumR += float64(bins[i].sumR)
			c.sumG += float64(bins[i].sumG)
			c.sumB += float64(bins[i].sumB)
			c.weight += w
		}
		for i := range next {
			if next[i].weight == 0 {
				// Keep an orphaned center where it was rather than
				// resampling, preserving determinism.
				next[i] = centers[i]
				continue
			}
			next[i].lab = labOf(next[i].mean())
			centers[i] = next[i]
		}
	}
}

// mergeClose repeatedly collapses the closest pair of centers while their
// CIELAB distance is under tol. Survivor keeps the earlier seed position so
// palette order stays stable.
func mergeClose(centers []cluster, tol float64) []cluster {
	if tol <= 0 {
		return centers
	}
	for len(centers) > 1 {
		bestDist := math.MaxFloat64
		bestI, bestJ := 0, 1
		for i := 0; i < len(centers); i++ {
			for j := i + 1; j < len(centers); j++ {
				if d := labDist(centers[i].lab, centers[j].lab); d < bestDist {
					bestDist = d
					bestI, bestJ = i, j
				}
			}
		}
		if bestDist >= tol {
			break
		}
		merged := cluster{
			sumR:   centers[bestI].sumR + centers[bestJ].sumR,
			sumG:   centers[bestI].sumG + centers[bestJ].sumG,
			sumB:   centers[bestI].sumB + centers[bestJ].sumB,
			weight: centers[bestI].weight + centers[bestJ].weight,
		}
		merged.lab = labOf(merged.mean())
		centers[bestI] = merged
		centers = append(centers[:bestJ], centers[bestJ+1:]...)
	}
	return centers
}

func labOf(c color.RGBA) [3]float64 {
	l, a, b := c.Colorful().Lab()
	return [3]float64{l, a, b}
}

func labDist(a, b [3]float64) float64 {
	dl := a[0] - b[0]
	da := a[1] - b[1]
	db := a[2] - b[2]
	return math.Sqrt(dl*dl + da*da + db*db)
}

func nearestLab(lab [3]float64, centers [][3]float64) uint8 {
	best := 0
	bestD := math.MaxFloat64
	for i, c := range centers {
		if d := labDist(lab, c); d < bestD {
			bestD = d
			best = i
		}
	}
	return uint8(best)
}
