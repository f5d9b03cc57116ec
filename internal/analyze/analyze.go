// Package analyze implements the pre-pass that recommends processing
// settings for an image before the main pipeline runs.
//
// The pass is deliberately coarser and cheaper than the main quantizer: it
// works on a downsampled copy, clusters a pixel sample, and folds color
// entropy and edge density into a single 0–100 complexity score. It shares
// nothing mutable with the pipeline and can run at any time.
package analyze

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/cenkalti/dominantcolor"
	"github.com/disintegration/imaging"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/stat"

	"paintbynum/internal/color"
	pbimaging "paintbynum/internal/imaging"
)

// ColorAnalysis is the analyzer's verdict on an image, independent of any
// user-chosen settings.
type ColorAnalysis struct {
	UniqueColors             int
	ComplexityScore          int // 0–100
	RecommendedNumColors     int
	RecommendedMinRegionSize int
	DominantColors           []string // hex, strongest first
}

const (
	analysisSize  = 256  // longest edge of the downsampled working copy
	sampleBudget  = 4000 // max observations fed to clustering
	coarseK       = 24   // clustering granularity of the pre-pass
	minorShare    = 0.015
	dominantCount = 8
)

// Analyze inspects the image and produces recommended settings plus a
// complexity score. It never mutates the input and holds no state between
// calls.
func Analyze(img image.Image) (*ColorAnalysis, error) {
	if img == nil || img.Bounds().Dx() <= 0 || img.Bounds().Dy() <= 0 {
		return nil, fmt.Errorf("analyze: empty image")
	}

	full := pbimaging.NewBuffer(img)
	small := imaging.Fit(img, analysisSize, analysisSize, imaging.Lanczos)
	smallBuf := pbimaging.NewBuffer(small)

	unique := countUniqueColors(full)
	entropy := colorEntropy(smallBuf)
	edges := edgeDensity(small)
	clusterCount := significantClusters(smallBuf)

	complexity := combineComplexity(unique, entropy, edges)

	area := full.Width * full.Height
	recColors := recommendNumColors(clusterCount, complexity)
	recMinRegion := recommendMinRegionSize(area, complexity)

	dom := make([]string, 0, dominantCount)
	for _, c := range dominantcolor.FindWeight(small, dominantCount) {
		dom = append(dom, color.FromStdColor(c.RGBA).Hex())
	}

	return &ColorAnalysis{
		UniqueColors:             unique,
		ComplexityScore:          complexity,
		RecommendedNumColors:     recColors,
		RecommendedMinRegionSize: recMinRegion,
		DominantColors:           dom,
	}, nil
}

func countUniqueColors(buf *pbimaging.Buffer) int {
	seen := make(map[uint32]struct{})
	for _, px := range buf.Pix {
		key := uint32(px.R)<<16 | uint32(px.G)<<8 | uint32(px.B)
		seen[key] = struct{}{}
	}
	return len(seen)
}

// colorEntropy measures how evenly the image spreads over a 4-bit-per-channel
// histogram, normalized to [0,1].
func colorEntropy(buf *pbimaging.Buffer) float64 {
	const bins = 1 << 12
	hist := make([]float64, bins)
	for _, px := range buf.Pix {
		key := uint32(px.R>>4)<<8 | uint32(px.G>>4)<<4 | uint32(px.B>>4)
		hist[key]++
	}
	total := float64(len(buf.Pix))
	occupied := 0
	for i := range hist {
		if hist[i] > 0 {
			occupied++
		}
		hist[i] /= total
	}
	if occupied < 2 {
		return 0
	}
	return stat.Entropy(hist) / math.Log(bins)
}

// edgeDensity runs bild's edge detection over the working copy and returns
// the fraction of pixels sitting on an edge.
func edgeDensity(img image.Image) float64 {
	ed := effect.EdgeDetection(img, 1.0)
	bounds := ed.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}
	hot := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := ed.RGBAAt(x, y)
			if int(c.R)+int(c.G)+int(c.B) > 3*32 {
				hot++
			}
		}
	}
	return float64(hot) / float64(total)
}

// significantClusters partitions a pixel sample into coarse clusters and
// counts the ones that cover a non-trivial share of the image.
func significantClusters(buf *pbimaging.Buffer) int {
	step := 1
	if len(buf.Pix) > sampleBudget {
		step = len(buf.Pix) / sampleBudget
	}
	dataset := make(clusters.Observations, 0, sampleBudget)
	for i := 0; i < len(buf.Pix); i += step {
		px := buf.Pix[i]
		dataset = append(dataset, clusters.Coordinates{
			float64(px.R) / 255.0,
			float64(px.G) / 255.0,
			float64(px.B) / 255.0,
		})
	}
	if len(dataset) == 0 {
		return 1
	}

	k := coarseK
	if k > len(dataset) {
		k = len(dataset)
	}
	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil || len(cc) == 0 {
		return coarseK / 2
	}

	significant := 0
	for _, c := range cc {
		if float64(len(c.Observations))/float64(len(dataset)) >= minorShare {
			significant++
		}
	}
	if significant < 1 {
		significant = 1
	}
	return significant
}

func combineComplexity(unique int, entropy, edges float64) int {
	uniqueNorm := math.Log(float64(unique)+1) / math.Log(1<<16)
	if uniqueNorm > 1 {
		uniqueNorm = 1
	}
	edgeNorm := edges * 4
	if edgeNorm > 1 {
		edgeNorm = 1
	}
	score := int(math.Round(100 * (0.40*entropy + 0.35*edgeNorm + 0.25*uniqueNorm)))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// recommendNumColors rounds the coarse cluster count to the nearest even
// value so run-to-run jitter in clustering does not flip the recommendation.
func recommendNumColors(clusterCount, complexity int) int {
	n := clusterCount
	if complexity > 70 {
		n += 2
	}
	n = (n + 1) / 2 * 2
	if n < 6 {
		n = 6
	}
	if n > 24 {
		n = 24
	}
	return n
}

// recommendMinRegionSize scales with image area, bumped up for complex
// images where tiny fragments would otherwise dominate.
func recommendMinRegionSize(area, complexity int) int {
	base := float64(area) / 20000.0
	base *= 1.0 + float64(complexity)/100.0
	m := int(math.Round(base))
	if m < 16 {
		m = 16
	}
	if m > 512 {
		m = 512
	}
	return m
}
