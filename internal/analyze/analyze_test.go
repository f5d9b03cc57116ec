package analyze

import (
	"image"
	stdcolor "image/color"
	"math/rand"
	"testing"
)

func solidImage(w, h int, c stdcolor.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func noisyImage(w, h int) *image.RGBA {
	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, stdcolor.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

func TestAnalyzeRejectsEmptyImage(t *testing.T) {
	if _, err := Analyze(nil); err == nil {
		t.Error("nil image accepted")
	}
	if _, err := Analyze(image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Error("zero-size image accepted")
	}
}

func TestAnalyzeSolidImage(t *testing.T) {
	ca, err := Analyze(solidImage(64, 64, stdcolor.RGBA{200, 40, 40, 255}))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if ca.UniqueColors != 1 {
		t.Errorf("unique colors %d, want 1", ca.UniqueColors)
	}
	if ca.ComplexityScore > 20 {
		t.Errorf("solid image scored complexity %d", ca.ComplexityScore)
	}
	assertRecommendationBounds(t, ca)
	if len(ca.DominantColors) == 0 {
		t.Error("no dominant colors reported")
	}
}

func TestAnalyzeNoisyImageScoresHigher(t *testing.T) {
	solid, err := Analyze(solidImage(64, 64, stdcolor.RGBA{10, 10, 10, 255}))
	if err != nil {
		t.Fatalf("solid: %v", err)
	}
	noisy, err := Analyze(noisyImage(64, 64))
	if err != nil {
		t.Fatalf("noisy: %v", err)
	}
	if noisy.ComplexityScore <= solid.ComplexityScore {
		t.Errorf("noise scored %d, solid %d", noisy.ComplexityScore, solid.ComplexityScore)
	}
	if noisy.UniqueColors <= solid.UniqueColors {
		t.Errorf("noise has %d unique colors, solid %d", noisy.UniqueColors, solid.UniqueColors)
	}
	assertRecommendationBounds(t, noisy)
}

func assertRecommendationBounds(t *testing.T, ca *ColorAnalysis) {
	t.Helper()
	if ca.ComplexityScore < 0 || ca.ComplexityScore > 100 {
		t.Errorf("complexity %d outside 0..100", ca.ComplexityScore)
	}
	if ca.RecommendedNumColors < 6 || ca.RecommendedNumColors > 24 {
		t.Errorf("recommended colors %d outside 6..24", ca.RecommendedNumColors)
	}
	if ca.RecommendedNumColors%2 != 0 {
		t.Errorf("recommended colors %d not even", ca.RecommendedNumColors)
	}
	if ca.RecommendedMinRegionSize < 16 || ca.RecommendedMinRegionSize > 512 {
		t.Errorf("recommended min region %d outside 16..512", ca.RecommendedMinRegionSize)
	}
}

func TestRecommendNumColors(t *testing.T) {
	tests := []struct {
		name       string
		clusters   int
		complexity int
		want       int
	}{
		{name: "floor", clusters: 1, complexity: 0, want: 6},
		{name: "even rounding", clusters: 9, complexity: 0, want: 10},
		{name: "complexity bump", clusters: 10, complexity: 80, want: 12},
		{name: "ceiling", clusters: 40, complexity: 90, want: 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recommendNumColors(tt.clusters, tt.complexity); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRecommendMinRegionSize(t *testing.T) {
	if got := recommendMinRegionSize(100, 0); got != 16 {
		t.Errorf("tiny image: got %d, want floor 16", got)
	}
	if got := recommendMinRegionSize(100_000_000, 100); got != 512 {
		t.Errorf("huge image: got %d, want ceiling 512", got)
	}
	mid := recommendMinRegionSize(2_000_000, 50)
	if mid <= 16 || mid >= 512 {
		t.Errorf("mid-size image hit a clamp: %d", mid)
	}
}
