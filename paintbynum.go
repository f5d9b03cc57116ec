// Package paintbynum converts a raster photograph into a paint-by-numbers
// template: a palette of K representative colors, contiguous zones each
// assigned one palette color, vector outlines of every zone, and a numbered
// overlay locating each zone's palette index.
//
// The engine is pure data in, data out: the caller supplies a decoded
// bitmap and a parameter record, and receives raster layers, a zone table,
// and vector outlines. File loading/saving helpers exist for convenience
// only.
//
// Usage as a library:
//
//	img, _ := paintbynum.LoadImage("photo.png")
//	result, _ := paintbynum.Process(img, paintbynum.DefaultOptions())
//	paintbynum.SavePNG("template.png", result.Numbered)
//
// For progress reporting, consume the notification channel:
//
//	for n := range paintbynum.ProcessWithProgress(ctx, img, opts) {
//		switch {
//		case n.Err != nil:
//			// terminal failure
//		case n.Result != nil:
//			// terminal success
//		default:
//			// stage progress
//		}
//	}
package paintbynum

import (
	"context"
	"fmt"
	"image"
	"io"

	"paintbynum/internal/analyze"
	"paintbynum/internal/imaging"
	"paintbynum/internal/pipeline"
	"paintbynum/internal/vectorize"
)

// Options is the parameter record for one processing request.
type Options struct {
	// NumColors is the requested palette size K (1–256).
	NumColors int

	// MinRegionSize is the smallest zone area, in pixels, allowed in the
	// final result. Smaller zones are absorbed into a neighbor.
	MinRegionSize int

	// Smoothness (0–100) biases palette cluster merging; near zero suits
	// line-art-like sources, higher values produce broader color fields.
	Smoothness float64

	// MergeTolerance is the perceptual color-distance threshold used when
	// EnableArtisticMerge is set.
	MergeTolerance float64

	// EnableArtisticMerge absorbs small zones into the most similar
	// neighbor by color instead of simply the largest one.
	EnableArtisticMerge bool

	// SmartPalette seeds quantization from dominant-color candidates
	// instead of raw frequency.
	SmartPalette bool
}

// DefaultOptions returns Options with sensible defaults for photographs.
func DefaultOptions() Options {
	p := pipeline.DefaultParams()
	return Options{
		NumColors:           p.NumColors,
		MinRegionSize:       p.MinRegionSize,
		Smoothness:          p.Smoothness,
		MergeTolerance:      p.MergeTolerance,
		EnableArtisticMerge: p.EnableArtisticMerge,
		SmartPalette:        p.SmartPalette,
	}
}

// Zone is one flat record of the result's zone table.
type Zone struct {
	ID        int     `json:"id"`
	ColorIdx  int     `json:"colorIdx"`
	Area      int     `json:"area"`
	CentroidX float64 `json:"centroidX"`
	CentroidY float64 `json:"centroidY"`
	Hex       string  `json:"hex"`
	Percent   float64 `json:"percent"`
}

// Result is the complete processing artifact. It is immutable once produced.
type Result struct {
	Palette   []string // hex strings in quantization-rank order
	Zones     []Zone
	Labels    []int32 // row-major zone ids, len = Width*Height
	Contours  *image.RGBA
	Numbered  *image.RGBA
	Colorized *image.RGBA
	Width     int
	Height    int

	inner *pipeline.Result
}

// WriteSVG writes the vectorized template (filled outlines plus numbered
// labels) as an SVG document.
func (r *Result) WriteSVG(w io.Writer) error {
	return vectorize.WriteSVG(w, r.Width, r.Height, r.inner.Zones, r.inner.Outlines, r.inner.Palette)
}

// ColorAnalysis is the analyzer's recommendation for an image, independent
// of user-chosen settings.
type ColorAnalysis struct {
	UniqueColorsCount        int      `json:"uniqueColorsCount"`
	ComplexityScore          int      `json:"complexityScore"`
	RecommendedNumColors     int      `json:"recommendedNumColors"`
	RecommendedMinRegionSize int      `json:"recommendedMinRegionSize"`
	DominantColors           []string `json:"dominantColors"`
}

// Notification is one message on the progress channel: either a stage
// progress update, or the single terminal Result/Err pair.
type Notification struct {
	Stage    string
	Progress int
	Result   *Result
	Err      error
}

// ErrorKind names from the engine's failure taxonomy, as carried by
// KindOf.
const (
	ErrInvalidInput     = "invalid_input"
	ErrResourceExceeded = "resource_exceeded"
	ErrTimeout          = "timeout"
	ErrInternal         = "internal"
)

// KindOf classifies a processing error into the engine taxonomy.
func KindOf(err error) string {
	return pipeline.KindOf(err).String()
}

// Process runs the full pipeline synchronously without progress reporting.
func Process(img image.Image, opts Options) (*Result, error) {
	return ProcessContext(context.Background(), img, opts)
}

// ProcessContext runs the full pipeline synchronously, honoring ctx for
// cancellation on top of the engine's own size-derived timeout.
func ProcessContext(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	res, err := pipeline.Run(ctx, img, params(opts), nil)
	if err != nil {
		return nil, err
	}
	return wrap(res), nil
}

// ProcessWithProgress runs the pipeline on its own goroutine and returns a
// bounded channel of notifications: ordered stage events followed by exactly
// one terminal notification carrying either Result or Err. The channel is
// closed after the terminal notification.
func ProcessWithProgress(ctx context.Context, img image.Image, opts Options) <-chan Notification {
	out := make(chan Notification, 16)
	events := make(chan pipeline.Event, 16)

	go func() {
		defer close(out)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for ev := range events {
				out <- Notification{Stage: ev.Stage, Progress: ev.Progress}
			}
		}()

		res, err := pipeline.Run(ctx, img, params(opts), events)
		close(events)
		<-done

		if err != nil {
			out <- Notification{Err: err}
			return
		}
		out <- Notification{Result: wrap(res)}
	}()

	return out
}

// Analyze inspects a bitmap and returns recommended settings and a
// complexity score. It is independent of the processing cycle and never
// mutates shared state.
func Analyze(img image.Image) (*ColorAnalysis, error) {
	ca, err := analyze.Analyze(img)
	if err != nil {
		return nil, fmt.Errorf("analyzing image: %w", err)
	}
	return &ColorAnalysis{
		UniqueColorsCount:        ca.UniqueColors,
		ComplexityScore:          ca.ComplexityScore,
		RecommendedNumColors:     ca.RecommendedNumColors,
		RecommendedMinRegionSize: ca.RecommendedMinRegionSize,
		DominantColors:           ca.DominantColors,
	}, nil
}

// LoadImage reads an image from disk. Supports PNG, JPEG, GIF, BMP, TIFF,
// and WEBP.
func LoadImage(path string) (image.Image, error) {
	return imaging.Load(path)
}

// SavePNG writes an image to disk as PNG.
func SavePNG(path string, img image.Image) error {
	return imaging.SavePNG(path, img)
}

func params(opts Options) pipeline.Params {
	return pipeline.Params{
		NumColors:           opts.NumColors,
		MinRegionSize:       opts.MinRegionSize,
		Smoothness:          opts.Smoothness,
		MergeTolerance:      opts.MergeTolerance,
		EnableArtisticMerge: opts.EnableArtisticMerge,
		SmartPalette:        opts.SmartPalette,
	}
}

func wrap(res *pipeline.Result) *Result {
	out := &Result{
		Palette:   make([]string, len(res.Palette)),
		Zones:     make([]Zone, len(res.Zones)),
		Labels:    res.Labels.IDs,
		Contours:  res.Layers.Contours,
		Numbered:  res.Layers.Numbered,
		Colorized: res.Layers.Colorized,
		Width:     res.Width,
		Height:    res.Height,
		inner:     res,
	}
	for i, c := range res.Palette {
		out.Palette[i] = c.Hex()
	}
	for i := range res.Zones {
		z := &res.Zones[i]
		cx, cy := z.Centroid()
		out.Zones[i] = Zone{
			ID:        z.ID,
			ColorIdx:  z.ColorIdx,
			Area:      z.Area,
			CentroidX: cx,
			CentroidY: cy,
			Hex:       z.Hex,
			Percent:   z.Percent,
		}
	}
	return out
}
