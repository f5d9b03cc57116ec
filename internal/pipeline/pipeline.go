// Package pipeline sequences the engine stages — quantize, label, merge,
// vectorize, render — for one request, emitting coarse progress events and
// exactly one terminal success or failure.
//
// Each request owns all of its intermediate state; nothing is shared across
// runs, so a failed request cannot poison the next one. The pipeline does
// not yield mid-stage: cancellation and the wall-clock budget are observed
// at stage boundaries only.
package pipeline

import (
	"context"
	"errors"
	"image"
	"time"

	"paintbynum/internal/color"
	"paintbynum/internal/imaging"
	"paintbynum/internal/merge"
	"paintbynum/internal/quantize"
	"paintbynum/internal/render"
	"paintbynum/internal/vectorize"
	"paintbynum/internal/zone"
)

// Params is the caller-supplied parameter record for one processing request.
type Params struct {
	NumColors           int     // requested palette size K
	MinRegionSize       int     // smallest surviving zone area, in pixels
	Smoothness          float64 // 0–100, palette cluster merging bias
	MergeTolerance      float64 // CIELAB distance for artistic merging
	EnableArtisticMerge bool
	SmartPalette        bool
}

// DefaultParams returns settings that work for typical photographs.
func DefaultParams() Params {
	return Params{
		NumColors:           12,
		MinRegionSize:       64,
		Smoothness:          20,
		MergeTolerance:      0.12,
		EnableArtisticMerge: true,
		SmartPalette:        true,
	}
}

// Stage names, emitted in pipeline order.
const (
	StageQuantizing  = "quantizing"
	StageLabeling    = "labeling"
	StageMerging     = "merging"
	StageVectorizing = "vectorizing"
	StageRendering   = "rendering"
)

// Event is one progress notification: a named stage and its completion
// percentage. Events arrive in pipeline order, strictly before the terminal
// result.
type Event struct {
	Stage    string `json:"stage"`
	Progress int    `json:"progress"` // 0–100
}

// Result is the complete artifact of a successful run. It is immutable once
// returned.
type Result struct {
	Palette  []color.RGBA
	Zones    []zone.Zone
	Labels   *zone.Field
	Outlines []vectorize.Outline
	Layers   *render.Layers
	Width    int
	Height   int
}

// MaxPixels is the engine's image size policy. Larger inputs are rejected
// with KindResourceExceeded before any work starts.
const MaxPixels = 32 << 20

// Budget returns the wall-clock budget for an image of the given pixel
// count: a fixed base plus a per-megapixel allowance, capped at two minutes.
func Budget(pixels int) time.Duration {
	d := 10*time.Second + time.Duration(pixels/1_000_000)*5*time.Second
	if d > 2*time.Minute {
		d = 2 * time.Minute
	}
	return d
}

// Run executes the full pipeline for one image. Progress events are sent to
// events if it is non-nil; the channel is not closed. On failure the
// returned error is always a *Error carrying the taxonomy kind.
func Run(ctx context.Context, img image.Image, p Params, events chan<- Event) (*Result, error) {
	if err := validate(img, p); err != nil {
		return nil, err
	}

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	ctx, cancel := context.WithTimeout(ctx, Budget(w*h))
	defer cancel()

	emit := func(stage string, progress int) {
		if events != nil {
			events <- Event{Stage: stage, Progress: progress}
		}
	}

	emit(StageQuantizing, 0)
	buf := imaging.NewBuffer(img)
	q, err := quantize.Quantize(buf, quantize.Options{
		Colors:       p.NumColors,
		Smoothness:   p.Smoothness,
		SmartPalette: p.SmartPalette,
	})
	if err != nil {
		return nil, errInternal("quantization failed", err)
	}
	emit(StageQuantizing, 100)
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}

	emit(StageLabeling, 0)
	zones, field := zone.Label(q)
	emit(StageLabeling, 100)
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}

	emit(StageMerging, 0)
	zones = merge.Merge(zones, field, q.Palette, merge.Options{
		MinRegionSize: p.MinRegionSize,
		Tolerance:     p.MergeTolerance,
		Artistic:      p.EnableArtisticMerge,
	})
	finalizeZones(zones, q.Palette, w*h)
	emit(StageMerging, 100)
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}

	emit(StageVectorizing, 0)
	outlines, err := vectorize.Vectorize(zones, field, vectorize.DefaultOptions())
	if err != nil {
		return nil, errInternal("contour extraction failed", err)
	}
	emit(StageVectorizing, 100)
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}

	emit(StageRendering, 0)
	layers := render.Render(zones, field, q.Palette, outlines)
	emit(StageRendering, 100)

	return &Result{
		Palette:  q.Palette,
		Zones:    zones,
		Labels:   field,
		Outlines: outlines,
		Layers:   layers,
		Width:    w,
		Height:   h,
	}, nil
}

func validate(img image.Image, p Params) error {
	if img == nil {
		return errInvalidInput("nil image")
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w <= 0 || h <= 0 {
		return errInvalidInput("empty image (%dx%d)", w, h)
	}
	if w*h > MaxPixels {
		return errResourceExceeded("image has %d pixels, limit is %d", w*h, MaxPixels)
	}
	if p.NumColors < 1 || p.NumColors > quantize.MaxColors {
		return errInvalidInput("numColors %d out of range 1..%d", p.NumColors, quantize.MaxColors)
	}
	if p.MinRegionSize < 1 {
		return errInvalidInput("minRegionSize must be positive, got %d", p.MinRegionSize)
	}
	if p.Smoothness < 0 || p.Smoothness > 100 {
		return errInvalidInput("smoothness %g out of range 0..100", p.Smoothness)
	}
	if p.MergeTolerance < 0 {
		return errInvalidInput("mergeTolerance must be non-negative, got %g", p.MergeTolerance)
	}
	return nil
}

func checkpoint(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return errTimeout("processing budget exceeded", err)
	default:
		return errTimeout("processing canceled", err)
	}
}

// finalizeZones resolves the presentation fields once the palette assignment
// is final.
func finalizeZones(zones []zone.Zone, palette []color.RGBA, imageArea int) {
	for i := range zones {
		zones[i].Hex = palette[zones[i].ColorIdx].Hex()
		zones[i].Percent = float64(zones[i].Area) / float64(imageArea) * 100
	}
}
