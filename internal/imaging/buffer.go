// Package imaging handles image decoding/encoding and the flat pixel buffer
// the engine operates on. The buffer is built once per request and treated as
// read-only by every downstream stage.
package imaging

import (
	"image"
	stdcolor "image/color"
	"sync"

	"paintbynum/internal/color"
)

// Buffer is a dense width×height grid of 8-bit RGBA samples in row-major
// order. It is the engine's immutable input representation; none of the
// pipeline stages write to it.
type Buffer struct {
	Width, Height int
	Pix           []color.RGBA // index = y*Width + x
}

// NewBuffer converts an image into a flat RGBA buffer, avoiding the repeated
// interface dispatch of image.Image.At in the hot pixel loops downstream.
func NewBuffer(img image.Image) *Buffer {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	buf := &Buffer{
		Width:  w,
		Height: h,
		Pix:    make([]color.RGBA, w*h),
	}

	// Fast path for the common decoded types.
	switch src := img.(type) {
	case *image.RGBA:
		ParallelRows(h, func(sy, ey int) {
			for y := sy; y < ey; y++ {
				for x := 0; x < w; x++ {
					off := src.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
					buf.Pix[y*w+x] = color.RGBA{
						R: src.Pix[off],
						G: src.Pix[off+1],
						B: src.Pix[off+2],
						A: src.Pix[off+3],
					}
				}
			}
		})
	default:
		ParallelRows(h, func(sy, ey int) {
			for y := sy; y < ey; y++ {
				for x := 0; x < w; x++ {
					buf.Pix[y*w+x] = color.FromStdColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
				}
			}
		})
	}
	return buf
}

// At returns the sample at (x, y).
func (b *Buffer) At(x, y int) color.RGBA {
	return b.Pix[y*b.Width+x]
}

// Image exposes the buffer through the standard image.Image interface so
// libraries that consume image.Image can read it without a copy.
func (b *Buffer) Image() image.Image {
	return bufferImage{b}
}

type bufferImage struct {
	b *Buffer
}

func (bi bufferImage) ColorModel() stdcolor.Model {
	return stdcolor.RGBAModel
}

func (bi bufferImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, bi.b.Width, bi.b.Height)
}

func (bi bufferImage) At(x, y int) stdcolor.Color {
	return bi.b.At(x, y).ToStdColor()
}

// ParallelRows runs fn across row bands using multiple goroutines.
// Each worker only touches its own rows, so fn needs no locking as long as
// writes stay within the band.
func ParallelRows(h int, fn func(startY, endY int)) {
	numWorkers := 8
	rowsPerWorker := (h + numWorkers - 1) / numWorkers
	var wg sync.WaitGroup
	for worker := 0; worker < numWorkers; worker++ {
		startY := worker * rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > h {
			endY = h
		}
		if startY >= h {
			break
		}
		wg.Add(1)
		go func(sy, ey int) {
			defer wg.Done()
			fn(sy, ey)
		}(startY, endY)
	}
	wg.Wait()
}
