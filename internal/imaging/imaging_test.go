package imaging

import (
	"image"
	stdcolor "image/color"
	"path/filepath"
	"sync/atomic"
	"testing"

	"paintbynum/internal/color"
)

func TestNewBuffer(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(0, 0, stdcolor.RGBA{255, 0, 0, 255})
	img.SetRGBA(2, 1, stdcolor.RGBA{0, 0, 255, 255})

	buf := NewBuffer(img)
	if buf.Width != 3 || buf.Height != 2 {
		t.Fatalf("got %dx%d, want 3x2", buf.Width, buf.Height)
	}
	if got := buf.At(0, 0); got != (color.RGBA{R: 255, G: 0, B: 0, A: 255}) {
		t.Errorf("pixel (0,0): got %v", got)
	}
	if got := buf.At(2, 1); got != (color.RGBA{R: 0, G: 0, B: 255, A: 255}) {
		t.Errorf("pixel (2,1): got %v", got)
	}
	if got := buf.At(1, 0); got != (color.RGBA{R: 0, G: 0, B: 0, A: 0}) {
		t.Errorf("untouched pixel: got %v", got)
	}
}

func TestNewBufferOffsetBounds(t *testing.T) {
	// Decoders can return images whose bounds do not start at (0,0).
	img := image.NewRGBA(image.Rect(5, 7, 7, 9))
	img.SetRGBA(5, 7, stdcolor.RGBA{10, 20, 30, 255})

	buf := NewBuffer(img)
	if buf.Width != 2 || buf.Height != 2 {
		t.Fatalf("got %dx%d, want 2x2", buf.Width, buf.Height)
	}
	if got := buf.At(0, 0); got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("offset origin pixel: got %v", got)
	}
}

func TestNewBufferGenericPath(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(1, 1, stdcolor.NRGBA{100, 150, 200, 255})

	buf := NewBuffer(img)
	if got := buf.At(1, 1); got != (color.RGBA{R: 100, G: 150, B: 200, A: 255}) {
		t.Errorf("got %v", got)
	}
}

func TestBufferImage(t *testing.T) {
	buf := &Buffer{Width: 2, Height: 1, Pix: []color.RGBA{
		{R: 1, G: 2, B: 3, A: 255}, {R: 4, G: 5, B: 6, A: 255},
	}}
	img := buf.Image()
	if img.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Fatalf("bounds %v", img.Bounds())
	}
	if got := color.FromStdColor(img.At(1, 0)); got != (color.RGBA{R: 4, G: 5, B: 6, A: 255}) {
		t.Errorf("got %v", got)
	}
}

func TestParallelRowsCoversEveryRowOnce(t *testing.T) {
	for _, h := range []int{0, 1, 7, 8, 9, 100} {
		visits := make([]int32, h)
		ParallelRows(h, func(sy, ey int) {
			for y := sy; y < ey; y++ {
				atomic.AddInt32(&visits[y], 1)
			}
		})
		for y, n := range visits {
			if n != 1 {
				t.Errorf("h=%d: row %d visited %d times", h, y, n)
			}
		}
	}
}

func TestSaveAndLoadPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(3, 2, stdcolor.RGBA{200, 100, 50, 255})

	path := filepath.Join(t.TempDir(), "out.png")
	if err := SavePNG(path, img); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Bounds().Dx() != 4 || loaded.Bounds().Dy() != 4 {
		t.Fatalf("loaded bounds %v", loaded.Bounds())
	}
	got := color.FromStdColor(loaded.At(3, 2))
	if got != (color.RGBA{R: 200, G: 100, B: 50, A: 255}) {
		t.Errorf("pixel survived as %v", got)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "file.xyz")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestExpandPath(t *testing.T) {
	if got := ExpandPath(""); got != "" {
		t.Errorf("empty path: got %q", got)
	}
	if got := ExpandPath("relative.png"); !filepath.IsAbs(got) {
		t.Errorf("relative path not resolved: %q", got)
	}
}
