package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	stdcolor "image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
}

func pngBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := stdcolor.RGBA{255, 0, 0, 255}
			if x >= 4 {
				c = stdcolor.RGBA{0, 0, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	testHandler(t).ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testHandler(t).ServeHTTP(rec, httptest.NewRequest("POST", "/analyze", pngBody(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		UniqueColorsCount    int `json:"uniqueColorsCount"`
		RecommendedNumColors int `json:"recommendedNumColors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.UniqueColorsCount != 2 {
		t.Errorf("unique colors %d, want 2", resp.UniqueColorsCount)
	}
	if resp.RecommendedNumColors < 6 || resp.RecommendedNumColors > 24 {
		t.Errorf("recommendation %d out of range", resp.RecommendedNumColors)
	}
}

func TestAnalyzeRejectsGarbage(t *testing.T) {
	rec := httptest.NewRecorder()
	testHandler(t).ServeHTTP(rec, httptest.NewRequest("POST", "/analyze", bytes.NewBufferString("not an image")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if resp["kind"] != "invalid_input" {
		t.Errorf("kind %q, want invalid_input", resp["kind"])
	}
}

func TestProcessEndpoint(t *testing.T) {
	req := httptest.NewRequest("POST", "/process?numColors=2&minRegionSize=1&smartPalette=false", pngBody(t))
	rec := httptest.NewRecorder()
	testHandler(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp processResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Palette) != 2 {
		t.Errorf("palette %v, want 2 entries", resp.Palette)
	}
	if len(resp.Zones) != 2 {
		t.Errorf("%d zones, want 2", len(resp.Zones))
	}
	if resp.Metadata.Width != 8 || resp.Metadata.Height != 8 {
		t.Errorf("metadata %dx%d", resp.Metadata.Width, resp.Metadata.Height)
	}

	for _, layer := range []layerPayload{resp.Contours, resp.Numbered, resp.Colorized} {
		if layer.MimeType != "image/png" {
			t.Errorf("mime type %q", layer.MimeType)
		}
		raw, err := base64.StdEncoding.DecodeString(layer.ImageBase64)
		if err != nil {
			t.Fatalf("layer not base64: %v", err)
		}
		img, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("layer not png: %v", err)
		}
		if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
			t.Errorf("layer bounds %v", img.Bounds())
		}
	}
}

func TestProcessRejectsBadQuery(t *testing.T) {
	req := httptest.NewRequest("POST", "/process?numColors=banana", pngBody(t))
	rec := httptest.NewRecorder()
	testHandler(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestProcessRejectsBadParams(t *testing.T) {
	req := httptest.NewRequest("POST", "/process?numColors=0", pngBody(t))
	rec := httptest.NewRecorder()
	testHandler(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["kind"] != "invalid_input" {
		t.Errorf("kind %q", resp["kind"])
	}
}
