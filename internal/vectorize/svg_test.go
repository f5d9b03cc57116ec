package vectorize

import (
	"strings"
	"testing"

	"paintbynum/internal/color"
)

func TestWriteSVG(t *testing.T) {
	zones, field := labelGrid([][]uint8{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	})
	outlines, err := Vectorize(zones, field, Options{Epsilon: 1.0, MinAnchorArea: 1})
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}
	palette := []color.RGBA{
		{R: 255, G: 0, B: 0, A: 255},
		{R: 0, G: 0, B: 255, A: 255},
	}

	var sb strings.Builder
	if err := WriteSVG(&sb, 3, 3, zones, outlines, palette); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	svg := sb.String()

	if !strings.HasPrefix(svg, "<svg ") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("not a well-formed svg document")
	}
	if !strings.Contains(svg, `viewBox="0 0 3 3"`) {
		t.Error("viewBox missing or wrong")
	}
	if got := strings.Count(svg, "<path "); got != 2 {
		t.Errorf("%d paths, want 2", got)
	}
	if !strings.Contains(svg, `fill="#ff0000"`) || !strings.Contains(svg, `fill="#0000ff"`) {
		t.Error("palette fills missing")
	}
	if !strings.Contains(svg, `fill-rule="evenodd"`) {
		t.Error("even-odd fill rule missing")
	}
	// Both zones are numbered: palette indices 1 and 2.
	if got := strings.Count(svg, "<text "); got != 2 {
		t.Errorf("%d labels, want 2", got)
	}
	if !strings.Contains(svg, ">1</text>") || !strings.Contains(svg, ">2</text>") {
		t.Error("1-based palette numbers missing")
	}
}

func TestPathData(t *testing.T) {
	rings := []Ring{
		{{0, 0}, {3, 0}, {3, 3}, {0, 3}},
		{{1, 1}, {1, 2}, {2, 2}, {2, 1}},
	}
	got := pathData(rings)
	want := "M0.0 0.0 L3.0 0.0 L3.0 3.0 L0.0 3.0 Z M1.0 1.0 L1.0 2.0 L2.0 2.0 L2.0 1.0 Z"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
