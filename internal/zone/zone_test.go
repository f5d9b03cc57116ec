package zone

import (
	"testing"

	"paintbynum/internal/quantize"
)

// planeOf builds a quantizer result directly from an index grid, bypassing
// actual quantization.
func planeOf(rows [][]uint8) *quantize.Result {
	h := len(rows)
	w := len(rows[0])
	res := &quantize.Result{Width: w, Height: h, Plane: make([]uint8, 0, w*h)}
	for _, row := range rows {
		res.Plane = append(res.Plane, row...)
	}
	return res
}

func TestLabelSolid(t *testing.T) {
	zones, field := Label(planeOf([][]uint8{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}))
	if len(zones) != 1 {
		t.Fatalf("got %d zones, want 1", len(zones))
	}
	z := zones[0]
	if z.Area != 16 {
		t.Errorf("area %d, want 16", z.Area)
	}
	cx, cy := z.Centroid()
	if cx != 1.5 || cy != 1.5 {
		t.Errorf("centroid (%g,%g), want (1.5,1.5)", cx, cy)
	}
	for i, id := range field.IDs {
		if id != 0 {
			t.Fatalf("pixel %d labeled %d", i, id)
		}
	}
}

func TestLabelFourConnectivity(t *testing.T) {
	// Diagonal same-index pixels must NOT join: the checkerboard yields four
	// single-pixel zones, not two.
	zones, _ := Label(planeOf([][]uint8{
		{0, 1},
		{1, 0},
	}))
	if len(zones) != 4 {
		t.Fatalf("got %d zones, want 4", len(zones))
	}
	for i, z := range zones {
		if z.Area != 1 {
			t.Errorf("zone %d area %d, want 1", i, z.Area)
		}
	}
}

func TestLabelAreasPartitionImage(t *testing.T) {
	q := planeOf([][]uint8{
		{0, 0, 1, 1, 2},
		{0, 1, 1, 2, 2},
		{3, 3, 1, 2, 0},
	})
	zones, field := Label(q)

	total := 0
	for _, z := range zones {
		total += z.Area
		if z.Area != len(z.Pixels) {
			t.Errorf("zone %d: area %d but %d pixels", z.ID, z.Area, len(z.Pixels))
		}
	}
	if total != 15 {
		t.Errorf("areas sum to %d, want 15", total)
	}

	// Every pixel assigned, and to a zone of its own palette index.
	for p, id := range field.IDs {
		if id == Unassigned {
			t.Fatalf("pixel %d unassigned", p)
		}
		if zones[id].ColorIdx != int(q.Plane[p]) {
			t.Errorf("pixel %d: zone color %d, plane %d", p, zones[id].ColorIdx, q.Plane[p])
		}
	}
}

func TestLabelDeterministicIDs(t *testing.T) {
	// Zones are numbered in raster-scan order of their first pixel.
	zones, _ := Label(planeOf([][]uint8{
		{5, 7},
		{7, 5},
	}))
	wantColors := []int{5, 7, 7, 5}
	for i, z := range zones {
		if z.ID != i {
			t.Errorf("zone %d has ID %d", i, z.ID)
		}
		if z.ColorIdx != wantColors[i] {
			t.Errorf("zone %d color %d, want %d", i, z.ColorIdx, wantColors[i])
		}
	}
}

func TestRep(t *testing.T) {
	zones, _ := Label(planeOf([][]uint8{
		{0, 1},
		{1, 1},
	}))
	x, y := zones[1].Rep(2)
	if x != 1 || y != 0 {
		t.Errorf("rep (%d,%d), want (1,0)", x, y)
	}
}

func TestAdjacency(t *testing.T) {
	// Three vertical stripes: 0|1|2. Stripe 1 touches both, 0 and 2 only 1.
	_, field := Label(planeOf([][]uint8{
		{0, 1, 2},
		{0, 1, 2},
	}))
	adj := Adjacency(field, 3)

	has := func(a, b int32) bool {
		_, ok := adj[a][b]
		return ok
	}
	if !has(0, 1) || !has(1, 0) {
		t.Error("stripes 0 and 1 not adjacent")
	}
	if !has(1, 2) || !has(2, 1) {
		t.Error("stripes 1 and 2 not adjacent")
	}
	if has(0, 2) {
		t.Error("stripes 0 and 2 wrongly adjacent")
	}
	if has(1, 1) {
		t.Error("self adjacency recorded")
	}
}
