package geometry

import (
	"math"
	"testing"
)

func TestLocalToGlobal_ZoomedRegion(t *testing.T) {
	m := ZoomMapping{
		Region:    Region{X: 480, Y: 270, Width: 960, Height: 540},
		ZoomLevel: 2.0,
	}

	global := LocalToGlobal(Point{X: 100, Y: 100}, m)
	if gx, gy := global.Round(); gx != 530 || gy != 320 {
		t.Errorf("expected global (530,320), got (%d,%d)", gx, gy)
	}

	local := GlobalToLocal(Point{X: 530, Y: 320}, m)
	if lx, ly := local.Round(); lx != 100 || ly != 100 {
		t.Errorf("expected local (100,100), got (%d,%d)", lx, ly)
	}
}

func TestRoundTrip_WithinOnePixel(t *testing.T) {
	mappings := []ZoomMapping{
		{Region: Region{X: 0, Y: 0, Width: 1920, Height: 1080}, ZoomLevel: 1.0},
		{Region: Region{X: 480, Y: 270, Width: 960, Height: 540}, ZoomLevel: 2.0},
		{Region: Region{X: 13, Y: 7, Width: 333, Height: 211}, ZoomLevel: 3.5},
		{Region: Region{X: 100, Y: 900, Width: 640, Height: 120}, ZoomLevel: 0.75},
	}

	for _, m := range mappings {
		for _, p := range []Point{
			{X: 0, Y: 0},
			{X: 1, Y: 1},
			{X: 100.5, Y: 33.25},
			{X: float64(m.LocalWidth() - 1), Y: float64(m.LocalHeight() - 1)},
		} {
			back := GlobalToLocal(LocalToGlobal(p, m), m)
			if math.Abs(back.X-p.X) > 1 || math.Abs(back.Y-p.Y) > 1 {
				t.Errorf("mapping %+v: round trip of %+v returned %+v", m, p, back)
			}
		}
	}
}

func TestTransform_PanicsOnInvalidZoom(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zoom level <= 0")
		}
	}()
	LocalToGlobal(Point{X: 1, Y: 1}, ZoomMapping{Region: Region{Width: 10, Height: 10}})
}

func TestLocalRegionToGlobal(t *testing.T) {
	m := ZoomMapping{Region: Region{X: 200, Y: 100, Width: 400, Height: 300}, ZoomLevel: 2.0}
	got := LocalRegionToGlobal(Region{X: 40, Y: 60, Width: 100, Height: 80}, m)
	want := Region{X: 220, Y: 130, Width: 50, Height: 40}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Region
		want Region
	}{
		{"inside", Region{X: 10, Y: 10, Width: 100, Height: 100}, Region{X: 10, Y: 10, Width: 100, Height: 100}},
		{"overflow right", Region{X: 1900, Y: 0, Width: 100, Height: 100}, Region{X: 1900, Y: 0, Width: 20, Height: 100}},
		{"negative origin", Region{X: -50, Y: -20, Width: 200, Height: 100}, Region{X: 0, Y: 0, Width: 150, Height: 80}},
		{"fully outside", Region{X: 2000, Y: 1200, Width: 100, Height: 100}, Region{X: 2000, Y: 1200, Width: 0, Height: 0}},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in, 1920, 1080); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestOverlapRatio(t *testing.T) {
	a := Region{X: 0, Y: 0, Width: 100, Height: 100}
	b := Region{X: 40, Y: 0, Width: 100, Height: 100}
	if got := OverlapRatio(a, b); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("expected 0.6, got %v", got)
	}
	c := Region{X: 500, Y: 500, Width: 10, Height: 10}
	if got := OverlapRatio(a, c); got != 0 {
		t.Errorf("expected 0 for disjoint regions, got %v", got)
	}
}

func TestGridCell_CoversSurface(t *testing.T) {
	covered := 0
	for name := range gridIndex {
		r := GridCell(name, 1921, 1081)
		if !r.Valid() {
			t.Errorf("cell %s invalid: %v", name, r)
		}
		covered += r.Area()
	}
	if covered != 1921*1081 {
		t.Errorf("grid cells cover %d pixels, surface has %d", covered, 1921*1081)
	}
}

func TestGridCell_UnknownNameCenters(t *testing.T) {
	got := GridCell("somewhere", 900, 900)
	want := GridCell(MiddleCenter, 900, 900)
	if got != want {
		t.Errorf("unknown name should resolve to center cell, got %v", got)
	}
}
