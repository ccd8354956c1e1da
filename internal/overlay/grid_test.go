package overlay

import (
	"image"
	"image/color"
	"testing"

	geometry "github.com/pixelpoint/cli/internal/geometry"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestRender_DoesNotMutateInput(t *testing.T) {
	base := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	src := solidImage(300, 300, base)

	Render(src, Options{Spacing: 50})

	for _, pt := range []image.Point{{X: 50, Y: 10}, {X: 10, Y: 50}, {X: 250, Y: 250}} {
		if got := src.RGBAAt(pt.X, pt.Y); got != base {
			t.Fatalf("input mutated at %v: %v", pt, got)
		}
	}
}

func TestRender_DrawsGridLines(t *testing.T) {
	src := solidImage(300, 200, color.RGBA{A: 255})
	out := Render(src, Options{Spacing: 50})

	// Vertical line at x=50 and horizontal at y=50 must differ from the
	// background somewhere away from labels.
	if out.RGBAAt(50, 150) == src.RGBAAt(50, 150) {
		t.Error("expected vertical grid line at x=50")
	}
	if out.RGBAAt(250, 50) == src.RGBAAt(250, 50) {
		t.Error("expected horizontal grid line at y=50")
	}
	// Between lines the image is untouched.
	if out.RGBAAt(75, 75) != src.RGBAAt(75, 75) {
		t.Error("pixel between grid lines was modified")
	}
}

func TestRender_DegenerateSpacing(t *testing.T) {
	src := solidImage(40, 40, color.RGBA{A: 255})

	// Spacing larger than the image: no interior lines, boundary labels only.
	out := Render(src, Options{Spacing: 100})

	changed := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if out.RGBAAt(x, y) != src.RGBAAt(x, y) {
				changed++
			}
		}
	}
	if changed == 0 {
		t.Error("expected boundary labels to be rendered")
	}
	// No full-height interior line should exist.
	for x := 1; x < 39; x++ {
		full := true
		for y := 0; y < 40; y++ {
			if out.RGBAAt(x, y) == src.RGBAAt(x, y) {
				full = false
				break
			}
		}
		if full {
			t.Errorf("unexpected interior grid line at x=%d", x)
		}
	}
}

func TestFormatLabel_DualUsesMapping(t *testing.T) {
	opts := Options{
		Policy: LabelsDual,
		Mapping: geometry.ZoomMapping{
			Region:    geometry.Region{X: 480, Y: 270, Width: 960, Height: 540},
			ZoomLevel: 2.0,
		},
	}
	if got := formatLabel(100, axisX, opts); got != "100/530" {
		t.Errorf("expected 100/530, got %s", got)
	}
	if got := formatLabel(100, axisY, opts); got != "100/320" {
		t.Errorf("expected 100/320, got %s", got)
	}
}

func TestFormatLabel_LocalOnly(t *testing.T) {
	if got := formatLabel(250, axisX, Options{Policy: LabelsLocal}); got != "250" {
		t.Errorf("expected 250, got %s", got)
	}
}
