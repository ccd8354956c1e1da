// Package overlay draws coordinate reference grids onto captured images so
// a pixel-only consumer can read positions straight off the picture.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	geometry "github.com/pixelpoint/cli/internal/geometry"
)

// LabelPolicy selects what the coordinate labels show.
type LabelPolicy int

const (
	// LabelsLocal prints only local pixel values (full-screen overlays).
	LabelsLocal LabelPolicy = iota
	// LabelsDual prints "local/global" pairs so a consumer reading a
	// zoomed capture can report coordinates in either space without
	// further computation.
	LabelsDual
)

// Options controls grid rendering.
type Options struct {
	Spacing int         // grid line spacing in pixels
	Policy  LabelPolicy // label content
	Mapping geometry.ZoomMapping

	LineColor  color.Color
	LabelColor color.Color
}

// DefaultSpacing is the spacing used when Options.Spacing is zero.
const DefaultSpacing = 100

var (
	defaultLineColor  = color.RGBA{R: 255, G: 64, B: 64, A: 180}
	defaultLabelColor = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// Render draws the grid onto a copy of src and returns the copy. The input
// image is never mutated. Images smaller than the spacing get zero interior
// lines but still carry boundary labels; that is a defined degenerate case,
// not an error.
func Render(src image.Image, opts Options) *image.RGBA {
	if opts.Spacing <= 0 {
		opts.Spacing = DefaultSpacing
	}
	if opts.LineColor == nil {
		opts.LineColor = defaultLineColor
	}
	if opts.LabelColor == nil {
		opts.LabelColor = defaultLabelColor
	}
	if opts.Mapping.ZoomLevel == 0 {
		b := src.Bounds()
		opts.Mapping = geometry.Identity(b.Dx(), b.Dy())
	}

	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)

	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()

	for x := opts.Spacing; x < w; x += opts.Spacing {
		drawVerticalLine(dst, x, opts.LineColor)
		drawLabel(dst, x+2, 12, formatLabel(float64(x), axisX, opts), opts.LabelColor)
	}
	for y := opts.Spacing; y < h; y += opts.Spacing {
		drawHorizontalLine(dst, y, opts.LineColor)
		drawLabel(dst, 2, y-3, formatLabel(float64(y), axisY, opts), opts.LabelColor)
	}

	// Boundary labels are always rendered, even when the spacing exceeds
	// the image and no interior lines exist.
	drawLabel(dst, 2, 12, originLabel(opts), opts.LabelColor)
	drawLabel(dst, 2, h-4, formatLabel(float64(h), axisY, opts), opts.LabelColor)
	rightLabel := formatLabel(float64(w), axisX, opts)
	drawLabel(dst, w-7*len(rightLabel)-2, 12, rightLabel, opts.LabelColor)

	return dst
}

type axis int

const (
	axisX axis = iota
	axisY
)

func originLabel(opts Options) string {
	if opts.Policy == LabelsDual {
		return fmt.Sprintf("0/%d,%d", opts.Mapping.Region.X, opts.Mapping.Region.Y)
	}
	return "0,0"
}

// formatLabel renders one coordinate value under the label policy. Dual
// labels append the global-space value computed through the zoom mapping.
func formatLabel(local float64, a axis, opts Options) string {
	if opts.Policy != LabelsDual {
		return fmt.Sprintf("%d", int(local))
	}
	var global geometry.Point
	if a == axisX {
		global = geometry.LocalToGlobal(geometry.Point{X: local}, opts.Mapping)
		return fmt.Sprintf("%d/%d", int(local), int(global.X+0.5))
	}
	global = geometry.LocalToGlobal(geometry.Point{Y: local}, opts.Mapping)
	return fmt.Sprintf("%d/%d", int(local), int(global.Y+0.5))
}

func drawVerticalLine(img *image.RGBA, x int, c color.Color) {
	for y := 0; y < img.Bounds().Dy(); y++ {
		img.Set(x, y, c)
	}
}

func drawHorizontalLine(img *image.RGBA, y int, c color.Color) {
	for x := 0; x < img.Bounds().Dx(); x++ {
		img.Set(x, y, c)
	}
}

func drawLabel(img *image.RGBA, x, y int, text string, c color.Color) {
	if x < 0 {
		x = 0
	}
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
