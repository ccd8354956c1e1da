// Package geometry provides the coordinate math shared by the capture and
// targeting pipeline: screen-global pixel space, region-local zoomed space,
// and the mappings between them.
package geometry

import "fmt"

// Point is a coordinate in either global or local pixel space. All
// intermediate math stays in floating point; rounding happens only at the
// final click boundary via Round.
type Point struct {
	X float64
	Y float64
}

// Round returns the nearest integer pixel for a resolved coordinate.
func (p Point) Round() (int, int) {
	return int(p.X + 0.5), int(p.Y + 0.5)
}

// Region is an axis-aligned rectangle in screen-global pixel space.
type Region struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Valid reports whether the region has positive extent and a non-negative
// origin.
func (r Region) Valid() bool {
	return r.Width > 0 && r.Height > 0 && r.X >= 0 && r.Y >= 0
}

// Area returns the region area in pixels.
func (r Region) Area() int {
	return r.Width * r.Height
}

// Center returns the region's center point.
func (r Region) Center() Point {
	return Point{
		X: float64(r.X) + float64(r.Width)/2,
		Y: float64(r.Y) + float64(r.Height)/2,
	}
}

// Contains reports whether the point lies inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Intersect returns the overlapping region of a and b. The zero Region is
// returned when they do not overlap.
func Intersect(a, b Region) Region {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return Region{}
	}
	return Region{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// OverlapRatio returns the intersection area of a and b divided by the area
// of the smaller rectangle. Two detection candidates referring to the same
// physical element overlap by at least half of the smaller box.
func OverlapRatio(a, b Region) float64 {
	if a.Area() == 0 || b.Area() == 0 {
		return 0
	}
	inter := Intersect(a, b).Area()
	smaller := min(a.Area(), b.Area())
	return float64(inter) / float64(smaller)
}

// Clamp restricts the region to the surface width×height. The clamped
// region is reported back to the caller so downstream coordinate math stays
// consistent with what was actually captured.
func Clamp(r Region, surfaceWidth, surfaceHeight int) Region {
	if r.X < 0 {
		r.Width += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.Height += r.Y
		r.Y = 0
	}
	if r.X+r.Width > surfaceWidth {
		r.Width = surfaceWidth - r.X
	}
	if r.Y+r.Height > surfaceHeight {
		r.Height = surfaceHeight - r.Y
	}
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}
