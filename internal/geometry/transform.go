package geometry

import "fmt"

// ZoomMapping defines the bijection between screen-global coordinates and
// the local coordinates of a capture taken from Region scaled by ZoomLevel.
type ZoomMapping struct {
	Region    Region
	ZoomLevel float64
}

// Identity returns the mapping for an unzoomed full-surface capture.
func Identity(width, height int) ZoomMapping {
	return ZoomMapping{
		Region:    Region{X: 0, Y: 0, Width: width, Height: height},
		ZoomLevel: 1,
	}
}

// LocalWidth returns the pixel width of the capture this mapping describes.
func (m ZoomMapping) LocalWidth() int {
	return int(float64(m.Region.Width)*m.ZoomLevel + 0.5)
}

// LocalHeight returns the pixel height of the capture this mapping describes.
func (m ZoomMapping) LocalHeight() int {
	return int(float64(m.Region.Height)*m.ZoomLevel + 0.5)
}

func (m ZoomMapping) mustBeValid() {
	if m.ZoomLevel <= 0 {
		// A non-positive zoom level is a programming error, not a
		// recoverable condition.
		panic(fmt.Sprintf("geometry: invalid zoom level %v", m.ZoomLevel))
	}
}

// LocalToGlobal maps a point in the capture's local pixel space back to
// screen-global space: global = origin + local/zoom.
func LocalToGlobal(local Point, m ZoomMapping) Point {
	m.mustBeValid()
	return Point{
		X: float64(m.Region.X) + local.X/m.ZoomLevel,
		Y: float64(m.Region.Y) + local.Y/m.ZoomLevel,
	}
}

// GlobalToLocal maps a screen-global point into the capture's local pixel
// space: local = (global - origin) * zoom.
func GlobalToLocal(global Point, m ZoomMapping) Point {
	m.mustBeValid()
	return Point{
		X: (global.X - float64(m.Region.X)) * m.ZoomLevel,
		Y: (global.Y - float64(m.Region.Y)) * m.ZoomLevel,
	}
}

// LocalRegionToGlobal maps a rectangle expressed in local capture pixels to
// its screen-global equivalent, rounding to the enclosing pixel grid.
func LocalRegionToGlobal(local Region, m ZoomMapping) Region {
	m.mustBeValid()
	origin := LocalToGlobal(Point{X: float64(local.X), Y: float64(local.Y)}, m)
	return Region{
		X:      int(origin.X + 0.5),
		Y:      int(origin.Y + 0.5),
		Width:  int(float64(local.Width)/m.ZoomLevel + 0.5),
		Height: int(float64(local.Height)/m.ZoomLevel + 0.5),
	}
}
