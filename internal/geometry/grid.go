package geometry

// RegionName identifies one cell of the 3x3 named grid used by the coarse
// region hint collaborator ("top-left" ... "bottom-right").
type RegionName string

const (
	TopLeft      RegionName = "top-left"
	TopCenter    RegionName = "top-center"
	TopRight     RegionName = "top-right"
	MiddleLeft   RegionName = "middle-left"
	MiddleCenter RegionName = "middle-center"
	MiddleRight  RegionName = "middle-right"
	BottomLeft   RegionName = "bottom-left"
	BottomCenter RegionName = "bottom-center"
	BottomRight  RegionName = "bottom-right"
)

// Valid reports whether the name is one of the nine grid cells.
func (n RegionName) Valid() bool {
	_, ok := gridIndex[n]
	return ok
}

var gridIndex = map[RegionName][2]int{
	TopLeft: {0, 0}, TopCenter: {1, 0}, TopRight: {2, 0},
	MiddleLeft: {0, 1}, MiddleCenter: {1, 1}, MiddleRight: {2, 1},
	BottomLeft: {0, 2}, BottomCenter: {1, 2}, BottomRight: {2, 2},
}

// GridCell maps a named grid cell onto a concrete region of a
// surfaceWidth x surfaceHeight capture surface. Unknown names resolve to the
// center cell so a garbled hint still narrows the search.
func GridCell(name RegionName, surfaceWidth, surfaceHeight int) Region {
	idx, ok := gridIndex[name]
	if !ok {
		idx = gridIndex[MiddleCenter]
	}
	cw := surfaceWidth / 3
	ch := surfaceHeight / 3
	r := Region{X: idx[0] * cw, Y: idx[1] * ch, Width: cw, Height: ch}
	// Last row/column absorbs the division remainder.
	if idx[0] == 2 {
		r.Width = surfaceWidth - r.X
	}
	if idx[1] == 2 {
		r.Height = surfaceHeight - r.Y
	}
	return r
}

// CellForPoint returns the named grid cell containing a global point.
func CellForPoint(x, y, surfaceWidth, surfaceHeight int) RegionName {
	col := min(x*3/max(surfaceWidth, 1), 2)
	row := min(y*3/max(surfaceHeight, 1), 2)
	for name, idx := range gridIndex {
		if idx[0] == col && idx[1] == row {
			return name
		}
	}
	return MiddleCenter
}
