package display

import (
	"context"
	"image"

	geometry "github.com/pixelpoint/cli/internal/geometry"
)

// Controller abstracts the display server-specific capture and input
// primitives the pipeline consumes (X11, robotgo fallback). Capture is
// inherently single-owner: callers serialize capture requests.
type Controller interface {
	// CaptureScreen captures the whole surface (region == nil) or the
	// given global region.
	CaptureScreen(ctx context.Context, region *geometry.Region) (image.Image, error)

	// GetScreenDimensions returns the capture surface size in pixels.
	GetScreenDimensions(ctx context.Context) (width, height int, err error)

	// MoveMouse warps the cursor to global pixel coordinates.
	MoveMouse(ctx context.Context, x, y int) error

	// ClickMouse clicks at the current cursor position.
	ClickMouse(ctx context.Context, button MouseButton, clicks int) error

	// GetCursorPosition returns the current global cursor position.
	GetCursorPosition(ctx context.Context) (x, y int, err error)

	// Close releases the display connection.
	Close() error
}

// MouseButton represents a mouse button
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonMiddle
	MouseButtonRight
)

// String returns the string representation of a mouse button
func (b MouseButton) String() string {
	switch b {
	case MouseButtonLeft:
		return "left"
	case MouseButtonMiddle:
		return "middle"
	case MouseButtonRight:
		return "right"
	default:
		return "unknown"
	}
}

// Provider creates Controller instances for a specific display server
type Provider interface {
	// GetController creates a new Controller for the specified display
	GetController(display string) (Controller, error)

	// GetDisplayInfo returns information about the display server
	GetDisplayInfo() Info

	// IsAvailable returns true if this display server is usable on the
	// current system
	IsAvailable() bool
}

// Info contains metadata about a display server backend
type Info struct {
	Name            string // "x11", "robot"
	SupportsRegions bool
	SupportsMouse   bool
}
