// Package robot provides a cross-platform display backend built on robotgo.
// It is the fallback when no native backend (X11) is available.
package robot

import (
	"context"
	"fmt"
	"image"

	robotgo "github.com/go-vgo/robotgo"

	display "github.com/pixelpoint/cli/internal/display"
	geometry "github.com/pixelpoint/cli/internal/geometry"
)

// Controller implements display.Controller using robotgo
type Controller struct{}

var _ display.Controller = (*Controller)(nil)

// CaptureScreen captures a screenshot and returns an image.Image
func (c *Controller) CaptureScreen(ctx context.Context, region *geometry.Region) (image.Image, error) {
	var bitmap robotgo.CBitmap
	if region == nil {
		bitmap = robotgo.CaptureScreen()
	} else {
		bitmap = robotgo.CaptureScreen(region.X, region.Y, region.Width, region.Height)
	}
	if bitmap == 0 {
		return nil, fmt.Errorf("robotgo capture returned empty bitmap")
	}
	defer robotgo.FreeBitmap(bitmap)

	img := robotgo.ToImage(bitmap)
	if img == nil {
		return nil, fmt.Errorf("robotgo failed to convert bitmap to image")
	}
	return img, nil
}

// GetScreenDimensions returns the screen width and height
func (c *Controller) GetScreenDimensions(ctx context.Context) (width, height int, err error) {
	w, h := robotgo.GetScreenSize()
	return w, h, nil
}

// MoveMouse moves the cursor to the specified coordinates
func (c *Controller) MoveMouse(ctx context.Context, x, y int) error {
	robotgo.Move(x, y)
	return nil
}

// ClickMouse clicks the specified mouse button at the current position
func (c *Controller) ClickMouse(ctx context.Context, button display.MouseButton, clicks int) error {
	for i := 0; i < clicks; i++ {
		robotgo.Click(button.String(), false)
	}
	return nil
}

// GetCursorPosition returns the current cursor position
func (c *Controller) GetCursorPosition(ctx context.Context) (x, y int, err error) {
	x, y = robotgo.Location()
	return x, y, nil
}

// Close is a no-op; robotgo holds no persistent connection
func (c *Controller) Close() error { return nil }

// Provider implements display.Provider for the robotgo backend
type Provider struct{}

var _ display.Provider = (*Provider)(nil)

// NewProvider creates a new robotgo provider
func NewProvider() *Provider {
	return &Provider{}
}

// GetController creates a new Controller; robotgo always targets the
// default display, the display argument is ignored
func (p *Provider) GetController(display string) (display.Controller, error) {
	return &Controller{}, nil
}

// GetDisplayInfo returns information about the robotgo backend
func (p *Provider) GetDisplayInfo() display.Info {
	return display.Info{
		Name:            "robot",
		SupportsRegions: true,
		SupportsMouse:   true,
	}
}

// IsAvailable reports whether robotgo can drive the current session.
// robotgo works everywhere it compiles, so this backend registers last and
// catches whatever the native backends decline.
func (p *Provider) IsAvailable() bool {
	w, h := robotgo.GetScreenSize()
	return w > 0 && h > 0
}

func init() {
	display.Register(NewProvider(), 10)
}
