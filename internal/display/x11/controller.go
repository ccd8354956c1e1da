package x11

import (
	"context"
	"image"
	"os"

	display "github.com/pixelpoint/cli/internal/display"
	geometry "github.com/pixelpoint/cli/internal/geometry"
)

// Controller adapts Client to the display.Controller interface
type Controller struct {
	client *Client
}

var _ display.Controller = (*Controller)(nil)

// CaptureScreen captures a screenshot and returns an image.Image
func (c *Controller) CaptureScreen(ctx context.Context, region *geometry.Region) (image.Image, error) {
	if region == nil {
		return c.client.Capture(0, 0, 0, 0)
	}
	return c.client.Capture(region.X, region.Y, region.Width, region.Height)
}

// GetScreenDimensions returns the screen width and height
func (c *Controller) GetScreenDimensions(ctx context.Context) (width, height int, err error) {
	w, h := c.client.ScreenDimensions()
	return w, h, nil
}

// MoveMouse moves the cursor to the specified coordinates
func (c *Controller) MoveMouse(ctx context.Context, x, y int) error {
	return c.client.MoveMouse(x, y)
}

// ClickMouse clicks the specified mouse button
func (c *Controller) ClickMouse(ctx context.Context, button display.MouseButton, clicks int) error {
	return c.client.ClickMouse(button.String(), clicks)
}

// GetCursorPosition returns the current cursor position
func (c *Controller) GetCursorPosition(ctx context.Context) (x, y int, err error) {
	return c.client.CursorPosition()
}

// Close closes the X11 connection
func (c *Controller) Close() error {
	c.client.Close()
	return nil
}

// Provider implements the display.Provider interface for X11
type Provider struct{}

var _ display.Provider = (*Provider)(nil)

// NewProvider creates a new X11 provider
func NewProvider() *Provider {
	return &Provider{}
}

// GetController creates a new Controller for the specified display
func (p *Provider) GetController(display string) (display.Controller, error) {
	client, err := NewClient(display)
	if err != nil {
		return nil, err
	}
	return &Controller{client: client}, nil
}

// GetDisplayInfo returns information about the X11 backend
func (p *Provider) GetDisplayInfo() display.Info {
	return display.Info{
		Name:            "x11",
		SupportsRegions: true,
		SupportsMouse:   true,
	}
}

// IsAvailable returns true if X11 is available on the current system
func (p *Provider) IsAvailable() bool {
	return os.Getenv("DISPLAY") != "" && os.Getenv("WAYLAND_DISPLAY") == ""
}

func init() {
	display.Register(NewProvider(), 100)
}
