// Package capture produces zoomed, optionally enhanced region captures
// together with the coordinate mapping needed to translate detections back
// to screen-global space.
package capture

import (
	"context"
	"fmt"
	"image"
	"sync"

	xdraw "golang.org/x/image/draw"

	display "github.com/pixelpoint/cli/internal/display"
	domain "github.com/pixelpoint/cli/internal/domain"
	geometry "github.com/pixelpoint/cli/internal/geometry"
	logger "github.com/pixelpoint/cli/internal/logger"
	overlay "github.com/pixelpoint/cli/internal/overlay"
)

// Options configures a Capturer.
type Options struct {
	Enhance     bool // contrast/sharpness pass on zoomed captures
	GridSpacing int  // overlay grid spacing; 0 uses the default, negative disables the overlay
}

// Result is one capture: the (possibly enhanced, grid-overlaid) image and
// the mapping for translating its local coordinates to global space. The
// mapping's region is the clamped region actually captured, which may be
// smaller than requested.
type Result struct {
	Image   *image.RGBA
	Mapping geometry.ZoomMapping
}

// Capturer drives the external capture primitive. Captures against the
// desktop surface are single-owner; the mutex serializes them.
type Capturer struct {
	controller display.Controller
	opts       Options
	mu         sync.Mutex
}

// New creates a Capturer over the given display controller.
func New(controller display.Controller, opts Options) *Capturer {
	return &Capturer{controller: controller, opts: opts}
}

// ScreenDimensions returns the capture surface size.
func (c *Capturer) ScreenDimensions(ctx context.Context) (int, int, error) {
	w, h, err := c.controller.GetScreenDimensions(ctx)
	if err != nil {
		return 0, 0, &domain.CaptureUnavailableError{Cause: err}
	}
	return w, h, nil
}

// CaptureFull captures the whole surface at 1x. withGrid adds a local-only
// coordinate overlay.
func (c *Capturer) CaptureFull(ctx context.Context, withGrid bool) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, h, err := c.controller.GetScreenDimensions(ctx)
	if err != nil {
		return nil, &domain.CaptureUnavailableError{Cause: err}
	}

	img, err := c.controller.CaptureScreen(ctx, nil)
	if err != nil {
		return nil, &domain.CaptureUnavailableError{Cause: err}
	}

	rgba := toRGBA(img)
	if withGrid && c.opts.GridSpacing >= 0 {
		rgba = overlay.Render(rgba, overlay.Options{
			Spacing: c.gridSpacing(),
			Policy:  overlay.LabelsLocal,
		})
	}

	return &Result{Image: rgba, Mapping: geometry.Identity(w, h)}, nil
}

// CaptureZoomed captures the requested global region scaled by zoomLevel.
// Regions reaching outside the surface are clamped, never aspect-distorted;
// the returned mapping carries the clamped region so coordinate math stays
// consistent.
func (c *Capturer) CaptureZoomed(ctx context.Context, region geometry.Region, zoomLevel float64) (*Result, error) {
	if zoomLevel <= 0 {
		return nil, fmt.Errorf("capture: zoom level must be positive, got %v", zoomLevel)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	surfaceW, surfaceH, err := c.controller.GetScreenDimensions(ctx)
	if err != nil {
		return nil, &domain.CaptureUnavailableError{Cause: err}
	}

	clamped := geometry.Clamp(region, surfaceW, surfaceH)
	if clamped.Width == 0 || clamped.Height == 0 {
		return nil, fmt.Errorf("capture: region %v lies outside the %dx%d surface", region, surfaceW, surfaceH)
	}
	if clamped != region {
		logger.Debug("capture region clamped to surface", "requested", region.String(), "clamped", clamped.String())
	}

	img, err := c.controller.CaptureScreen(ctx, &clamped)
	if err != nil {
		return nil, &domain.CaptureUnavailableError{Cause: err}
	}

	mapping := geometry.ZoomMapping{Region: clamped, ZoomLevel: zoomLevel}
	scaled := resample(toRGBA(img), mapping.LocalWidth(), mapping.LocalHeight())

	if c.opts.Enhance {
		enhanced, err := enhance(scaled)
		if err != nil {
			// Enhancement is best effort; detection still runs on the
			// plain resample.
			logger.Warn("capture enhancement failed", "error", err)
		} else {
			scaled = enhanced
		}
	}

	if c.opts.GridSpacing >= 0 {
		scaled = overlay.Render(scaled, overlay.Options{
			Spacing: zoomedGridSpacing(c.gridSpacing()),
			Policy:  overlay.LabelsDual,
			Mapping: mapping,
		})
	}

	return &Result{Image: scaled, Mapping: mapping}, nil
}

// CaptureRaw captures a region without zoom, enhancement or overlay. The
// verification stage uses it to diff the click neighborhood.
func (c *Capturer) CaptureRaw(ctx context.Context, region *geometry.Region) (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	img, err := c.controller.CaptureScreen(ctx, region)
	if err != nil {
		return nil, &domain.CaptureUnavailableError{Cause: err}
	}
	return toRGBA(img), nil
}

func (c *Capturer) gridSpacing() int {
	if c.opts.GridSpacing > 0 {
		return c.opts.GridSpacing
	}
	return overlay.DefaultSpacing
}

// zoomedGridSpacing halves the grid for zoomed captures so label density
// keeps pace with magnification, with a floor to stay readable.
func zoomedGridSpacing(spacing int) int {
	if spacing/2 < 25 {
		return 25
	}
	return spacing / 2
}

// resample scales img to w x h with a Catmull-Rom kernel. Cheap nearest
// neighbor scaling introduces aliasing that defeats template and feature
// matching downstream.
func resample(img *image.RGBA, w, h int) *image.RGBA {
	if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}
