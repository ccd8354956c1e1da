package focus

import (
	"context"

	"github.com/corona10/goimagehash"

	geometry "github.com/pixelpoint/cli/internal/geometry"
	logger "github.com/pixelpoint/cli/internal/logger"
)

// DefaultVerifyDistance is the minimum perceptual-hash bit distance between
// the pre- and post-click neighborhoods that counts as a visual change.
const DefaultVerifyDistance = 5

// verifyROI is the neighborhood the verifier diffs: the candidate bounds
// grown 3x around the click point, clamped to the surface. Hashing only
// the neighborhood keeps unrelated screen motion (clock, cursor blink
// elsewhere) from faking success.
func verifyROI(bounds geometry.Region, clickX, clickY, surfaceW, surfaceH int) geometry.Region {
	w := bounds.Width * 3
	h := bounds.Height * 3
	if w < 48 {
		w = 48
	}
	if h < 48 {
		h = 48
	}
	roi := geometry.Region{X: clickX - w/2, Y: clickY - h/2, Width: w, Height: h}
	return geometry.Clamp(roi, surfaceW, surfaceH)
}

// snapshotHash captures the region and returns its perceptual hash.
func (o *Orchestrator) snapshotHash(ctx context.Context, roi geometry.Region) (*goimagehash.ImageHash, error) {
	img, err := o.capturer.CaptureRaw(ctx, &roi)
	if err != nil {
		return nil, err
	}
	return goimagehash.PerceptionHash(img)
}

// changed reports whether the post-click capture of roi differs from the
// pre-click hash by at least the configured distance.
func (o *Orchestrator) changed(ctx context.Context, roi geometry.Region, before *goimagehash.ImageHash) (bool, error) {
	after, err := o.snapshotHash(ctx, roi)
	if err != nil {
		return false, err
	}
	distance, err := before.Distance(after)
	if err != nil {
		return false, err
	}
	logger.Debug("verify diff computed", "roi", roi.String(), "distance", distance, "threshold", o.opts.VerifyDistance)
	return distance >= o.opts.VerifyDistance, nil
}
