package focus

import (
	"context"
	"image"

	domain "github.com/pixelpoint/cli/internal/domain"
	geometry "github.com/pixelpoint/cli/internal/geometry"
	logger "github.com/pixelpoint/cli/internal/logger"
)

// RegionResolver is the optional language-hint collaborator: given a
// grid-overlaid capture and a target description, it names the 3x3 grid
// cell most likely to contain the target. When no resolver is configured
// the orchestrator falls back to detection over the full capture.
type RegionResolver interface {
	ResolveCoarseRegion(ctx context.Context, img *image.RGBA, description string) (geometry.RegionName, error)
}

// coarseRegion produces the region to zoom into. Preference order: the
// hint collaborator, then the top full-screen detection candidate, then
// the center cell.
func (o *Orchestrator) coarseRegion(ctx context.Context, img *image.RGBA, target domain.Target, surfaceW, surfaceH int) geometry.Region {
	if o.resolver != nil {
		name, err := o.resolver.ResolveCoarseRegion(ctx, img, target.Description)
		if err == nil && name.Valid() {
			return geometry.GridCell(name, surfaceW, surfaceH)
		}
		if err != nil {
			logger.Warn("region hint failed, falling back to full-screen detection",
				"description", target.Description, "error", err)
		}
	}

	candidates := o.detector.DetectElements(ctx, img, target)
	if len(candidates) > 0 {
		cell := geometry.CellForPoint(
			int(candidates[0].ClickPoint.X), int(candidates[0].ClickPoint.Y),
			surfaceW, surfaceH)
		return geometry.GridCell(cell, surfaceW, surfaceH)
	}

	logger.Debug("no coarse hint available, defaulting to center region",
		"description", target.Description)
	return geometry.GridCell(geometry.MiddleCenter, surfaceW, surfaceH)
}
