package detect

import (
	"context"
	"image"

	domain "github.com/pixelpoint/cli/internal/domain"
)

// Detector is the synchronous detection surface exposed to callers: one
// ensemble pass plus aggregation, returning the full ranked candidate list.
type Detector struct {
	ensemble   *Ensemble
	aggregator *Aggregator
}

// NewDetector wires an ensemble and aggregator together.
func NewDetector(ensemble *Ensemble) *Detector {
	return &Detector{ensemble: ensemble, aggregator: NewAggregator()}
}

// DetectElements runs all applicable strategies over the image and returns
// the merged, ranked candidates. The caller decides how many to act on.
func (d *Detector) DetectElements(ctx context.Context, img *image.RGBA, target domain.Target) []domain.UIElementCandidate {
	results := d.ensemble.Run(ctx, img, target)
	return d.aggregator.Merge(results)
}

// DetectResults runs the ensemble and returns the raw per-strategy results
// alongside the merged ranking. The orchestrator uses the per-strategy view
// for its attempt history.
func (d *Detector) DetectResults(ctx context.Context, img *image.RGBA, target domain.Target) ([]domain.DetectionResult, []domain.UIElementCandidate) {
	results := d.ensemble.Run(ctx, img, target)
	return results, d.aggregator.Merge(results)
}
