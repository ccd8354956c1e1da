package detect

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	domain "github.com/pixelpoint/cli/internal/domain"
	geometry "github.com/pixelpoint/cli/internal/geometry"
)

// templateScales are the relative scales tried when correlating the
// reference patch against the capture. DPI scaling between the session that
// produced the patch and the current screen shifts the apparent size.
var templateScales = []float64{0.75, 0.9, 1.0, 1.1, 1.25}

// minTemplateScore is the correlation floor below which a peak is noise.
const minTemplateScore = 0.45

// TemplateStrategy cross-correlates a reference image fragment against the
// capture. Candidate confidence is the normalized correlation peak.
type TemplateStrategy struct{}

// NewTemplateStrategy creates a template matching strategy.
func NewTemplateStrategy() *TemplateStrategy { return &TemplateStrategy{} }

func (s *TemplateStrategy) Kind() Kind { return KindTemplate }

func (s *TemplateStrategy) Applicable(target domain.Target) bool {
	return target.HasReference()
}

func (s *TemplateStrategy) Detect(ctx context.Context, img *image.RGBA, target domain.Target) ([]domain.UIElementCandidate, error) {
	if !s.Applicable(target) {
		return nil, nil
	}

	scene, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("template: convert scene: %w", err)
	}
	defer scene.Close()

	tmpl, err := gocv.IMDecode(target.ReferencePatch, gocv.IMReadColor)
	if err != nil || tmpl.Empty() {
		return nil, fmt.Errorf("template: decode reference patch: %w", err)
	}
	defer tmpl.Close()

	var best struct {
		score float64
		rect  geometry.Region
		found bool
	}

	for _, scale := range templateScales {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tw := int(float64(tmpl.Cols())*scale + 0.5)
		th := int(float64(tmpl.Rows())*scale + 0.5)
		if tw < 4 || th < 4 || tw > scene.Cols() || th > scene.Rows() {
			continue
		}

		scaled := gocv.NewMat()
		gocv.Resize(tmpl, &scaled, image.Pt(tw, th), 0, 0, gocv.InterpolationLinear)

		result := gocv.NewMat()
		mask := gocv.NewMat()
		gocv.MatchTemplate(scene, scaled, &result, gocv.TmCcoeffNormed, mask)
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)

		mask.Close()
		result.Close()
		scaled.Close()

		if float64(maxVal) > best.score {
			best.score = float64(maxVal)
			best.rect = geometry.Region{X: maxLoc.X, Y: maxLoc.Y, Width: tw, Height: th}
			best.found = true
		}
	}

	if !best.found || best.score < minTemplateScore {
		return nil, nil
	}

	return []domain.UIElementCandidate{{
		Type:        target.Type,
		Bounds:      best.rect,
		ClickPoint:  best.rect.Center(),
		Confidence:  clamp01(best.score),
		Source:      domain.MethodTemplate,
		Description: target.Description,
	}}, nil
}
