package detect

import (
	"context"
	"fmt"
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"

	domain "github.com/pixelpoint/cli/internal/domain"
	geometry "github.com/pixelpoint/cli/internal/geometry"
)

const (
	// loweRatio is the ratio-test threshold separating distinctive
	// matches from ambiguous ones.
	loweRatio = 0.75

	// minFeatureMatches is the minimum surviving match count before a
	// localization is attempted.
	minFeatureMatches = 8

	// inlierRadius is the pixel tolerance around the consensus
	// displacement when counting inliers.
	inlierRadius = 5.0
)

// FeatureStrategy matches sparse ORB keypoints between a reference patch
// and the capture. Confidence scales with matched-keypoint count and match
// quality, penalized by the outlier ratio after a robust translation fit.
type FeatureStrategy struct{}

// NewFeatureStrategy creates a feature matching strategy.
func NewFeatureStrategy() *FeatureStrategy { return &FeatureStrategy{} }

func (s *FeatureStrategy) Kind() Kind { return KindFeature }

func (s *FeatureStrategy) Applicable(target domain.Target) bool {
	return target.HasReference()
}

func (s *FeatureStrategy) Detect(ctx context.Context, img *image.RGBA, target domain.Target) ([]domain.UIElementCandidate, error) {
	if !s.Applicable(target) {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scene, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("feature: convert scene: %w", err)
	}
	defer scene.Close()

	patch, err := gocv.IMDecode(target.ReferencePatch, gocv.IMReadColor)
	if err != nil || patch.Empty() {
		return nil, fmt.Errorf("feature: decode reference patch: %w", err)
	}
	defer patch.Close()

	sceneGray := gocv.NewMat()
	defer sceneGray.Close()
	gocv.CvtColor(scene, &sceneGray, gocv.ColorBGRToGray)

	patchGray := gocv.NewMat()
	defer patchGray.Close()
	gocv.CvtColor(patch, &patchGray, gocv.ColorBGRToGray)

	orb := gocv.NewORB()
	defer orb.Close()

	noMask := gocv.NewMat()
	defer noMask.Close()

	patchKps, patchDesc := orb.DetectAndCompute(patchGray, noMask)
	defer patchDesc.Close()
	sceneKps, sceneDesc := orb.DetectAndCompute(sceneGray, noMask)
	defer sceneDesc.Close()

	if len(patchKps) == 0 || len(sceneKps) == 0 {
		return nil, nil
	}

	matcher := gocv.NewBFMatcherWithParams(gocv.NormHamming, false)
	defer matcher.Close()

	knn := matcher.KnnMatch(patchDesc, sceneDesc, 2)

	type pair struct{ from, to geometry.Point }
	var good []pair
	for _, m := range knn {
		if len(m) < 2 {
			continue
		}
		if m[0].Distance < loweRatio*m[1].Distance {
			p := patchKps[m[0].QueryIdx]
			q := sceneKps[m[0].TrainIdx]
			good = append(good, pair{
				from: geometry.Point{X: p.X, Y: p.Y},
				to:   geometry.Point{X: q.X, Y: q.Y},
			})
		}
	}

	if len(good) < minFeatureMatches {
		return nil, nil
	}

	// Robust translation fit: the consensus displacement is the median of
	// the match displacement vectors; matches outside inlierRadius of it
	// are outliers.
	dxs := make([]float64, len(good))
	dys := make([]float64, len(good))
	for i, g := range good {
		dxs[i] = g.to.X - g.from.X
		dys[i] = g.to.Y - g.from.Y
	}
	dx := median(dxs)
	dy := median(dys)

	var inliers []pair
	for _, g := range good {
		rx := (g.to.X - g.from.X) - dx
		ry := (g.to.Y - g.from.Y) - dy
		if math.Hypot(rx, ry) <= inlierRadius {
			inliers = append(inliers, g)
		}
	}

	if len(inliers) < minFeatureMatches/2 {
		return nil, nil
	}

	bounds := geometry.Region{
		X:      int(dx + 0.5),
		Y:      int(dy + 0.5),
		Width:  patch.Cols(),
		Height: patch.Rows(),
	}
	bounds = geometry.Clamp(bounds, img.Bounds().Dx(), img.Bounds().Dy())
	if bounds.Area() == 0 {
		return nil, nil
	}

	inlierRatio := float64(len(inliers)) / float64(len(good))
	coverage := float64(len(good)) / float64(len(patchKps))
	confidence := clamp01(coverage) * inlierRatio

	return []domain.UIElementCandidate{{
		Type:        target.Type,
		Bounds:      bounds,
		ClickPoint:  bounds.Center(),
		Confidence:  clamp01(confidence),
		Source:      domain.MethodFeature,
		Description: target.Description,
	}}, nil
}

func median(vals []float64) float64 {
	s := append([]float64(nil), vals...)
	sort.Float64s(s)
	n := len(s)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
