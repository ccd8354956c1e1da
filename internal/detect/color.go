package detect

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	domain "github.com/pixelpoint/cli/internal/domain"
	geometry "github.com/pixelpoint/cli/internal/geometry"
)

const (
	// colorBaseConfidence caps the heuristic well below the other
	// strategies; it is a fallback, not a primary detector.
	colorBaseConfidence = 0.35

	minChromeArea      = 16 * 8
	maxChromeAreaShare = 0.4
	minChromeAspect    = 0.2
	maxChromeAspect    = 15.0
	minChromeSolidity  = 0.55
)

// ColorStrategy segments edge-contrast regions shaped like common UI chrome
// (buttons, fields). It runs only as a low-confidence fallback when no
// other strategy produced a candidate above the floor.
type ColorStrategy struct{}

// NewColorStrategy creates a color/contour heuristic strategy.
func NewColorStrategy() *ColorStrategy { return &ColorStrategy{} }

func (s *ColorStrategy) Kind() Kind { return KindColor }

func (s *ColorStrategy) Applicable(target domain.Target) bool { return true }

func (s *ColorStrategy) Detect(ctx context.Context, img *image.RGBA, target domain.Target) ([]domain.UIElementCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("color: convert scene: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, 50, 150)

	// Dilate so button borders close into connected contours.
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(edges, &closed, gocv.MorphClose, kernel)

	contours := gocv.FindContours(closed, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	imgArea := float64(img.Bounds().Dx() * img.Bounds().Dy())
	var out []domain.UIElementCandidate

	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		rect := gocv.BoundingRect(contour)

		w, h := rect.Dx(), rect.Dy()
		area := float64(w * h)
		if area < minChromeArea || area > imgArea*maxChromeAreaShare {
			continue
		}
		aspect := float64(w) / float64(h)
		if aspect < minChromeAspect || aspect > maxChromeAspect {
			continue
		}
		solidity := gocv.ContourArea(contour) / area
		if solidity < minChromeSolidity {
			continue
		}

		bounds := geometry.Region{X: rect.Min.X, Y: rect.Min.Y, Width: w, Height: h}
		out = append(out, domain.UIElementCandidate{
			Type:        chromeType(aspect),
			Bounds:      bounds,
			ClickPoint:  bounds.Center(),
			Confidence:  clamp01(colorBaseConfidence * solidity),
			Source:      domain.MethodColor,
			Description: target.Description,
		})
	}

	return out, nil
}

// chromeType guesses the element class from shape alone: long flat regions
// look like text fields, compact ones like buttons.
func chromeType(aspect float64) domain.ElementType {
	switch {
	case aspect >= 4:
		return domain.ElementTextField
	case aspect >= 0.5:
		return domain.ElementButton
	default:
		return domain.ElementUnknown
	}
}
