// Package detect implements the detection ensemble: independent strategies
// that locate UI elements in a capture, and the aggregator that fuses their
// candidates into one ranked list.
package detect

import (
	"context"
	"image"

	domain "github.com/pixelpoint/cli/internal/domain"
	ocr "github.com/pixelpoint/cli/internal/ocr"
)

// Kind enumerates the closed set of detection strategies.
type Kind int

const (
	KindTemplate Kind = iota
	KindFeature
	KindOCR
	KindColor
)

// String returns the strategy name.
func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "template"
	case KindFeature:
		return "feature"
	case KindOCR:
		return "ocr"
	case KindColor:
		return "color"
	default:
		return "unknown"
	}
}

// Method maps the strategy onto the detection method it stamps on results.
func (k Kind) Method() domain.DetectionMethod {
	switch k {
	case KindTemplate:
		return domain.MethodTemplate
	case KindFeature:
		return domain.MethodFeature
	case KindOCR:
		return domain.MethodOCR
	case KindColor:
		return domain.MethodColor
	default:
		return domain.MethodHybrid
	}
}

// Strategy is one independent, side-effect-free detection pass over an
// image. A strategy that cannot run for the given target (for example a
// template matcher with no reference patch) returns an empty slice, never
// an error; errors are reserved for genuine processing failures.
type Strategy interface {
	Kind() Kind

	// Applicable reports whether the strategy can run for this target.
	Applicable(target domain.Target) bool

	// Detect returns zero or more candidates with strategy-local
	// confidence in [0,1]. Bounds and click points are in the input
	// image's local pixel space.
	Detect(ctx context.Context, img *image.RGBA, target domain.Target) ([]domain.UIElementCandidate, error)
}

// TextRecognizer is the recognizeText boundary consumed by the OCR
// strategy. *ocr.Engine implements it.
type TextRecognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]ocr.Word, error)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
