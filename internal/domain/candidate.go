package domain

import (
	"time"

	geometry "github.com/pixelpoint/cli/internal/geometry"
)

// ElementType classifies a detected UI element
type ElementType string

const (
	ElementButton    ElementType = "button"
	ElementTextField ElementType = "text_field"
	ElementLink      ElementType = "link"
	ElementIcon      ElementType = "icon"
	ElementUnknown   ElementType = "unknown"
)

// DetectionMethod identifies which strategy (or combination) produced a result
type DetectionMethod string

const (
	MethodTemplate DetectionMethod = "template"
	MethodFeature  DetectionMethod = "feature"
	MethodOCR      DetectionMethod = "ocr"
	MethodColor    DetectionMethod = "color"
	MethodHybrid   DetectionMethod = "hybrid"
)

// UIElementCandidate is one detected UI element hypothesis. Candidates are
// created fresh per detection pass and never mutated afterwards;
// re-detection produces a new candidate set.
type UIElementCandidate struct {
	ID          string          `json:"id"`
	Type        ElementType     `json:"element_type"`
	Bounds      geometry.Region `json:"bounds"`
	ClickPoint  geometry.Point  `json:"click_point"`
	Confidence  float64         `json:"confidence"`
	Source      DetectionMethod `json:"source_strategy"`
	Description string          `json:"description,omitempty"`
	Text        string          `json:"text,omitempty"`
}

// DetectionResult is the output of one ensemble invocation
type DetectionResult struct {
	Elements       []UIElementCandidate `json:"elements"`
	ProcessingTime time.Duration        `json:"processing_time"`
	Method         DetectionMethod      `json:"method"`
}

// Target describes what a detection pass is looking for. Description is
// always present; ReferencePatch is an optional visual reference (template
// or feature source). A target with no reference forces the text-only path.
type Target struct {
	Description    string
	ReferencePatch []byte // encoded PNG, nil when no visual reference exists
	Type           ElementType
}

// HasReference reports whether a visual reference patch was supplied.
func (t Target) HasReference() bool {
	return len(t.ReferencePatch) > 0
}
