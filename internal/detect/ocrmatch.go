package detect

import (
	"context"
	"image"
	"sort"
	"strings"

	domain "github.com/pixelpoint/cli/internal/domain"
	geometry "github.com/pixelpoint/cli/internal/geometry"
	ocr "github.com/pixelpoint/cli/internal/ocr"
)

// minTextSimilarity is the string-similarity floor for an OCR candidate.
const minTextSimilarity = 0.55

// maxOCRCandidates bounds how many text matches one pass emits.
const maxOCRCandidates = 5

// OCRStrategy scores recognized text against the target description. It is
// the only strategy that needs no visual reference, which makes it the
// text-only fallback path when the hint collaborator and reference patches
// are both absent.
type OCRStrategy struct {
	recognizer TextRecognizer
}

// NewOCRStrategy creates an OCR matching strategy over a recognizer.
func NewOCRStrategy(recognizer TextRecognizer) *OCRStrategy {
	return &OCRStrategy{recognizer: recognizer}
}

func (s *OCRStrategy) Kind() Kind { return KindOCR }

func (s *OCRStrategy) Applicable(target domain.Target) bool {
	return s.recognizer != nil && strings.TrimSpace(target.Description) != ""
}

func (s *OCRStrategy) Detect(ctx context.Context, img *image.RGBA, target domain.Target) ([]domain.UIElementCandidate, error) {
	if !s.Applicable(target) {
		return nil, nil
	}

	words, err := s.recognizer.Recognize(ctx, img)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, nil
	}

	wanted := normalizeText(target.Description)
	wantedTokens := len(strings.Fields(wanted))
	if wantedTokens == 0 {
		return nil, nil
	}

	var out []domain.UIElementCandidate
	for _, group := range groupIntoLines(words) {
		// Slide an n-gram window over each line so multi-word captions
		// ("Save As", "Sign in with Google") score as one candidate.
		for start := 0; start < len(group); start++ {
			for length := 1; length <= wantedTokens+1 && start+length <= len(group); length++ {
				window := group[start : start+length]
				text, bounds, conf := joinWords(window)
				sim := similarity(normalizeText(text), wanted)
				if sim < minTextSimilarity {
					continue
				}
				out = append(out, domain.UIElementCandidate{
					Type:        guessElementType(target),
					Bounds:      bounds,
					ClickPoint:  bounds.Center(),
					Confidence:  clamp01(sim * conf),
					Source:      domain.MethodOCR,
					Description: target.Description,
					Text:        text,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	out = dropNestedMatches(out)
	if len(out) > maxOCRCandidates {
		out = out[:maxOCRCandidates]
	}
	return out, nil
}

// groupIntoLines buckets words whose vertical extents overlap, preserving
// left-to-right order within a line.
func groupIntoLines(words []ocr.Word) [][]ocr.Word {
	sorted := append([]ocr.Word(nil), words...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Bounds.Y != sorted[j].Bounds.Y {
			return sorted[i].Bounds.Y < sorted[j].Bounds.Y
		}
		return sorted[i].Bounds.X < sorted[j].Bounds.X
	})

	var lines [][]ocr.Word
	for _, w := range sorted {
		placed := false
		for i := range lines {
			last := lines[i][len(lines[i])-1]
			if verticalOverlap(last.Bounds, w.Bounds) > 0.5 {
				lines[i] = append(lines[i], w)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, []ocr.Word{w})
		}
	}
	for i := range lines {
		sort.Slice(lines[i], func(a, b int) bool { return lines[i][a].Bounds.X < lines[i][b].Bounds.X })
	}
	return lines
}

func verticalOverlap(a, b geometry.Region) float64 {
	top := max(a.Y, b.Y)
	bottom := min(a.Y+a.Height, b.Y+b.Height)
	if bottom <= top {
		return 0
	}
	return float64(bottom-top) / float64(min(a.Height, b.Height))
}

// joinWords merges a window of words into combined text, union bounds, and
// the mean word confidence.
func joinWords(window []ocr.Word) (string, geometry.Region, float64) {
	parts := make([]string, len(window))
	bounds := window[0].Bounds
	confSum := 0.0
	for i, w := range window {
		parts[i] = w.Text
		confSum += w.Confidence
		bounds = union(bounds, w.Bounds)
	}
	return strings.Join(parts, " "), bounds, confSum / float64(len(window))
}

func union(a, b geometry.Region) geometry.Region {
	x1 := min(a.X, b.X)
	y1 := min(a.Y, b.Y)
	x2 := max(a.X+a.Width, b.X+b.Width)
	y2 := max(a.Y+a.Height, b.Y+b.Height)
	return geometry.Region{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// dropNestedMatches removes lower-ranked candidates whose bounds overlap a
// better one; windows of different lengths over the same words otherwise
// flood the result.
func dropNestedMatches(cands []domain.UIElementCandidate) []domain.UIElementCandidate {
	var kept []domain.UIElementCandidate
	for _, c := range cands {
		nested := false
		for _, k := range kept {
			if geometry.OverlapRatio(c.Bounds, k.Bounds) >= 0.5 {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, c)
		}
	}
	return kept
}

func guessElementType(target domain.Target) domain.ElementType {
	if target.Type != "" && target.Type != domain.ElementUnknown {
		return target.Type
	}
	desc := strings.ToLower(target.Description)
	switch {
	case strings.Contains(desc, "button"):
		return domain.ElementButton
	case strings.Contains(desc, "field"), strings.Contains(desc, "input"), strings.Contains(desc, "box"):
		return domain.ElementTextField
	case strings.Contains(desc, "link"):
		return domain.ElementLink
	case strings.Contains(desc, "icon"):
		return domain.ElementIcon
	default:
		return domain.ElementUnknown
	}
}
