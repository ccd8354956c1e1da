package detect

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/pixelpoint/cli/internal/domain"
	geometry "github.com/pixelpoint/cli/internal/geometry"
	ocr "github.com/pixelpoint/cli/internal/ocr"
)

// stubStrategy lets tests script one strategy's behavior.
type stubStrategy struct {
	kind       Kind
	applicable bool
	candidates []domain.UIElementCandidate
	err        error
	delay      time.Duration
}

func (s *stubStrategy) Kind() Kind                           { return s.kind }
func (s *stubStrategy) Applicable(target domain.Target) bool { return s.applicable }
func (s *stubStrategy) Detect(ctx context.Context, img *image.RGBA, target domain.Target) ([]domain.UIElementCandidate, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.candidates, s.err
}

func testImage() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 200, 100))
}

func TestEnsemble_ConcatenatesStrategyResults(t *testing.T) {
	tmpl := &stubStrategy{kind: KindTemplate, applicable: true, candidates: []domain.UIElementCandidate{
		cand(domain.MethodTemplate, 0.8, geometry.Region{X: 0, Y: 0, Width: 20, Height: 20}),
	}}
	ocrStrat := &stubStrategy{kind: KindOCR, applicable: true, candidates: []domain.UIElementCandidate{
		cand(domain.MethodOCR, 0.6, geometry.Region{X: 100, Y: 0, Width: 20, Height: 20}),
	}}

	e := NewEnsembleWithStrategies([]Strategy{tmpl, ocrStrat})
	results := e.Run(context.Background(), testImage(), domain.Target{Description: "ok"})

	require.Len(t, results, 2)
	assert.Equal(t, domain.MethodTemplate, results[0].Method)
	assert.Equal(t, domain.MethodOCR, results[1].Method)
	for _, r := range results {
		for _, c := range r.Elements {
			assert.NotEmpty(t, c.ID, "ensemble assigns candidate IDs")
		}
	}
}

func TestEnsemble_FailingStrategyContributesNothing(t *testing.T) {
	broken := &stubStrategy{kind: KindFeature, applicable: true, err: errors.New("boom")}
	working := &stubStrategy{kind: KindOCR, applicable: true, candidates: []domain.UIElementCandidate{
		cand(domain.MethodOCR, 0.7, geometry.Region{X: 0, Y: 0, Width: 20, Height: 20}),
	}}

	e := NewEnsembleWithStrategies([]Strategy{broken, working})
	results := e.Run(context.Background(), testImage(), domain.Target{Description: "ok"})

	require.Len(t, results, 1)
	assert.Equal(t, domain.MethodOCR, results[0].Method)
}

func TestEnsemble_SlowStrategyTimesOut(t *testing.T) {
	slow := &stubStrategy{kind: KindTemplate, applicable: true, delay: time.Second, candidates: []domain.UIElementCandidate{
		cand(domain.MethodTemplate, 0.9, geometry.Region{X: 0, Y: 0, Width: 20, Height: 20}),
	}}
	fast := &stubStrategy{kind: KindOCR, applicable: true, candidates: []domain.UIElementCandidate{
		cand(domain.MethodOCR, 0.7, geometry.Region{X: 0, Y: 0, Width: 20, Height: 20}),
	}}

	e := NewEnsembleWithStrategies([]Strategy{slow, fast}, WithStrategyTimeout(20*time.Millisecond))
	results := e.Run(context.Background(), testImage(), domain.Target{Description: "ok"})

	require.Len(t, results, 1)
	assert.Equal(t, domain.MethodOCR, results[0].Method)
}

// blockingStrategy ignores its context entirely, like a native OCR or
// matching call that cannot be interrupted once started.
type blockingStrategy struct {
	kind       Kind
	delay      time.Duration
	candidates []domain.UIElementCandidate
}

func (b *blockingStrategy) Kind() Kind                           { return b.kind }
func (b *blockingStrategy) Applicable(target domain.Target) bool { return true }
func (b *blockingStrategy) Detect(ctx context.Context, img *image.RGBA, target domain.Target) ([]domain.UIElementCandidate, error) {
	time.Sleep(b.delay)
	return b.candidates, nil
}

func TestEnsemble_NonCooperativeStrategyAbandoned(t *testing.T) {
	blocking := &blockingStrategy{kind: KindTemplate, delay: 3 * time.Second, candidates: []domain.UIElementCandidate{
		cand(domain.MethodTemplate, 0.9, geometry.Region{X: 0, Y: 0, Width: 20, Height: 20}),
	}}
	fast := &stubStrategy{kind: KindOCR, applicable: true, candidates: []domain.UIElementCandidate{
		cand(domain.MethodOCR, 0.7, geometry.Region{X: 0, Y: 0, Width: 20, Height: 20}),
	}}

	e := NewEnsembleWithStrategies([]Strategy{blocking, fast}, WithStrategyTimeout(20*time.Millisecond))

	start := time.Now()
	results := e.Run(context.Background(), testImage(), domain.Target{Description: "ok"})
	elapsed := time.Since(start)

	// The pass must return at the deadline, not when the blocked native
	// call eventually finishes.
	assert.Less(t, elapsed, time.Second)
	require.Len(t, results, 1)
	assert.Equal(t, domain.MethodOCR, results[0].Method)
}

func TestEnsemble_ColorOnlyWhenOthersBelowFloor(t *testing.T) {
	colorCands := []domain.UIElementCandidate{
		cand(domain.MethodColor, 0.3, geometry.Region{X: 50, Y: 50, Width: 30, Height: 15}),
	}

	t.Run("suppressed by a strong strategy", func(t *testing.T) {
		strong := &stubStrategy{kind: KindOCR, applicable: true, candidates: []domain.UIElementCandidate{
			cand(domain.MethodOCR, 0.8, geometry.Region{X: 0, Y: 0, Width: 20, Height: 20}),
		}}
		colorStrat := &stubStrategy{kind: KindColor, applicable: true, candidates: colorCands}

		e := NewEnsembleWithStrategies([]Strategy{strong, colorStrat})
		results := e.Run(context.Background(), testImage(), domain.Target{Description: "ok"})

		require.Len(t, results, 1)
		assert.Equal(t, domain.MethodOCR, results[0].Method)
	})

	t.Run("included when everything else is weak", func(t *testing.T) {
		weak := &stubStrategy{kind: KindOCR, applicable: true, candidates: []domain.UIElementCandidate{
			cand(domain.MethodOCR, 0.2, geometry.Region{X: 0, Y: 0, Width: 20, Height: 20}),
		}}
		colorStrat := &stubStrategy{kind: KindColor, applicable: true, candidates: colorCands}

		e := NewEnsembleWithStrategies([]Strategy{weak, colorStrat})
		results := e.Run(context.Background(), testImage(), domain.Target{Description: "ok"})

		require.Len(t, results, 2)
	})
}

// fixedRecognizer returns a scripted word list.
type fixedRecognizer struct {
	words []ocr.Word
}

func (f *fixedRecognizer) Recognize(ctx context.Context, img image.Image) ([]ocr.Word, error) {
	return f.words, nil
}

func TestEnsemble_TextOnlyDegradation(t *testing.T) {
	// No visual reference: template and feature are inapplicable, only
	// OCR runs, and the pass still finds the target text.
	recognizer := &fixedRecognizer{words: []ocr.Word{
		{Text: "Cancel", Confidence: 0.95, Bounds: geometry.Region{X: 10, Y: 10, Width: 50, Height: 16}},
		{Text: "Submit", Confidence: 0.92, Bounds: geometry.Region{X: 80, Y: 10, Width: 52, Height: 16}},
	}}

	e := NewEnsembleWithStrategies([]Strategy{
		NewTemplateStrategy(),
		NewFeatureStrategy(),
		NewOCRStrategy(recognizer),
	})

	detector := NewDetector(e)
	target := domain.Target{Description: "Submit"}

	results, merged := detector.DetectResults(context.Background(), testImage(), target)

	require.Len(t, results, 1)
	assert.Equal(t, domain.MethodOCR, results[0].Method)
	require.NotEmpty(t, merged)
	assert.Equal(t, "Submit", merged[0].Text)
	assert.Greater(t, merged[0].Confidence, 0.8)
}
