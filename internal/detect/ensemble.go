package detect

import (
	"context"
	"image"
	"time"

	uuid "github.com/google/uuid"

	domain "github.com/pixelpoint/cli/internal/domain"
	logger "github.com/pixelpoint/cli/internal/logger"
)

// DefaultStrategyTimeout bounds one strategy's run. A slow strategy that
// times out contributes no candidates rather than blocking the pass.
const DefaultStrategyTimeout = 5 * time.Second

// DefaultFloor is the confidence below which a candidate is unusable.
const DefaultFloor = 0.4

// Ensemble runs the closed set of detection strategies over an image.
// Strategies are pure functions over an already-captured image, so they run
// concurrently with no shared mutable state.
type Ensemble struct {
	strategies      []Strategy
	strategyTimeout time.Duration
	floor           float64
}

// Option configures an Ensemble.
type Option func(*Ensemble)

// WithStrategyTimeout sets the per-strategy timeout.
func WithStrategyTimeout(d time.Duration) Option {
	return func(e *Ensemble) { e.strategyTimeout = d }
}

// WithFloor sets the usability floor used by the color-fallback rule.
func WithFloor(floor float64) Option {
	return func(e *Ensemble) { e.floor = floor }
}

// NewEnsemble builds the full strategy set. recognizer may be nil, in which
// case the OCR strategy is inapplicable and the ensemble degrades to the
// visual strategies only.
func NewEnsemble(recognizer TextRecognizer, opts ...Option) *Ensemble {
	e := &Ensemble{
		strategies: []Strategy{
			NewTemplateStrategy(),
			NewFeatureStrategy(),
			NewOCRStrategy(recognizer),
			NewColorStrategy(),
		},
		strategyTimeout: DefaultStrategyTimeout,
		floor:           DefaultFloor,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEnsembleWithStrategies builds an ensemble over an explicit strategy
// set; tests use it to wire fakes.
func NewEnsembleWithStrategies(strategies []Strategy, opts ...Option) *Ensemble {
	e := &Ensemble{
		strategies:      strategies,
		strategyTimeout: DefaultStrategyTimeout,
		floor:           DefaultFloor,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// stragglerGrace is how long past the per-strategy timeout the pass waits
// for cooperative strategies to observe their context expiry and return.
const stragglerGrace = 100 * time.Millisecond

// Run executes all applicable strategies concurrently and returns one
// DetectionResult per strategy that produced candidates. The color
// heuristic's results are included only when no other strategy produced a
// candidate above the floor. A strategy that cannot run, errors, or times
// out contributes nothing; it never fails the pass. Strategies that ignore
// their context (Tesseract and OpenCV calls are not interruptible) are
// abandoned at the deadline: the goroutine runs to completion on its own
// and its late result is discarded.
func (e *Ensemble) Run(ctx context.Context, img *image.RGBA, target domain.Target) []domain.DetectionResult {
	type outcome struct {
		index    int
		kind     Kind
		result   domain.DetectionResult
		produced bool
	}

	// Buffered so abandoned goroutines can always deliver and exit.
	outcomes := make(chan outcome, len(e.strategies))
	launched := 0

	for i, strat := range e.strategies {
		if !strat.Applicable(target) {
			continue
		}
		launched++
		go func(i int, strat Strategy) {
			sctx, cancel := context.WithTimeout(ctx, e.strategyTimeout)
			defer cancel()

			start := time.Now()
			candidates, err := strat.Detect(sctx, img, target)
			elapsed := time.Since(start)

			if err != nil {
				logger.Warn("detection strategy failed",
					"strategy", strat.Kind().String(), "error", err)
				outcomes <- outcome{index: i}
				return
			}
			if len(candidates) == 0 {
				outcomes <- outcome{index: i}
				return
			}

			for j := range candidates {
				candidates[j].ID = uuid.NewString()
				if candidates[j].Type == "" {
					candidates[j].Type = domain.ElementUnknown
				}
			}

			outcomes <- outcome{
				index: i,
				kind:  strat.Kind(),
				result: domain.DetectionResult{
					Elements:       candidates,
					ProcessingTime: elapsed,
					Method:         strat.Kind().Method(),
				},
				produced: true,
			}
		}(i, strat)
	}

	results := make([]outcome, len(e.strategies))
	deadline := time.NewTimer(e.strategyTimeout + stragglerGrace)
	defer deadline.Stop()

collect:
	for received := 0; received < launched; {
		select {
		case o := <-outcomes:
			received++
			if o.produced {
				results[o.index] = o
			}
		case <-deadline.C:
			logger.Warn("abandoning slow detection strategies",
				"pending", launched-received, "timeout", e.strategyTimeout.String())
			break collect
		case <-ctx.Done():
			break collect
		}
	}

	strongElsewhere := false
	for _, r := range results {
		if !r.produced || r.kind == KindColor {
			continue
		}
		for _, c := range r.result.Elements {
			if c.Confidence >= e.floor {
				strongElsewhere = true
				break
			}
		}
	}

	var out []domain.DetectionResult
	for _, r := range results {
		if !r.produced {
			continue
		}
		if r.kind == KindColor && strongElsewhere {
			continue
		}
		out = append(out, r.result)
	}
	return out
}
