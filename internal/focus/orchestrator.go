package focus

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	capture "github.com/pixelpoint/cli/internal/capture"
	display "github.com/pixelpoint/cli/internal/display"
	domain "github.com/pixelpoint/cli/internal/domain"
	geometry "github.com/pixelpoint/cli/internal/geometry"
	learning "github.com/pixelpoint/cli/internal/learning"
	logger "github.com/pixelpoint/cli/internal/logger"
)

const (
	// DefaultZoom is the initial magnification for the region-zoom stage.
	DefaultZoom = 2.0

	// MaxZoom caps zoom escalation to bound capture cost.
	MaxZoom = 4.0

	// DefaultResolveRetries bounds how many times low-confidence resolution
	// may escalate zoom and loop.
	DefaultResolveRetries = 2

	// DefaultVerifyRetries bounds re-click attempts after a failed
	// post-click verification.
	DefaultVerifyRetries = 2

	// DefaultStageTimeout bounds every external call so no stage can hang
	// a session.
	DefaultStageTimeout = 10 * time.Second

	// DefaultSettleDelay is how long the screen gets to react to a click
	// before the verification capture.
	DefaultSettleDelay = 300 * time.Millisecond

	captureRetryBackoff = 500 * time.Millisecond
)

// Options tunes the orchestrator. Zero values fall back to the defaults
// above.
type Options struct {
	Zoom           float64
	MaxZoom        float64
	ResolveRetries int
	VerifyRetries  int
	Floor          float64
	AmbiguityDelta float64
	StageTimeout   time.Duration
	SettleDelay    time.Duration
	VerifyDistance int
}

func (o Options) withDefaults() Options {
	if o.Zoom <= 0 {
		o.Zoom = DefaultZoom
	}
	if o.MaxZoom <= 0 {
		o.MaxZoom = MaxZoom
	}
	if o.ResolveRetries <= 0 {
		o.ResolveRetries = DefaultResolveRetries
	}
	if o.VerifyRetries <= 0 {
		o.VerifyRetries = DefaultVerifyRetries
	}
	if o.Floor <= 0 {
		o.Floor = learning.DefaultFloor
	}
	if o.AmbiguityDelta <= 0 {
		o.AmbiguityDelta = 0.05
	}
	if o.StageTimeout <= 0 {
		o.StageTimeout = DefaultStageTimeout
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.VerifyDistance <= 0 {
		o.VerifyDistance = DefaultVerifyDistance
	}
	return o
}

// Detector is the detection surface the orchestrator consumes.
type Detector interface {
	DetectElements(ctx context.Context, img *image.RGBA, target domain.Target) []domain.UIElementCandidate
}

// Capturer is the capture surface the orchestrator consumes.
type Capturer interface {
	ScreenDimensions(ctx context.Context) (int, int, error)
	CaptureFull(ctx context.Context, withGrid bool) (*capture.Result, error)
	CaptureZoomed(ctx context.Context, region geometry.Region, zoomLevel float64) (*capture.Result, error)
	CaptureRaw(ctx context.Context, region *geometry.Region) (*image.RGBA, error)
}

// Input is the injection surface the orchestrator consumes.
type Input interface {
	MoveMouse(ctx context.Context, x, y int) error
	ClickMouse(ctx context.Context, button display.MouseButton, clicks int) error
}

// Request describes one targeting run.
type Request struct {
	Application string
	Target      domain.Target
}

// elementKey derives the learning-cache key for a target.
func elementKey(target domain.Target) string {
	t := target.Type
	if t == "" {
		t = domain.ElementUnknown
	}
	return fmt.Sprintf("%s:%s", t, strings.ToLower(strings.TrimSpace(target.Description)))
}

// Orchestrator runs targeting sessions. It is safe for concurrent use;
// sessions are independent and share only the learning cache, and capture
// serialization is the capturer's concern.
type Orchestrator struct {
	capturer Capturer
	detector Detector
	input    Input
	cache    *learning.Cache
	resolver RegionResolver
	opts     Options
}

// New creates an orchestrator. resolver may be nil, which forces the
// detection-only coarse path.
func New(capturer Capturer, detector Detector, input Input, cache *learning.Cache, resolver RegionResolver, opts Options) *Orchestrator {
	return &Orchestrator{
		capturer: capturer,
		detector: detector,
		input:    input,
		cache:    cache,
		resolver: resolver,
		opts:     opts.withDefaults(),
	}
}

// Run drives the full state machine for one target. The returned Result
// always carries the session history, also on error.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	sess := newSession()
	log := logger.FromContext(ctx)
	log.Sugar().Debugw("focus session started",
		"session", sess.ID, "application", req.Application, "description", req.Target.Description)

	result := &Result{Session: sess}
	err := o.run(ctx, req, sess, result)
	result.Attempts = len(sess.Attempts)
	result.Success = sess.State == StateDone
	if err != nil {
		log.Sugar().Infow("focus session failed",
			"session", sess.ID, "state", sess.State.String(), "attempts", result.Attempts, "error", err)
		return result, err
	}
	log.Sugar().Infow("focus session done",
		"session", sess.ID, "attempts", result.Attempts,
		"x", result.Coordinate.X, "y", result.Coordinate.Y)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, req Request, sess *Session, result *Result) error {
	// CoarseLocate: full capture plus a region hint.
	sess.State = StateCoarseLocate
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := o.captureFull(ctx)
	if err != nil {
		sess.record(Attempt{State: StateCoarseLocate, Error: err.Error()})
		sess.State = StateEscalate
		return err
	}
	surfaceW := full.Mapping.Region.Width
	surfaceH := full.Mapping.Region.Height

	hintCtx, cancel := context.WithTimeout(ctx, o.opts.StageTimeout)
	region := o.coarseRegion(hintCtx, full.Image, req.Target, surfaceW, surfaceH)
	cancel()

	zoom := o.opts.Zoom
	retries := o.opts.ResolveRetries

	var (
		resolved   geometry.Point
		bounds     geometry.Region
		confidence float64
		fromCache  bool
	)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// RegionZoom: magnified capture of the hinted region.
		sess.State = StateRegionZoom
		zoomed, err := o.captureZoomed(ctx, region, zoom)
		if err != nil {
			sess.record(Attempt{State: StateRegionZoom, ZoomLevel: zoom, Region: region, Error: err.Error()})
			sess.State = StateEscalate
			return err
		}

		// PreciseResolve: ensemble over the zoomed image.
		sess.State = StatePreciseResolve
		if err := ctx.Err(); err != nil {
			return err
		}
		detectCtx, cancel := context.WithTimeout(ctx, o.opts.StageTimeout)
		candidates := o.detector.DetectElements(detectCtx, zoomed.Image, req.Target)
		cancel()

		attempt := Attempt{
			State:      StatePreciseResolve,
			ZoomLevel:  zoom,
			Region:     zoomed.Mapping.Region,
			Candidates: len(candidates),
		}
		if len(candidates) > 0 {
			attempt.TopConfidence = candidates[0].Confidence
		}

		if len(candidates) > 0 && candidates[0].Confidence >= o.opts.Floor {
			top := candidates[0]
			if len(candidates) > 1 && candidates[0].Confidence-candidates[1].Confidence < o.opts.AmbiguityDelta {
				// Rank order already prefers the smaller, more specific
				// box; the ambiguity is only logged.
				ambErr := &domain.AmbiguousTargetError{Description: req.Target.Description, Delta: o.opts.AmbiguityDelta}
				logger.Warn("ambiguous target, preferring more specific candidate",
					"session", sess.ID, "error", ambErr.Error())
			}
			resolved = geometry.LocalToGlobal(top.ClickPoint, zoomed.Mapping)
			bounds = geometry.LocalRegionToGlobal(top.Bounds, zoomed.Mapping)
			confidence = top.Confidence
			sess.record(attempt)
			break
		}

		emptyErr := &domain.DetectionEmptyError{Stage: StatePreciseResolve.String()}
		attempt.Error = emptyErr.Error()
		sess.record(attempt)

		if retries > 0 && zoom < o.opts.MaxZoom {
			// Retry: escalate zoom and loop, bounded.
			sess.State = StateRetry
			retries--
			zoom = zoom * 2
			if zoom > o.opts.MaxZoom {
				zoom = o.opts.MaxZoom
			}
			logger.Debug("low confidence, escalating zoom",
				"session", sess.ID, "zoom", zoom, "retries_left", retries)
			continue
		}

		// Detection exhausted; the learning cache is the last resort.
		if x, y, ok := o.cache.Lookup(ctx, req.Application, elementKey(req.Target)); ok {
			resolved = geometry.Point{X: float64(x), Y: float64(y)}
			bounds = geometry.Region{X: x - 16, Y: y - 16, Width: 32, Height: 32}
			fromCache = true
			sess.record(Attempt{State: StatePreciseResolve, Error: "resolved from learning cache"})
			break
		}

		sess.State = StateEscalate
		return &domain.TargetNotFoundError{Description: req.Target.Description, Attempts: len(sess.Attempts)}
	}

	// Act: bounds-check, then inject the click.
	sess.State = StateAct
	if err := ctx.Err(); err != nil {
		return err
	}

	gx, gy := resolved.Round()
	if gx < 0 || gy < 0 || gx >= surfaceW || gy >= surfaceH {
		sess.State = StateEscalate
		return &domain.CoordinateOutOfBoundsError{X: gx, Y: gy, Width: surfaceW, Height: surfaceH}
	}
	result.Coordinate = &Coordinate{X: gx, Y: gy}

	roi := verifyROI(geometry.Clamp(bounds, surfaceW, surfaceH), gx, gy, surfaceW, surfaceH)
	before, err := o.snapshotHash(ctx, roi)
	if err != nil {
		sess.State = StateEscalate
		return err
	}

	logger.Debug("acting on resolved coordinate",
		"session", sess.ID, "x", gx, "y", gy, "confidence", confidence, "from_cache", fromCache)

	// Verify: bounded re-click attempts, each outcome fed to the cache.
	key := elementKey(req.Target)
	for attempt := 1; ; attempt++ {
		if err := o.click(ctx, gx, gy); err != nil {
			sess.record(Attempt{State: StateAct, Error: err.Error()})
			sess.State = StateEscalate
			return err
		}
		sess.record(Attempt{State: StateAct, TopConfidence: confidence})

		sess.State = StateVerify
		if err := o.settle(ctx); err != nil {
			return err
		}
		ok, err := o.changed(ctx, roi, before)
		if err != nil {
			sess.record(Attempt{State: StateVerify, Error: err.Error()})
			sess.State = StateEscalate
			return err
		}
		if ok {
			o.cache.RecordSuccess(ctx, req.Application, key, gx, gy)
			sess.record(Attempt{State: StateVerify})
			sess.State = StateDone
			return nil
		}

		o.cache.RecordFailure(ctx, req.Application, key)
		verr := &domain.VerificationFailedError{Attempt: attempt}
		sess.record(Attempt{State: StateVerify, Error: verr.Error()})
		if attempt > o.opts.VerifyRetries {
			sess.State = StateEscalate
			return verr
		}
		sess.State = StateRetry
		logger.Debug("verification failed, re-clicking",
			"session", sess.ID, "attempt", attempt)
	}
}

// captureFull runs the full capture with one backoff retry on transient
// capture unavailability.
func (o *Orchestrator) captureFull(ctx context.Context) (*capture.Result, error) {
	return o.captureWithRetry(ctx, func(stageCtx context.Context) (*capture.Result, error) {
		return o.capturer.CaptureFull(stageCtx, o.resolver != nil)
	})
}

func (o *Orchestrator) captureZoomed(ctx context.Context, region geometry.Region, zoom float64) (*capture.Result, error) {
	return o.captureWithRetry(ctx, func(stageCtx context.Context) (*capture.Result, error) {
		return o.capturer.CaptureZoomed(stageCtx, region, zoom)
	})
}

func (o *Orchestrator) captureWithRetry(ctx context.Context, fn func(context.Context) (*capture.Result, error)) (*capture.Result, error) {
	stageCtx, cancel := context.WithTimeout(ctx, o.opts.StageTimeout)
	res, err := fn(stageCtx)
	cancel()
	if err == nil {
		return res, nil
	}

	var unavailable *domain.CaptureUnavailableError
	if !errors.As(err, &unavailable) {
		return nil, err
	}

	logger.Warn("capture unavailable, retrying once", "error", err)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(captureRetryBackoff):
	}

	stageCtx, cancel = context.WithTimeout(ctx, o.opts.StageTimeout)
	defer cancel()
	return fn(stageCtx)
}

func (o *Orchestrator) click(ctx context.Context, x, y int) error {
	stageCtx, cancel := context.WithTimeout(ctx, o.opts.StageTimeout)
	defer cancel()
	if err := o.input.MoveMouse(stageCtx, x, y); err != nil {
		return fmt.Errorf("move mouse: %w", err)
	}
	if err := o.input.ClickMouse(stageCtx, display.MouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click mouse: %w", err)
	}
	return nil
}

func (o *Orchestrator) settle(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(o.opts.SettleDelay):
		return nil
	}
}
