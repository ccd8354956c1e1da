package domain

import "fmt"

// CaptureUnavailableError indicates the capture primitive failed or the
// surface was not ready. Retried once with backoff, then fatal for the
// session.
type CaptureUnavailableError struct {
	Cause error
}

func (e *CaptureUnavailableError) Error() string {
	return fmt.Sprintf("screen capture unavailable: %v", e.Cause)
}

func (e *CaptureUnavailableError) Unwrap() error { return e.Cause }

// DetectionEmptyError indicates no strategy produced any candidate above
// floor confidence. Recoverable: the orchestrator escalates zoom or falls
// back to the learning cache.
type DetectionEmptyError struct {
	Stage string
}

func (e *DetectionEmptyError) Error() string {
	return fmt.Sprintf("no candidates above floor confidence at stage %s", e.Stage)
}

// TargetNotFoundError terminates a session after detection, zoom escalation
// and cache fallback are all exhausted.
type TargetNotFoundError struct {
	Description string
	Attempts    int
}

func (e *TargetNotFoundError) Error() string {
	return fmt.Sprintf("target %q not found after %d attempts", e.Description, e.Attempts)
}

// AmbiguousTargetError records two top candidates within a small confidence
// delta. Recoverable: the smaller/more specific bounding box wins, but the
// ambiguity is logged for observability.
type AmbiguousTargetError struct {
	Description string
	Delta       float64
}

func (e *AmbiguousTargetError) Error() string {
	return fmt.Sprintf("ambiguous target %q: top candidates within %.3f confidence", e.Description, e.Delta)
}

// VerificationFailedError indicates the post-click state did not change as
// expected. Recoverable up to the bounded retry count, then Escalate.
type VerificationFailedError struct {
	Attempt int
}

func (e *VerificationFailedError) Error() string {
	return fmt.Sprintf("post-click verification failed on attempt %d", e.Attempt)
}

// CoordinateOutOfBoundsError indicates a resolved global coordinate falls
// outside the known screen dimensions. Always fatal for the click action;
// never clamped silently, since clamping could click the wrong element.
type CoordinateOutOfBoundsError struct {
	X, Y          int
	Width, Height int
}

func (e *CoordinateOutOfBoundsError) Error() string {
	return fmt.Sprintf("coordinate (%d,%d) outside screen bounds %dx%d", e.X, e.Y, e.Width, e.Height)
}
