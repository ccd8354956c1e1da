package focus

import (
	"time"

	"github.com/google/uuid"

	geometry "github.com/pixelpoint/cli/internal/geometry"
)

// Attempt records one pass through the resolve stages for diagnosis. The
// history is returned with every session outcome, success or not.
type Attempt struct {
	State         State           `json:"state"`
	ZoomLevel     float64         `json:"zoom_level,omitempty"`
	Region        geometry.Region `json:"region,omitempty"`
	Candidates    int             `json:"candidates"`
	TopConfidence float64         `json:"top_confidence"`
	Error         string          `json:"error,omitempty"`
}

// Session is the ephemeral per-run record: identity, timing and attempt
// history. Sessions are independent; concurrent sessions share only the
// learning cache.
type Session struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	State     State     `json:"state"`
	Attempts  []Attempt `json:"attempts"`
}

func newSession() *Session {
	return &Session{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
		State:     StateIdle,
	}
}

func (s *Session) record(a Attempt) {
	s.Attempts = append(s.Attempts, a)
}

// Coordinate is a resolved global click position.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Result is the outcome of a targeting session.
type Result struct {
	Success    bool        `json:"success"`
	Coordinate *Coordinate `json:"coordinate,omitempty"`
	Attempts   int         `json:"attempts"`
	Session    *Session    `json:"session"`
}
