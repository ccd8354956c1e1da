package domain

import "time"

// LearningEntry is a confidence-weighted coordinate association for a
// previously targeted element, keyed by (Application, ElementKey).
// Confidence and counters are mutated only by the learning cache's update
// rule; entries are never deleted automatically.
type LearningEntry struct {
	Application  string    `json:"application"`
	ElementKey   string    `json:"element_key"`
	X            int       `json:"x"`
	Y            int       `json:"y"`
	Confidence   float64   `json:"confidence"`
	Hits         uint32    `json:"hits"`
	SuccessCount uint32    `json:"success_count"`
	FailureCount uint32    `json:"failure_count"`
	LastUsed     time.Time `json:"last_used"`
}

// Key returns the composite lookup key for the entry.
func (e LearningEntry) Key() string {
	return e.Application + "\x00" + e.ElementKey
}

// LearningStats is a read-only aggregate projection of the learning cache
// for observability; it is not part of the targeting contract.
type LearningStats struct {
	Application   string  `json:"application"`
	TotalEntries  int     `json:"total_entries"`
	AvgConfidence float64 `json:"avg_confidence"`
	SuccessRate   float64 `json:"success_rate"`
	TotalHits     uint64  `json:"total_hits"`
}
