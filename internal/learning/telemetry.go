package learning

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	domain "github.com/pixelpoint/cli/internal/domain"
)

// Stats computes per-application aggregates over the in-memory entries,
// sorted by application name.
func (c *Cache) Stats() []domain.LearningStats {
	byApp := make(map[string][]domain.LearningEntry)
	for _, e := range c.Entries() {
		byApp[e.Application] = append(byApp[e.Application], e)
	}

	out := make([]domain.LearningStats, 0, len(byApp))
	for app, entries := range byApp {
		confidences := make([]float64, len(entries))
		var hits, successes, attempts uint64
		for i, e := range entries {
			confidences[i] = e.Confidence
			hits += uint64(e.Hits)
			successes += uint64(e.SuccessCount)
			attempts += uint64(e.SuccessCount) + uint64(e.FailureCount)
		}
		successRate := 0.0
		if attempts > 0 {
			successRate = float64(successes) / float64(attempts)
		}
		out = append(out, domain.LearningStats{
			Application:   app,
			TotalEntries:  len(entries),
			AvgConfidence: stat.Mean(confidences, nil),
			SuccessRate:   successRate,
			TotalHits:     hits,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Application < out[j].Application })
	return out
}

// TopEntries returns the n highest-confidence entries, ties broken by most
// recent use.
func (c *Cache) TopEntries(n int) []domain.LearningEntry {
	entries := c.Entries()
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Confidence != entries[j].Confidence {
			return entries[i].Confidence > entries[j].Confidence
		}
		return entries[i].LastUsed.After(entries[j].LastUsed)
	})
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}
