package detect

import (
	"sort"

	domain "github.com/pixelpoint/cli/internal/domain"
	geometry "github.com/pixelpoint/cli/internal/geometry"
)

// mergeOverlap is the bounds-overlap share (of the smaller box) above which
// two candidates are the same physical element.
const mergeOverlap = 0.5

// Aggregator merges candidates from all strategies run in the same pass
// into one deduplicated, ranked list.
type Aggregator struct{}

// NewAggregator creates an Aggregator.
func NewAggregator() *Aggregator { return &Aggregator{} }

// Merge flattens the per-strategy results, deduplicates candidates whose
// bounds overlap by >= 50% of the smaller box, and ranks the survivors.
// Merged confidence is the maximum of the constituents: strategies
// corroborate each other, they do not average a strong match down. The
// merge is idempotent; re-aggregating the output returns it unchanged.
func (a *Aggregator) Merge(results []domain.DetectionResult) []domain.UIElementCandidate {
	var flat []domain.UIElementCandidate
	for _, r := range results {
		flat = append(flat, r.Elements...)
	}
	return a.MergeCandidates(flat)
}

// MergeCandidates applies the dedup and ranking rules to a flat candidate
// list.
func (a *Aggregator) MergeCandidates(flat []domain.UIElementCandidate) []domain.UIElementCandidate {
	// Strongest first, so each merge group is seeded by its best
	// constituent and keeps that candidate's bounds and click point.
	sorted := append([]domain.UIElementCandidate(nil), flat...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Confidence > sorted[j].Confidence })

	type group struct {
		lead    domain.UIElementCandidate
		sources map[domain.DetectionMethod]bool
	}

	var groups []*group
	for _, c := range sorted {
		var home *group
		for _, g := range groups {
			if geometry.OverlapRatio(g.lead.Bounds, c.Bounds) >= mergeOverlap {
				home = g
				break
			}
		}
		if home == nil {
			groups = append(groups, &group{
				lead:    c,
				sources: map[domain.DetectionMethod]bool{c.Source: true},
			})
			continue
		}
		home.sources[c.Source] = true
		if c.Confidence > home.lead.Confidence {
			home.lead.Confidence = c.Confidence
		}
		if home.lead.Text == "" && c.Text != "" {
			home.lead.Text = c.Text
		}
	}

	merged := make([]domain.UIElementCandidate, 0, len(groups))
	for _, g := range groups {
		c := g.lead
		if len(g.sources) > 1 {
			c.Source = domain.MethodHybrid
		}
		merged = append(merged, c)
	}

	rank(merged)
	return merged
}

// rank orders candidates by confidence descending; ties prefer hybrid over
// single-strategy, then the smaller bounding box (the more specific
// target).
func rank(cands []domain.UIElementCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		aHybrid := a.Source == domain.MethodHybrid
		bHybrid := b.Source == domain.MethodHybrid
		if aHybrid != bHybrid {
			return aHybrid
		}
		return a.Bounds.Area() < b.Bounds.Area()
	})
}
