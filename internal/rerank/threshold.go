package rerank

import (
	"context"

	"github.com/ozy-max/recall/internal/core/domain"
)

// Ensure Threshold implements the interface.
var _ Filter = Threshold{}

// Threshold drops candidates whose similarity is below the cutoff,
// then truncates. Order is preserved: the input is already sorted and
// dropping cannot reorder it.
type Threshold struct {
	// Cutoff is the minimum similarity a candidate must have.
	Cutoff float64
}

// Strategy names the filter.
func (Threshold) Strategy() domain.FilterStrategy {
	return domain.FilterThreshold
}

// Apply removes candidates below the cutoff and truncates to limit.
func (t Threshold) Apply(_ context.Context, _ string, candidates []domain.SearchResult, limit int) ([]domain.SearchResult, *domain.FilterStats, error) {
	kept := make([]domain.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		if c.Similarity >= t.Cutoff {
			kept = append(kept, c)
		}
	}

	out := truncate(kept, limit)
	return out, newStats(domain.FilterThreshold, candidates, out), nil
}
