package rerank

import (
	"context"

	"github.com/ozy-max/recall/internal/core/domain"
)

// Ensure Passthrough implements the interface.
var _ Filter = Passthrough{}

// Passthrough changes nothing beyond truncating to the requested count.
type Passthrough struct{}

// Strategy names the filter.
func (Passthrough) Strategy() domain.FilterStrategy {
	return domain.FilterPassthrough
}

// Apply truncates candidates to limit.
func (Passthrough) Apply(_ context.Context, _ string, candidates []domain.SearchResult, limit int) ([]domain.SearchResult, *domain.FilterStats, error) {
	out := truncate(candidates, limit)
	return out, newStats(domain.FilterPassthrough, candidates, out), nil
}
