// Package rerank provides the second-pass candidate filters: an
// optional pruning/reordering step between raw hybrid search and the
// final result set. Every filter reports before/after statistics for
// observability and A/B comparison.
package rerank

import (
	"context"
	"fmt"
	"sort"

	"github.com/ozy-max/recall/internal/core/domain"
)

// Filter prunes and/or reorders ranked candidates.
//
// Implementations must sort stably by descending adjusted score (ties
// keep original order) and must never turn a non-empty candidate set
// into an empty one because a collaborator was unreachable.
type Filter interface {
	// Strategy names the filter.
	Strategy() domain.FilterStrategy

	// Apply filters candidates for the query and truncates to limit.
	Apply(ctx context.Context, query string, candidates []domain.SearchResult, limit int) ([]domain.SearchResult, *domain.FilterStats, error)
}

// New constructs the filter for a strategy.
func New(strategy domain.FilterStrategy, cfg Config) (Filter, error) {
	switch strategy {
	case domain.FilterPassthrough, "":
		return Passthrough{}, nil
	case domain.FilterThreshold:
		return Threshold{Cutoff: cfg.Threshold}, nil
	case domain.FilterLLM:
		return &LLM{
			Generation: cfg.Generation,
			Threshold:  cfg.Threshold,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown filter strategy %q", domain.ErrInvalidConfig, strategy)
	}
}

// Config carries per-strategy filter parameters.
type Config struct {
	// Threshold is the similarity cutoff for the threshold filter and
	// the degradation fallback of the LLM filter.
	Threshold float64

	// Generation judges candidate relevance for the LLM filter.
	Generation Judge
}

// truncate caps results at limit; limit <= 0 means no cap.
func truncate(results []domain.SearchResult, limit int) []domain.SearchResult {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

// stableSortDesc sorts by descending similarity keeping the original
// order of equal scores.
func stableSortDesc(results []domain.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
}

// meanSimilarity is 0 for an empty set.
func meanSimilarity(results []domain.SearchResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Similarity
	}
	return sum / float64(len(results))
}

// newStats builds the before/after report for a pass.
func newStats(strategy domain.FilterStrategy, before, after []domain.SearchResult) *domain.FilterStats {
	kept := make(map[string]struct{}, len(after))
	for _, r := range after {
		kept[r.Chunk.ID] = struct{}{}
	}

	var dropped []string
	for _, r := range before {
		if _, ok := kept[r.Chunk.ID]; !ok {
			dropped = append(dropped, r.Chunk.ID)
		}
	}

	return &domain.FilterStats{
		Strategy:             strategy,
		CandidatesIn:         len(before),
		CandidatesOut:        len(after),
		MeanSimilarityBefore: meanSimilarity(before),
		MeanSimilarityAfter:  meanSimilarity(after),
		DroppedChunkIDs:      dropped,
	}
}
