package rerank

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ozy-max/recall/internal/core/domain"
	"github.com/ozy-max/recall/internal/core/ports/driven"
	"github.com/ozy-max/recall/internal/logger"
)

// Ensure LLM implements the interface.
var _ Filter = (*LLM)(nil)

// Judge is the slice of the generation contract the LLM filter needs.
type Judge interface {
	Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error)
}

// judgeBlend is the weight of the LLM judgment in the adjusted score;
// the remainder stays with the raw similarity.
const judgeBlend = 0.5

// judgeMaxTokens keeps the judgment response tiny.
const judgeMaxTokens = 8

// LLM asks the generation collaborator for a relevance judgment per
// candidate and blends it with the similarity score. When the
// collaborator is unreachable it degrades to the threshold filter
// (or passthrough when no cutoff is configured) instead of failing.
type LLM struct {
	// Generation judges candidates. Nil means always degrade.
	Generation Judge

	// Threshold configures the degradation fallback.
	Threshold float64
}

// Strategy names the filter.
func (f *LLM) Strategy() domain.FilterStrategy {
	return domain.FilterLLM
}

// Apply judges every candidate, blends scores, re-sorts stably and
// truncates to limit.
func (f *LLM) Apply(ctx context.Context, query string, candidates []domain.SearchResult, limit int) ([]domain.SearchResult, *domain.FilterStats, error) {
	if len(candidates) == 0 {
		return candidates, newStats(domain.FilterLLM, candidates, candidates), nil
	}
	if f.Generation == nil {
		return f.degrade(ctx, query, candidates, limit, domain.ErrGenerationUnavailable)
	}

	judged := make([]domain.SearchResult, len(candidates))
	copy(judged, candidates)

	for i := range judged {
		score, err := f.judge(ctx, query, judged[i].Chunk.Content)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			return f.degrade(ctx, query, candidates, limit, err)
		}
		judged[i].Similarity = (1-judgeBlend)*judged[i].Similarity + judgeBlend*score
	}

	stableSortDesc(judged)
	out := truncate(judged, limit)
	return out, newStats(domain.FilterLLM, candidates, out), nil
}

// degrade runs the fallback filter and marks the stats accordingly.
func (f *LLM) degrade(ctx context.Context, query string, candidates []domain.SearchResult, limit int, cause error) ([]domain.SearchResult, *domain.FilterStats, error) {
	logger.Warn("LLM rerank unavailable, degrading: %v", cause)

	var fallback Filter = Passthrough{}
	if f.Threshold > 0 {
		fallback = Threshold{Cutoff: f.Threshold}
	}

	out, stats, err := fallback.Apply(ctx, query, candidates, limit)
	if err != nil {
		return nil, nil, err
	}
	stats.Degraded = true
	return out, stats, nil
}

// judge asks for a 0-10 relevance rating and maps it to [0,1].
func (f *LLM) judge(ctx context.Context, query, passage string) (float64, error) {
	prompt := fmt.Sprintf(
		"Rate how relevant the passage is to the question on a scale from 0 to 10.\n"+
			"Answer with a single number and nothing else.\n\n"+
			"Question: %s\n\nPassage:\n%s",
		query, passage)

	text, err := f.Generation.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   judgeMaxTokens,
		Temperature: 0.0,
	})
	if err != nil {
		return 0, err
	}

	return parseJudgment(text)
}

// judgmentNumber matches the first integer or decimal in a response.
var judgmentNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// parseJudgment extracts the rating from model output, tolerating
// chatter around the number, and clamps it into [0,1].
func parseJudgment(text string) (float64, error) {
	match := judgmentNumber.FindString(strings.TrimSpace(text))
	if match == "" {
		return 0, fmt.Errorf("no rating in judgment %q", text)
	}

	rating, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("parse rating %q: %w", match, err)
	}

	score := rating / 10
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}
