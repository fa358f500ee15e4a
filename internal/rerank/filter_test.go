package rerank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozy-max/recall/internal/core/domain"
	"github.com/ozy-max/recall/internal/core/ports/driven"
	"github.com/ozy-max/recall/internal/logger"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	m.Run()
}

// judgeFunc adapts a function to the Judge interface.
type judgeFunc func(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error)

func (f judgeFunc) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return f(ctx, prompt, opts)
}

func makeCandidates(sims ...float64) []domain.SearchResult {
	results := make([]domain.SearchResult, len(sims))
	for i, s := range sims {
		results[i] = domain.SearchResult{
			Chunk:      domain.Chunk{ID: fmt.Sprintf("chunk-%d", i), Content: fmt.Sprintf("passage %d", i)},
			Document:   domain.Document{ID: "doc", Name: "doc.txt"},
			Similarity: s,
		}
	}
	return results
}

func TestNew(t *testing.T) {
	f, err := New(domain.FilterPassthrough, Config{})
	require.NoError(t, err)
	assert.Equal(t, domain.FilterPassthrough, f.Strategy())

	f, err = New("", Config{})
	require.NoError(t, err)
	assert.Equal(t, domain.FilterPassthrough, f.Strategy())

	f, err = New(domain.FilterThreshold, Config{Threshold: 0.4})
	require.NoError(t, err)
	assert.Equal(t, domain.FilterThreshold, f.Strategy())

	f, err = New(domain.FilterLLM, Config{})
	require.NoError(t, err)
	assert.Equal(t, domain.FilterLLM, f.Strategy())

	_, err = New("mystery", Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestPassthrough(t *testing.T) {
	candidates := makeCandidates(0.9, 0.8, 0.7, 0.6)

	out, stats, err := Passthrough{}.Apply(context.Background(), "q", candidates, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, candidates[:2], out)
	assert.Equal(t, 4, stats.CandidatesIn)
	assert.Equal(t, 2, stats.CandidatesOut)
	assert.Equal(t, []string{"chunk-2", "chunk-3"}, stats.DroppedChunkIDs)
	assert.False(t, stats.Degraded)
}

func TestPassthrough_NoLimit(t *testing.T) {
	candidates := makeCandidates(0.9, 0.8)

	out, _, err := Passthrough{}.Apply(context.Background(), "q", candidates, 0)
	require.NoError(t, err)
	assert.Equal(t, candidates, out)
}

func TestThreshold_NeverKeepsBelowCutoff(t *testing.T) {
	candidates := makeCandidates(0.95, 0.5, 0.49, 0.2)

	out, stats, err := Threshold{Cutoff: 0.5}.Apply(context.Background(), "q", candidates, 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, r := range out {
		assert.GreaterOrEqual(t, r.Similarity, 0.5)
	}
	assert.Equal(t, []string{"chunk-2", "chunk-3"}, stats.DroppedChunkIDs)
	assert.InDelta(t, (0.95+0.5+0.49+0.2)/4, stats.MeanSimilarityBefore, 1e-9)
	assert.InDelta(t, (0.95+0.5)/2, stats.MeanSimilarityAfter, 1e-9)
}

func TestThreshold_CanEmptyTheSet(t *testing.T) {
	candidates := makeCandidates(0.1, 0.2)

	out, stats, err := Threshold{Cutoff: 0.9}.Apply(context.Background(), "q", candidates, 10)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 2, stats.CandidatesIn)
	assert.Equal(t, 0, stats.CandidatesOut)
	assert.Zero(t, stats.MeanSimilarityAfter)
}

func TestLLM_BlendsAndReorders(t *testing.T) {
	candidates := makeCandidates(0.9, 0.6)

	// The judge inverts the ranking: passage 0 rates 0, passage 1
	// rates 10.
	judge := judgeFunc(func(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
		assert.Equal(t, judgeMaxTokens, opts.MaxTokens)
		if strings.Contains(prompt, "passage 0") {
			return "0", nil
		}
		return "10", nil
	})

	f := &LLM{Generation: judge}
	out, stats, err := f.Apply(context.Background(), "q", candidates, 10)
	require.NoError(t, err)
	require.Len(t, out, 2)

	// 0.5*0.6 + 0.5*1.0 = 0.8 beats 0.5*0.9 + 0.5*0.0 = 0.45.
	assert.Equal(t, "chunk-1", out[0].Chunk.ID)
	assert.InDelta(t, 0.8, out[0].Similarity, 1e-9)
	assert.Equal(t, "chunk-0", out[1].Chunk.ID)
	assert.InDelta(t, 0.45, out[1].Similarity, 1e-9)
	assert.False(t, stats.Degraded)
}

func TestLLM_StableOnEqualScores(t *testing.T) {
	candidates := makeCandidates(0.5, 0.5, 0.5)

	judge := judgeFunc(func(context.Context, string, driven.GenerateOptions) (string, error) {
		return "5", nil
	})

	f := &LLM{Generation: judge}
	out, _, err := f.Apply(context.Background(), "q", candidates, 10)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "chunk-0", out[0].Chunk.ID)
	assert.Equal(t, "chunk-1", out[1].Chunk.ID)
	assert.Equal(t, "chunk-2", out[2].Chunk.ID)
}

func TestLLM_DegradesOnJudgeFailure(t *testing.T) {
	candidates := makeCandidates(0.9, 0.4)

	judge := judgeFunc(func(context.Context, string, driven.GenerateOptions) (string, error) {
		return "", errors.New("connection refused")
	})

	f := &LLM{Generation: judge, Threshold: 0.5}
	out, stats, err := f.Apply(context.Background(), "q", candidates, 10)
	require.NoError(t, err, "an unreachable judge must not fail the search")
	require.Len(t, out, 1, "degradation falls back to the threshold filter")
	assert.Equal(t, "chunk-0", out[0].Chunk.ID)
	assert.True(t, stats.Degraded)
}

func TestLLM_DegradesToPassthroughWithoutThreshold(t *testing.T) {
	candidates := makeCandidates(0.9, 0.4)

	f := &LLM{Generation: nil}
	out, stats, err := f.Apply(context.Background(), "q", candidates, 10)
	require.NoError(t, err)
	assert.Equal(t, candidates, out, "no judge and no cutoff keeps everything")
	assert.True(t, stats.Degraded)
}

func TestLLM_CancellationIsNotDegradation(t *testing.T) {
	candidates := makeCandidates(0.9)

	ctx, cancel := context.WithCancel(context.Background())
	judge := judgeFunc(func(ctx context.Context, _ string, _ driven.GenerateOptions) (string, error) {
		cancel()
		return "", ctx.Err()
	})

	f := &LLM{Generation: judge}
	_, _, err := f.Apply(ctx, "q", candidates, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLLM_EmptyInput(t *testing.T) {
	f := &LLM{Generation: nil}
	out, stats, err := f.Apply(context.Background(), "q", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0, stats.CandidatesIn)
	assert.False(t, stats.Degraded, "an empty input is not a degradation")
}

func TestParseJudgment(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"7", 0.7, false},
		{" 8.5 ", 0.85, false},
		{"Rating: 9/10", 0.9, false},
		{"I would say 3.", 0.3, false},
		{"15", 1.0, false},
		{"0", 0.0, false},
		{"no idea", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseJudgment(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "input %q", tt.in)
	}
}
