package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozy-max/recall/internal/keywords"
)

func TestSearch_RanksByCosine(t *testing.T) {
	store := setupTestStore(t)

	seedDocument(t, store, "exact.txt", "exact", []float32{1, 0, 0})
	seedDocument(t, store, "close.txt", "close", []float32{0.9, 0.1, 0})
	seedDocument(t, store, "far.txt", "far", []float32{0, 0, 1})

	results, err := store.Search(context.Background(), []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "exact.txt", results[0].Document.Name)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
	assert.Equal(t, "close.txt", results[1].Document.Name)
	assert.Equal(t, "far.txt", results[2].Document.Name)
	assert.Zero(t, results[2].Similarity, "orthogonal vectors floor at 0")

	for _, r := range results {
		assert.Equal(t, r.Similarity, r.RawSimilarity, "plain search applies no boost")
		assert.Zero(t, r.Boost)
	}
}

func TestSearch_NegativeCosineFloorsAtZero(t *testing.T) {
	store := setupTestStore(t)

	seedDocument(t, store, "opposite.txt", "opposite", []float32{-1, 0})

	results, err := store.Search(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, results[0].Similarity)
}

func TestSearch_TopKTruncates(t *testing.T) {
	store := setupTestStore(t)

	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		seedDocument(t, store, name, "content of "+name, []float32{1, 0})
	}

	results, err := store.Search(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = store.Search(context.Background(), []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Len(t, results, 4, "topK <= 0 returns everything")
}

func TestSearch_EmptyStore(t *testing.T) {
	store := setupTestStore(t)

	results, err := store.Search(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_SkipsCorruptRows(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	seedDocument(t, store, "good.txt", "good", []float32{1, 0})
	_, chunkID := seedDocument(t, store, "bad.txt", "bad", []float32{1, 0})

	// Corrupt the stored blob behind the API's back: 3 bytes is not a
	// whole number of float32 values.
	_, err := store.db.ExecContext(ctx,
		"UPDATE embeddings SET vector = ? WHERE chunk_id = ?", []byte{1, 2, 3}, chunkID)
	require.NoError(t, err)

	results, err := store.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err, "one corrupt row must not fail the whole search")
	require.Len(t, results, 1)
	assert.Equal(t, "good.txt", results[0].Document.Name)
}

func TestSearch_ExcludesDimensionMismatch(t *testing.T) {
	store := setupTestStore(t)

	seedDocument(t, store, "matching.txt", "matching", []float32{1, 0, 0})
	seedDocument(t, store, "mismatched.txt", "mismatched", []float32{1, 0})

	results, err := store.Search(context.Background(), []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1, "a candidate with the wrong dimension is excluded, not truncated")
	assert.Equal(t, "matching.txt", results[0].Document.Name)
}

func TestSearchHybrid_BoostsLexicalMatches(t *testing.T) {
	store := setupTestStore(t)

	// Both chunks embed identically; only the keyword boost separates
	// them.
	seedDocument(t, store, "kotlin_notes.txt", "about the language", []float32{1, 1})
	seedDocument(t, store, "recipes.txt", "about the kitchen", []float32{1, 1})

	results, err := store.SearchHybrid(context.Background(), "kotlin", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "kotlin_notes.txt", results[0].Document.Name)
	assert.Equal(t, keywords.BoostNameSegment, results[0].Boost)
	assert.Greater(t, results[0].Similarity, results[0].RawSimilarity)

	assert.Equal(t, "recipes.txt", results[1].Document.Name)
	assert.Zero(t, results[1].Boost)
	assert.Equal(t, results[1].Similarity, results[1].RawSimilarity)
}

func TestSearchHybrid_CapsAtOne(t *testing.T) {
	store := setupTestStore(t)

	seedDocument(t, store, "kotlin.txt", "kotlin everywhere", []float32{1, 0})

	results, err := store.SearchHybrid(context.Background(), "kotlin", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1.0, results[0].Similarity, "similarity plus boost is capped at 1.0")
	assert.InDelta(t, 1.0, results[0].RawSimilarity, 1e-6)
	assert.Equal(t, keywords.BoostStemExact, results[0].Boost)
}

func TestSearchHybrid_LexicalMatchSurvivesPoorEmbedding(t *testing.T) {
	store := setupTestStore(t)

	// The lexical match is orthogonal to the query vector; the decoy
	// embeds well but shares no words. With an unbounded scan the
	// boost still wins.
	seedDocument(t, store, "kotlin_notes.txt", "unrelated body", []float32{0, 1})
	seedDocument(t, store, "decoy.txt", "decoy body", []float32{1, 0})

	results, err := store.SearchHybrid(context.Background(), "kotlin", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kotlin_notes.txt", results[0].Document.Name,
		"boosting happens before truncation, never after")
}

func TestSearchHybrid_NoKeywordsFallsBackToVectors(t *testing.T) {
	store := setupTestStore(t)

	seedDocument(t, store, "a.txt", "alpha content", []float32{1, 0})
	seedDocument(t, store, "b.txt", "beta content", []float32{0, 1})

	// Stopwords only: no keywords survive extraction.
	results, err := store.SearchHybrid(context.Background(), "what are the", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a.txt", results[0].Document.Name)
	for _, r := range results {
		assert.Zero(t, r.Boost)
	}
}

func TestSearchHybrid_SynonymReachesBoost(t *testing.T) {
	table := keywords.NewSynonymTable(map[string][]string{"feline": {"cat"}})
	store, err := NewStore(t.TempDir(), table)
	require.NoError(t, err)
	defer store.Close()

	seedDocument(t, store, "cat_care.txt", "brushing and feeding", []float32{1, 0})

	results, err := store.SearchHybrid(context.Background(), "feline", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, keywords.BoostNameSegment, results[0].Boost)
}
