package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozy-max/recall/internal/vector"
)

func TestEmbed_Deterministic(t *testing.T) {
	svc := New()
	ctx := context.Background()

	first, err := svc.Embed(ctx, "Kotlin coroutines allow suspend functions")
	require.NoError(t, err)
	second, err := svc.Embed(ctx, "Kotlin coroutines allow suspend functions")
	require.NoError(t, err)

	require.Len(t, first.Vector, Dimension)
	assert.Equal(t, first.Vector, second.Vector, "repeated embedding must be bit-identical")
}

func TestEmbed_UnitNorm(t *testing.T) {
	svc := New()

	emb, err := svc.Embed(context.Background(), "the quick brown fox jumps over the lazy dog")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, vector.Norm(emb.Vector), 1e-5)
}

func TestEmbed_Metadata(t *testing.T) {
	svc := New()

	emb, err := svc.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, Dimension, emb.Dimension)
	assert.Equal(t, ProviderName, emb.Provider)
	assert.Equal(t, Dimension, svc.Dimensions())
	assert.Equal(t, ProviderName, svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestEmbed_EmptyTextIsZeroVector(t *testing.T) {
	svc := New()

	for _, text := range []string{"", "   ", "a be of", "!!! ???"} {
		emb, err := svc.Embed(context.Background(), text)
		require.NoError(t, err, "text %q", text)
		require.Len(t, emb.Vector, Dimension)
		assert.Zero(t, vector.Norm(emb.Vector), "text %q has no usable tokens", text)
	}
}

func TestEmbed_CaseInsensitive(t *testing.T) {
	svc := New()
	ctx := context.Background()

	lower, err := svc.Embed(ctx, "kotlin coroutines")
	require.NoError(t, err)
	upper, err := svc.Embed(ctx, "KOTLIN COROUTINES")
	require.NoError(t, err)

	assert.Equal(t, lower.Vector, upper.Vector)
}

func TestEmbed_Cyrillic(t *testing.T) {
	svc := New()

	emb, err := svc.Embed(context.Background(), "котлин корутины приостановка функции")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, vector.Norm(emb.Vector), 1e-5)
}

func TestEmbed_DistinctTextsDiffer(t *testing.T) {
	svc := New()
	ctx := context.Background()

	a, err := svc.Embed(ctx, "kotlin coroutines allow suspend functions")
	require.NoError(t, err)
	b, err := svc.Embed(ctx, "quantum entanglement links particles")
	require.NoError(t, err)

	assert.NotEqual(t, a.Vector, b.Vector)

	sim, err := vector.Cosine(a.Vector, b.Vector)
	require.NoError(t, err)
	assert.Less(t, sim, 0.999)
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("Go is a great, great language! C++ too?")
	assert.Equal(t, []string{"great", "great", "language", "too"}, tokens)
}
