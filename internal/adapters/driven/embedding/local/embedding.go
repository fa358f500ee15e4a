// Package local provides a deterministic fallback embedding service.
// It needs no network and always succeeds: the vector is a hashed
// bag-of-words projection, good enough to keep retrieval working when
// the remote model is unreachable.
package local

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"
	"unicode"

	"github.com/ozy-max/recall/internal/core/domain"
	"github.com/ozy-max/recall/internal/core/ports/driven"
	"github.com/ozy-max/recall/internal/vector"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Dimension is the fixed output vector size.
const Dimension = 384

// ProviderName tags embeddings produced by this service.
const ProviderName = "local"

// Per-projection weights: each distinct token contributes at three
// hashed positions (token as-is, reversed, lowercased).
const (
	weightDirect   = 1.0
	weightReversed = 0.5
	weightLowered  = 0.3
)

// EmbeddingService computes deterministic hashed embeddings.
type EmbeddingService struct{}

// New creates the local embedding service.
func New() *EmbeddingService {
	return &EmbeddingService{}
}

// Embed produces the hashed term-frequency vector for text.
// Identical input always yields a bit-identical, L2-normalized vector.
func (s *EmbeddingService) Embed(_ context.Context, text string) (*domain.Embedding, error) {
	tokens := tokenize(text)

	vec := make([]float32, Dimension)
	if len(tokens) > 0 {
		freq := make(map[string]int, len(tokens))
		for _, t := range tokens {
			freq[t]++
		}

		// Accumulate in sorted token order: float addition is not
		// associative, and the vectors must be bit-identical across runs.
		distinct := make([]string, 0, len(freq))
		for token := range freq {
			distinct = append(distinct, token)
		}
		sort.Strings(distinct)

		total := float64(len(tokens))
		for _, token := range distinct {
			w := float64(freq[token]) / total
			vec[position(token)] += float32(w * weightDirect)
			vec[position(reverse(token))] += float32(w * weightReversed)
			vec[position(strings.ToLower(token))] += float32(w * weightLowered)
		}
		vector.Normalize(vec)
	}

	return &domain.Embedding{
		Vector:    vec,
		Dimension: Dimension,
		Provider:  ProviderName,
	}, nil
}

// Dimensions returns the fixed vector size.
func (s *EmbeddingService) Dimensions() int {
	return Dimension
}

// ModelName returns the provider tag.
func (s *EmbeddingService) ModelName() string {
	return ProviderName
}

// Ping always succeeds: there is nothing to reach.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// tokenize lowercases text, strips everything except letters
// (Cyrillic included), digits and whitespace, then drops tokens of
// length <= 2.
func tokenize(text string) []string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			sb.WriteRune(r)
		}
	}

	fields := strings.Fields(sb.String())
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// position hashes a token into a vector index.
func position(token string) int {
	h := fnv.New32a()
	h.Write([]byte(token))
	return int(h.Sum32() % Dimension)
}

// reverse returns the token with its runes in reverse order.
func reverse(token string) string {
	runes := []rune(token)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
