// Package vector provides the similarity primitives used by the store
// and the local embedder. All operations require equal-length vectors;
// a length mismatch is a distinct error, never a silent truncation.
package vector

import (
	"fmt"
	"math"

	"github.com/ozy-max/recall/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A zero vector yields similarity 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Euclidean returns the euclidean distance between a and b.
func Euclidean(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize scales v in place to unit length. A zero vector is left
// unchanged.
func Normalize(v []float32) {
	n := Norm(v)
	if n == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / n)
	}
}
