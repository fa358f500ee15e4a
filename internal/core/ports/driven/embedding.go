package driven

import (
	"context"

	"github.com/ozy-max/recall/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
//
// Implementations may call a remote model or compute a deterministic
// local vector. The returned Embedding carries the provider tag of
// whichever implementation actually answered, so callers can observe
// degradation without handling it.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// The ChunkID field of the result is left empty; the caller sets
	// it when persisting.
	Embed(ctx context.Context, text string) (*domain.Embedding, error)

	// Dimensions returns the embedding vector size (e.g. 384, 768).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight
	// request. Local implementations always succeed.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
