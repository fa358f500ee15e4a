package driven

import (
	"context"

	"github.com/ozy-max/recall/internal/core/domain"
)

// DocumentStore persists documents, chunks and embeddings.
//
// Writes are per-row: a failed save surfaces an error for that row
// only and must not invalidate previously saved rows. Deleting a
// document cascades to its chunks and their embeddings.
type DocumentStore interface {
	// SaveDocument stores a document. Re-saving the same name/content
	// under a new ID is allowed; dedup is the caller's concern.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document, its chunks and their
	// embeddings. No orphans may exist after it returns.
	DeleteDocument(ctx context.Context, id string) error

	// SaveChunk stores a chunk under its parent document.
	SaveChunk(ctx context.Context, chunk *domain.Chunk) error

	// GetChunks returns a document's chunks ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// SaveEmbedding stores the embedding for a chunk, replacing any
	// previous one.
	SaveEmbedding(ctx context.Context, emb *domain.Embedding) error

	// Stats reports entity counts.
	Stats(ctx context.Context) (*domain.StoreStats, error)

	// Clear removes all documents, chunks and embeddings. Idempotent.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// VectorSearcher answers similarity queries over the stored embeddings.
//
// Both searches are full scans: deliberately O(N * dimension) per query,
// sized for hundreds to low thousands of chunks. Candidates whose
// stored dimension differs from the query vector score 0 and are
// excluded, never mis-scored.
type VectorSearcher interface {
	// Search ranks all stored embeddings by cosine similarity to the
	// query vector and returns the top K.
	Search(ctx context.Context, queryVector []float32, topK int) ([]domain.SearchResult, error)

	// SearchHybrid runs an unbounded similarity scan, then adds a
	// keyword boost derived from queryText before truncating to topK.
	// The scan is never pre-truncated so a lexically exact match that
	// embeds poorly is not lost.
	SearchHybrid(ctx context.Context, queryText string, queryVector []float32, topK int) ([]domain.SearchResult, error)
}
