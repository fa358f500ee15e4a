package driving

import (
	"context"

	"github.com/ozy-max/recall/internal/core/domain"
)

// IndexingService ingests documents into the store.
type IndexingService interface {
	// IndexDocument persists the document, splits it into chunks and
	// embeds each chunk. A single chunk failure does not abort the
	// document; the summary reports per-chunk outcomes.
	IndexDocument(ctx context.Context, name string, docType domain.DocumentType, content string, metadata map[string]string) (*domain.IndexSummary, error)

	// IndexFile reads a file, detects its document type from the
	// extension and delegates to IndexDocument.
	IndexFile(ctx context.Context, path string) (*domain.IndexSummary, error)
}

// RetrievalService answers similarity queries over the indexed corpus.
type RetrievalService interface {
	// Search embeds the query, runs hybrid search and applies the
	// configured filter when opts.Rerank is set.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.RetrievalResponse, error)

	// SearchFiltered runs Search with an explicitly chosen filter
	// strategy, overriding the configured one.
	SearchFiltered(ctx context.Context, query string, opts domain.SearchOptions, strategy domain.FilterStrategy) (*domain.RetrievalResponse, error)

	// Ask retrieves context for the question and hands it to the
	// generation collaborator. When generation is unreachable the
	// answer is degraded, not an error.
	Ask(ctx context.Context, question string, opts domain.SearchOptions) (*domain.Answer, error)

	// ListDocuments returns all indexed documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and everything derived from it.
	DeleteDocument(ctx context.Context, id string) error

	// Stats reports store entity counts.
	Stats(ctx context.Context) (*domain.StoreStats, error)

	// ClearIndex removes all indexed data. Idempotent.
	ClearIndex(ctx context.Context) error
}
