// Package services implements the engine's pipelines on top of the
// driven ports: indexing (document -> chunks -> embeddings -> store)
// and retrieval (query -> hybrid search -> filter -> results).
package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ozy-max/recall/internal/chunker"
	"github.com/ozy-max/recall/internal/core/domain"
	"github.com/ozy-max/recall/internal/core/ports/driven"
	"github.com/ozy-max/recall/internal/core/ports/driving"
	"github.com/ozy-max/recall/internal/logger"
)

// Ensure IndexingService implements the interface.
var _ driving.IndexingService = (*IndexingService)(nil)

// codeExtensions maps file extensions to the code document type.
var codeExtensions = map[string]struct{}{
	".go": {}, ".kt": {}, ".kts": {}, ".java": {}, ".py": {}, ".js": {},
	".ts": {}, ".c": {}, ".cpp": {}, ".h": {}, ".hpp": {}, ".rs": {},
	".swift": {}, ".rb": {}, ".php": {}, ".cs": {}, ".sh": {},
}

// IndexingService runs the index pipeline. A single chunk failure
// never aborts the document: the summary reports per-chunk outcomes
// and partial success is a first-class result.
type IndexingService struct {
	store     driven.DocumentStore
	embedder  driven.EmbeddingService
	chunkSize int
	overlap   int
	sentences int
}

// NewIndexingService creates the indexing service. Chunking parameters
// come from configuration; zero values fall back to domain defaults.
func NewIndexingService(store driven.DocumentStore, embedder driven.EmbeddingService, chunking domain.ChunkingConfig) *IndexingService {
	defaults := domain.DefaultChunkingConfig(domain.ChunkSmart)
	if chunking.ChunkSize <= 0 {
		chunking.ChunkSize = defaults.ChunkSize
	}
	if chunking.Overlap <= 0 {
		chunking.Overlap = defaults.Overlap
	}
	if chunking.SentencesPerChunk <= 0 {
		chunking.SentencesPerChunk = defaults.SentencesPerChunk
	}

	return &IndexingService{
		store:     store,
		embedder:  embedder,
		chunkSize: chunking.ChunkSize,
		overlap:   chunking.Overlap,
		sentences: chunking.SentencesPerChunk,
	}
}

// IndexDocument persists the document, splits it under the default
// strategy for its type, then embeds and persists each chunk. The
// context is honoured between chunks: an abort mid-document leaves
// already-persisted chunks intact.
func (s *IndexingService) IndexDocument(ctx context.Context, name string, docType domain.DocumentType, content string, metadata map[string]string) (*domain.IndexSummary, error) {
	return s.index(ctx, name, docType, content, metadata, "")
}

// index is the pipeline shared by IndexDocument and IndexFile.
func (s *IndexingService) index(ctx context.Context, name string, docType domain.DocumentType, content string, metadata map[string]string, sourcePath string) (*domain.IndexSummary, error) {
	logger.Section("Indexing")
	logger.Debug("Document: %q type=%s size=%d", name, docType, len(content))

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrEmptyContent, name)
	}

	strategy := domain.StrategyForType(docType)
	cfg := domain.ChunkingConfig{
		Strategy:          strategy,
		ChunkSize:         s.chunkSize,
		Overlap:           s.overlap,
		SentencesPerChunk: s.sentences,
	}

	// Configuration problems are fatal and rejected before any I/O.
	chunks, err := chunker.Split(content, cfg)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:         uuid.New().String(),
		Name:       name,
		Type:       docType,
		SourcePath: sourcePath,
		Content:    content,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	summary := &domain.IndexSummary{
		DocumentID:   doc.ID,
		DocumentName: doc.Name,
		Strategy:     strategy,
		ChunksTotal:  len(chunks),
	}

	for i := range chunks {
		// Indexing a large document is many small network calls;
		// stay abortable between chunks.
		if err := ctx.Err(); err != nil {
			logger.Warn("Indexing %q aborted after %d/%d chunks", name, summary.ChunksIndexed, summary.ChunksTotal)
			return summary, err
		}

		if err := s.indexChunk(ctx, doc.ID, &chunks[i]); err != nil {
			summary.ChunksFailed++
			logger.Warn("Chunk %d of %q failed: %v", chunks[i].Position, name, err)
			continue
		}
		summary.ChunksIndexed++
	}

	logger.Info("Indexed %q: %d/%d chunks (%d failed)",
		name, summary.ChunksIndexed, summary.ChunksTotal, summary.ChunksFailed)
	return summary, nil
}

// indexChunk persists one chunk and its embedding.
func (s *IndexingService) indexChunk(ctx context.Context, documentID string, chunk *domain.Chunk) error {
	chunk.ID = uuid.New().String()
	chunk.DocumentID = documentID

	if err := s.store.SaveChunk(ctx, chunk); err != nil {
		return fmt.Errorf("save chunk: %w", err)
	}

	emb, err := s.embedder.Embed(ctx, chunk.Content)
	if err != nil {
		return fmt.Errorf("embed chunk: %w", err)
	}

	emb.ChunkID = chunk.ID
	if err := s.store.SaveEmbedding(ctx, emb); err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}
	return nil
}

// IndexFile reads a file and indexes it under a type detected from
// the extension.
func (s *IndexingService) IndexFile(ctx context.Context, path string) (*domain.IndexSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	name := filepath.Base(path)
	docType := DetectDocumentType(path)
	logger.Debug("File %q detected as %s", path, docType)

	return s.index(ctx, name, docType, string(data), nil, path)
}

// DetectDocumentType classifies a path by extension.
func DetectDocumentType(path string) domain.DocumentType {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := codeExtensions[ext]; ok {
		return domain.DocumentTypeCode
	}
	if ext == ".md" || ext == ".markdown" {
		return domain.DocumentTypeMarkdown
	}
	return domain.DocumentTypeText
}
