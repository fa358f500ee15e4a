package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/ozy-max/recall/internal/core/domain"
	"github.com/ozy-max/recall/internal/keywords"
	"github.com/ozy-max/recall/internal/logger"
	"github.com/ozy-max/recall/internal/vector"
)

// Both searches scan every stored embedding: O(N * dimension) per
// query. That is the documented scale ceiling (hundreds to low
// thousands of chunks), not an oversight; an approximate index would
// replace this scan if corpora outgrow it.

// Search ranks all stored embeddings by cosine similarity against the
// query vector and returns the top K. Candidates whose stored
// dimension differs from the query score 0 so they lose to any real
// match; corrupt rows are skipped and logged.
func (s *Store) Search(ctx context.Context, queryVector []float32, topK int) ([]domain.SearchResult, error) {
	results, err := s.scanSimilarities(ctx, queryVector)
	if err != nil {
		return nil, err
	}

	sortByScore(results)
	return top(results, topK), nil
}

// SearchHybrid runs the unbounded similarity scan first - never
// pre-truncated, so a lexically exact match that embedded poorly is
// still a candidate - then adds the single strongest keyword boost per
// candidate, caps at 1.0, re-sorts and returns the top K.
func (s *Store) SearchHybrid(ctx context.Context, queryText string, queryVector []float32, topK int) ([]domain.SearchResult, error) {
	results, err := s.scanSimilarities(ctx, queryVector)
	if err != nil {
		return nil, err
	}

	kws := keywords.Extract(queryText, s.synonyms)
	logger.Debug("Hybrid keywords: %v", kws)

	for i := range results {
		boost := keywords.BestBoost(kws, keywords.Candidate{
			DocumentName: results[i].Document.Name,
			ChunkText:    results[i].Chunk.Content,
		})
		if boost == 0 {
			continue
		}

		results[i].Boost = boost
		results[i].Similarity += boost
		if results[i].Similarity > 1.0 {
			results[i].Similarity = 1.0
		}
	}

	sortByScore(results)
	return top(results, topK), nil
}

// scanSimilarities loads every chunk that has an embedding, joined
// with its document, and scores it against the query vector.
func (s *Store) scanSimilarities(ctx context.Context, queryVector []float32) ([]domain.SearchResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.position, c.content, c.start_offset, c.end_offset,
		       e.vector, e.dimension,
		       d.id, d.name, d.type, d.source_path, d.content, d.metadata, d.created_at
		FROM chunks c
		JOIN embeddings e ON e.chunk_id = c.id
		JOIN documents d ON d.id = c.document_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var doc domain.Document
		var docType, metadataJSON string
		var blob []byte
		var dimension int

		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Position,
			&chunk.Content, &chunk.StartOffset, &chunk.EndOffset,
			&blob, &dimension,
			&doc.ID, &doc.Name, &docType, &doc.SourcePath,
			&doc.Content, &metadataJSON, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}

		vec, err := bytesToFloat32Slice(blob)
		if err != nil || len(vec) != dimension {
			// Corrupt row: surfaced for this row only, scan continues.
			logger.Warn("Skipping chunk %s: corrupt stored vector (blob %d bytes, dimension %d)",
				chunk.ID, len(blob), dimension)
			continue
		}

		cos, err := vector.Cosine(queryVector, vec)
		if errors.Is(err, domain.ErrDimensionMismatch) {
			// Treated as similarity 0 and excluded from the ranking,
			// never mis-scored by truncation.
			logger.Warn("Chunk %s: dimension mismatch (stored %d, query %d), excluding",
				chunk.ID, dimension, len(queryVector))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scoring chunk %s: %w", chunk.ID, err)
		}

		similarity := cos
		if similarity < 0 {
			similarity = 0
		}

		doc.Type = domain.DocumentType(docType)
		if metadataJSON != "" {
			if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling metadata: %w", err)
			}
		}

		results = append(results, domain.SearchResult{
			Chunk:         chunk,
			Document:      doc,
			Similarity:    similarity,
			RawSimilarity: similarity,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}

	return results, nil
}

// sortByScore orders results by descending similarity, stably: equal
// scores keep scan order.
func sortByScore(results []domain.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
}

// top truncates to k; k <= 0 returns everything.
func top(results []domain.SearchResult, k int) []domain.SearchResult {
	if k > 0 && len(results) > k {
		return results[:k]
	}
	return results
}
