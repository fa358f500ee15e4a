package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ozy-max/recall/internal/core/domain"
	"github.com/ozy-max/recall/internal/core/ports/driven"
	"github.com/ozy-max/recall/internal/core/ports/driving"
	"github.com/ozy-max/recall/internal/logger"
	"github.com/ozy-max/recall/internal/rerank"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// overfetchFactor is how many times the requested count the hybrid
// search fetches when a rerank pass follows, so the filter has
// material to prune.
const overfetchFactor = 3

// RetrievalService runs the query pipeline and the store-management
// operations.
type RetrievalService struct {
	store      driven.DocumentStore
	searcher   driven.VectorSearcher
	embedder   driven.EmbeddingService
	generation driven.GenerationService // optional, may be nil
	filter     rerank.Filter
	threshold  float64
	limit      int
}

// NewRetrievalService creates the retrieval service. generation may be
// nil; filter nil means passthrough; defaultLimit <= 0 applies 10.
func NewRetrievalService(
	store driven.DocumentStore,
	searcher driven.VectorSearcher,
	embedder driven.EmbeddingService,
	generation driven.GenerationService,
	filter rerank.Filter,
	threshold float64,
	defaultLimit int,
) *RetrievalService {
	if filter == nil {
		filter = rerank.Passthrough{}
	}
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultSearchOptions().Limit
	}

	return &RetrievalService{
		store:      store,
		searcher:   searcher,
		embedder:   embedder,
		generation: generation,
		filter:     filter,
		threshold:  threshold,
		limit:      defaultLimit,
	}
}

// Search embeds the query, runs the similarity scan (hybrid by
// default) and applies the configured filter when opts.Rerank is set.
func (s *RetrievalService) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.RetrievalResponse, error) {
	return s.search(ctx, query, opts, s.filter)
}

// SearchFiltered runs Search with an explicitly chosen filter
// strategy for A/B comparison against the configured one.
func (s *RetrievalService) SearchFiltered(ctx context.Context, query string, opts domain.SearchOptions, strategy domain.FilterStrategy) (*domain.RetrievalResponse, error) {
	filter, err := rerank.New(strategy, rerank.Config{
		Threshold:  s.threshold,
		Generation: s.generation,
	})
	if err != nil {
		return nil, err
	}

	opts.Rerank = true
	return s.search(ctx, query, opts, filter)
}

// search is the shared query pipeline.
func (s *RetrievalService) search(ctx context.Context, query string, opts domain.SearchOptions, filter rerank.Filter) (*domain.RetrievalResponse, error) {
	logger.Section("Query")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return &domain.RetrievalResponse{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.limit
	}

	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedded by %q (%d dims)", emb.Provider, emb.Dimension)

	fetch := limit
	if opts.Rerank {
		fetch = limit * overfetchFactor
	}

	var candidates []domain.SearchResult
	if opts.Hybrid {
		candidates, err = s.searcher.SearchHybrid(ctx, query, emb.Vector, fetch)
	} else {
		candidates, err = s.searcher.Search(ctx, emb.Vector, fetch)
	}
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug("Candidates: %d", len(candidates))

	response := &domain.RetrievalResponse{
		Results:           candidates,
		EmbeddingProvider: emb.Provider,
	}

	if opts.Rerank {
		results, stats, err := filter.Apply(ctx, query, candidates, limit)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		logger.Debug("Filter %s: %d -> %d (degraded=%t)",
			stats.Strategy, stats.CandidatesIn, stats.CandidatesOut, stats.Degraded)
		response.Results = results
		response.FilterStats = stats
	}

	// Confidence is a plain mean of returned similarities.
	response.Confidence = meanSimilarity(response.Results)
	logger.Info("Results: %d, confidence %.3f", len(response.Results), response.Confidence)
	return response, nil
}

// Ask retrieves context for the question and hands it to the
// generation collaborator. Shaping the prompt is this engine's job;
// the answer text is not: an unreachable collaborator degrades the
// answer instead of failing it.
func (s *RetrievalService) Ask(ctx context.Context, question string, opts domain.SearchOptions) (*domain.Answer, error) {
	response, err := s.Search(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	answer := &domain.Answer{
		Context:    buildContext(response.Results),
		Sources:    sourceNames(response.Results),
		Confidence: response.Confidence,
	}

	if s.generation == nil {
		logger.Warn("Generation service not configured, returning context only")
		answer.Degraded = true
		return answer, nil
	}

	prompt := fmt.Sprintf(
		"Answer the question using only the provided context. "+
			"If the context does not contain the answer, say so.\n\nQuestion: %s",
		question)

	text, err := s.generation.Generate(ctx, prompt, driven.GenerateOptions{
		Context: answer.Context,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Generation failed, returning context only: %v", err)
		answer.Degraded = true
		return answer, nil
	}

	answer.Text = text
	return answer, nil
}

// ListDocuments returns all indexed documents.
func (s *RetrievalService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// DeleteDocument removes a document and everything derived from it.
func (s *RetrievalService) DeleteDocument(ctx context.Context, id string) error {
	return s.store.DeleteDocument(ctx, id)
}

// Stats reports store entity counts.
func (s *RetrievalService) Stats(ctx context.Context) (*domain.StoreStats, error) {
	return s.store.Stats(ctx)
}

// ClearIndex removes all indexed data.
func (s *RetrievalService) ClearIndex(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// buildContext renders the source-attributed context block handed to
// the generation collaborator.
func buildContext(results []domain.SearchResult) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[Source: %s]\n%s", r.Document.Name, r.Chunk.Content)
	}
	return sb.String()
}

// sourceNames lists the distinct document names in rank order.
func sourceNames(results []domain.SearchResult) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, r := range results {
		if _, ok := seen[r.Document.Name]; ok {
			continue
		}
		seen[r.Document.Name] = struct{}{}
		names = append(names, r.Document.Name)
	}
	return names
}

// meanSimilarity is 0 for an empty set.
func meanSimilarity(results []domain.SearchResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Similarity
	}
	return sum / float64(len(results))
}
