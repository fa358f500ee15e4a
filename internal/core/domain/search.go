package domain

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results (default 10).
	Limit int

	// Hybrid enables keyword-boosted ranking on top of vector
	// similarity. Defaults to true when unset via DefaultSearchOptions.
	Hybrid bool

	// Rerank enables the configured second-pass filter. When set, the
	// initial hybrid search over-fetches to give the filter material.
	Rerank bool
}

// DefaultSearchOptions returns the options used when the caller
// passes a zero value.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{Limit: 10, Hybrid: true}
}

// SearchResult is a single ranked hit. It is derived, never persisted.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Document is the chunk's parent document.
	Document Document

	// Similarity is the final score in [0,1] after any keyword boost.
	Similarity float64

	// RawSimilarity is the cosine similarity before boosting.
	RawSimilarity float64

	// Boost is the keyword boost added to RawSimilarity (0 when none).
	Boost float64
}

// RetrievalResponse is the outcome of a query pipeline run.
type RetrievalResponse struct {
	// Results are the final ranked hits.
	Results []SearchResult

	// Confidence is the mean similarity of the returned set.
	Confidence float64

	// EmbeddingProvider tags which provider embedded the query.
	EmbeddingProvider string

	// FilterStats reports the rerank/filter pass, nil when no filter ran.
	FilterStats *FilterStats
}

// Answer is the outcome of a retrieve-then-generate run.
type Answer struct {
	// Text is the generated answer. Empty when generation degraded.
	Text string

	// Context is the source-attributed context block handed to the
	// generation collaborator.
	Context string

	// Sources names the documents the context was drawn from.
	Sources []string

	// Confidence is the mean similarity of the retrieved set.
	Confidence float64

	// Degraded is true when the generation collaborator was
	// unreachable and only retrieved context is returned.
	Degraded bool
}

// FilterStrategy selects the second-pass candidate filter.
type FilterStrategy string

// Supported filter strategies.
const (
	FilterPassthrough FilterStrategy = "passthrough"
	FilterThreshold   FilterStrategy = "threshold"
	FilterLLM         FilterStrategy = "llm"
)

// FilterStats reports before/after numbers for a filter pass,
// kept for observability and A/B comparison.
type FilterStats struct {
	// Strategy names the filter that actually ran.
	Strategy FilterStrategy

	// CandidatesIn and CandidatesOut are the list sizes around the pass.
	CandidatesIn  int
	CandidatesOut int

	// MeanSimilarityBefore and MeanSimilarityAfter are mean scores
	// over the input and output sets (0 for empty sets).
	MeanSimilarityBefore float64
	MeanSimilarityAfter  float64

	// DroppedChunkIDs identifies candidates removed by the pass.
	DroppedChunkIDs []string

	// Degraded is true when the configured strategy was unavailable
	// and a fallback strategy ran instead.
	Degraded bool
}

// IndexSummary reports a per-document indexing run. Partial success is
// a first-class outcome: ChunksFailed > 0 with ChunksIndexed > 0 is
// not an error.
type IndexSummary struct {
	// DocumentID identifies the persisted document.
	DocumentID string

	// DocumentName echoes the document name for logging.
	DocumentName string

	// Strategy names the chunking strategy used.
	Strategy ChunkingStrategy

	// ChunksTotal, ChunksIndexed and ChunksFailed count the per-chunk
	// outcomes. ChunksTotal = ChunksIndexed + ChunksFailed.
	ChunksTotal   int
	ChunksIndexed int
	ChunksFailed  int
}
