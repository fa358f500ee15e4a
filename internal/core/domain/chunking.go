package domain

import "fmt"

// ChunkingStrategy selects how document text is split into chunks.
type ChunkingStrategy string

// Supported chunking strategies.
const (
	// ChunkBySize is a fixed-size sliding window with overlap.
	ChunkBySize ChunkingStrategy = "size"

	// ChunkBySentences groups every N sentences.
	ChunkBySentences ChunkingStrategy = "sentences"

	// ChunkByParagraphs splits on blank lines.
	ChunkByParagraphs ChunkingStrategy = "paragraphs"

	// ChunkSmart greedily packs paragraphs up to a size limit.
	ChunkSmart ChunkingStrategy = "smart"

	// ChunkCode flushes on brace-depth boundaries.
	ChunkCode ChunkingStrategy = "code"
)

// ChunkingConfig carries per-strategy parameters.
type ChunkingConfig struct {
	// Strategy selects the splitting algorithm.
	Strategy ChunkingStrategy

	// ChunkSize is the window size for ChunkBySize and the limit for
	// ChunkSmart (characters).
	ChunkSize int

	// Overlap is the window overlap for ChunkBySize (characters).
	// Must be strictly smaller than ChunkSize.
	Overlap int

	// SentencesPerChunk groups sentences for ChunkBySentences.
	SentencesPerChunk int

	// Language hints the source language for ChunkCode.
	Language string
}

// DefaultChunkingConfig returns the configuration used when the
// caller does not specify one.
func DefaultChunkingConfig(strategy ChunkingStrategy) ChunkingConfig {
	return ChunkingConfig{
		Strategy:          strategy,
		ChunkSize:         1000,
		Overlap:           200,
		SentencesPerChunk: 5,
	}
}

// Validate rejects invalid configurations before any I/O is attempted.
func (c ChunkingConfig) Validate() error {
	switch c.Strategy {
	case ChunkBySize:
		if c.ChunkSize <= 0 {
			return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
		}
		if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
			return fmt.Errorf("%w: overlap %d must be in [0, chunk size %d)", ErrInvalidConfig, c.Overlap, c.ChunkSize)
		}
	case ChunkBySentences:
		if c.SentencesPerChunk <= 0 {
			return fmt.Errorf("%w: sentences per chunk must be positive, got %d", ErrInvalidConfig, c.SentencesPerChunk)
		}
	case ChunkSmart:
		if c.ChunkSize <= 0 {
			return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
		}
	case ChunkByParagraphs, ChunkCode:
		// No parameters.
	default:
		return fmt.Errorf("%w: unknown chunking strategy %q", ErrInvalidConfig, c.Strategy)
	}
	return nil
}

// StrategyForType picks the default chunking strategy for a document
// type: code files get the brace-aware splitter, everything else the
// structure-aware one.
func StrategyForType(t DocumentType) ChunkingStrategy {
	if t == DocumentTypeCode {
		return ChunkCode
	}
	return ChunkSmart
}
