package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates a configuration value (chunk size,
	// overlap, strategy name) is invalid. Fatal: rejected before I/O.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDimensionMismatch indicates two vectors of different length
	// were compared. Never resolved by truncation.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrProviderUnavailable indicates the remote embedding service
	// is unreachable. Recovered via the local fallback provider.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrGenerationUnavailable indicates the generation collaborator
	// is unreachable. Features degrade rather than fail.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrCorruptVector indicates a stored vector blob does not match
	// its recorded dimension. Surfaced per-row, never aborts a scan.
	ErrCorruptVector = errors.New("corrupt stored vector")

	// ErrEmptyContent indicates a document with no indexable text.
	ErrEmptyContent = errors.New("empty document content")
)
