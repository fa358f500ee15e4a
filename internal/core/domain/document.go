package domain

import "time"

// DocumentType classifies document content for chunking strategy selection.
type DocumentType string

// Supported document types.
const (
	DocumentTypeText     DocumentType = "text"
	DocumentTypeMarkdown DocumentType = "markdown"
	DocumentTypeCode     DocumentType = "code"
)

// Document represents an ingested document.
// It is the unit of ownership: deleting a document cascades to its
// chunks and their embeddings.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the human-readable name, typically a file name.
	// Hybrid search matches query keywords against it.
	Name string

	// Type classifies the content (text, markdown, code).
	Type DocumentType

	// SourcePath is the original file path, empty for raw text.
	SourcePath string

	// Content is the full raw text before chunking.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]string

	// CreatedAt is when the document was indexed.
	CreatedAt time.Time
}

// Chunk is a contiguous slice of a document's text, the atomic
// retrieval unit. Chunks are never mutated after creation.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Position is the ordinal position within the document,
	// gapless from 0.
	Position int

	// Content is the text of this chunk.
	Content string

	// StartOffset and EndOffset index into the original document
	// content for traceability back to source.
	StartOffset int
	EndOffset   int
}

// Embedding is the vector representation of a chunk. At most one
// current embedding exists per chunk.
type Embedding struct {
	// ChunkID links to the chunk this vector represents.
	ChunkID string

	// Vector is the fixed-dimension numeric representation.
	Vector []float32

	// Dimension is stored alongside the vector so a query vector of
	// a different length is detectable rather than silently mis-scored.
	Dimension int

	// Provider tags which embedding provider produced the vector
	// (remote model name or "local").
	Provider string
}

// StoreStats reports entity counts for the whole store.
type StoreStats struct {
	Documents  int
	Chunks     int
	Embeddings int
}
