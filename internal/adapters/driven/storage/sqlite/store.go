// Package sqlite provides the durable document/chunk/embedding store
// and the similarity search over it.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ozy-max/recall/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/ozy-max/recall/internal/core/domain"
	"github.com/ozy-max/recall/internal/core/ports/driven"
	"github.com/ozy-max/recall/internal/keywords"
)

// Ensure Store implements the storage ports.
var (
	_ driven.DocumentStore  = (*Store)(nil)
	_ driven.VectorSearcher = (*Store)(nil)
)

// Store is the SQLite-backed document store. A single connection pool
// with WAL journaling gives the single-writer/multiple-reader
// discipline the engine needs; no multi-writer transaction semantics
// are provided.
type Store struct {
	db       *sql.DB
	path     string
	synonyms *keywords.SynonymTable
}

// NewStore creates a store at the specified data directory.
// If dataDir is empty, defaults to ~/.recall/data/index.db.
// synonyms may be nil; the built-in table is used then.
func NewStore(dataDir string, synonyms *keywords.SynonymTable) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".recall", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// foreign_keys goes in the DSN so every pooled connection gets it;
	// cascading deletes depend on the pragma.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if synonyms == nil {
		synonyms = keywords.NewSynonymTable(keywords.DefaultSynonyms())
	}

	s := &Store{
		db:       db,
		path:     dbPath,
		synonyms: synonyms,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Documents ====================

// SaveDocument stores a document. Saving an existing ID updates it;
// re-indexing the same name under a fresh ID is allowed.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, name, type, source_path, content, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			source_path = excluded.source_path,
			content = excluded.content,
			metadata = excluded.metadata
	`, doc.ID, doc.Name, string(doc.Type), doc.SourcePath, doc.Content,
		string(metadataJSON), doc.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, source_path, content, metadata, created_at
		FROM documents WHERE id = ?
	`, id)

	return scanDocument(row.Scan)
}

// ListDocuments returns all documents, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, source_path, content, metadata, created_at
		FROM documents ORDER BY created_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// DeleteDocument removes a document; its chunks and their embeddings
// go with it through the foreign-key cascade.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Chunks ====================

// SaveChunk stores a chunk under its parent document.
func (s *Store) SaveChunk(ctx context.Context, chunk *domain.Chunk) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chunks (id, document_id, position, content, start_offset, end_offset)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			position = excluded.position,
			content = excluded.content,
			start_offset = excluded.start_offset,
			end_offset = excluded.end_offset
	`, chunk.ID, chunk.DocumentID, chunk.Position, chunk.Content,
		chunk.StartOffset, chunk.EndOffset)

	if err != nil {
		return fmt.Errorf("saving chunk: %w", err)
	}
	return nil
}

// GetChunks returns a document's chunks ordered by position.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, position, content, start_offset, end_offset
		FROM chunks WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Position,
			&chunk.Content, &chunk.StartOffset, &chunk.EndOffset); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// ==================== Embeddings ====================

// SaveEmbedding stores the embedding for a chunk, replacing any
// previous one.
func (s *Store) SaveEmbedding(ctx context.Context, emb *domain.Embedding) error {
	if emb.Dimension != len(emb.Vector) {
		return fmt.Errorf("%w: vector has %d values, dimension says %d",
			domain.ErrCorruptVector, len(emb.Vector), emb.Dimension)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (chunk_id, vector, dimension, provider)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension,
			provider = excluded.provider
	`, emb.ChunkID, float32SliceToBytes(emb.Vector), emb.Dimension, emb.Provider)

	if err != nil {
		return fmt.Errorf("saving embedding: %w", err)
	}
	return nil
}

// ==================== Stats and reset ====================

// Stats reports entity counts.
func (s *Store) Stats(ctx context.Context) (*domain.StoreStats, error) {
	stats := &domain.StoreStats{}
	for _, q := range []struct {
		query string
		dst   *int
	}{
		{"SELECT COUNT(*) FROM documents", &stats.Documents},
		{"SELECT COUNT(*) FROM chunks", &stats.Chunks},
		{"SELECT COUNT(*) FROM embeddings", &stats.Embeddings},
	} {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dst); err != nil {
			return nil, fmt.Errorf("counting rows: %w", err)
		}
	}
	return stats, nil
}

// Clear removes all documents, chunks and embeddings. The result is
// the same empty state regardless of prior contents.
func (s *Store) Clear(ctx context.Context) error {
	// Documents cascade, but the children are deleted explicitly too
	// so a store with pre-cascade orphans still ends up empty.
	for _, table := range []string{"embeddings", "chunks", "documents"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// ==================== Helper functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
// A blob whose length is not a multiple of 4 is corrupt.
func bytesToFloat32Slice(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: blob length %d", domain.ErrCorruptVector, len(data))
	}
	if len(data) == 0 {
		return nil, nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats, nil
}

// scanDocument scans a document from any row scanner.
func scanDocument(scan func(dest ...any) error) (*domain.Document, error) {
	var doc domain.Document
	var docType string
	var metadataJSON string

	if err := scan(&doc.ID, &doc.Name, &docType, &doc.SourcePath,
		&doc.Content, &metadataJSON, &doc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Type = domain.DocumentType(docType)
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &doc, nil
}
