// Package recall is a local-first retrieval-augmented-generation
// engine: it ingests text and code documents, chunks and embeds them,
// stores everything in a local SQLite database and answers similarity
// queries with hybrid keyword-boosted ranking and optional reranking.
//
// The engine is a library; there is no CLI. A host application builds
// an Engine from configuration and drives it through the
// IndexingService and RetrievalService interfaces.
package recall

import (
	"fmt"
	"time"

	"github.com/ozy-max/recall/internal/adapters/driven/config/file"
	"github.com/ozy-max/recall/internal/adapters/driven/embedding"
	"github.com/ozy-max/recall/internal/adapters/driven/embedding/local"
	"github.com/ozy-max/recall/internal/adapters/driven/embedding/remote"
	llmremote "github.com/ozy-max/recall/internal/adapters/driven/llm/remote"
	"github.com/ozy-max/recall/internal/adapters/driven/storage/sqlite"
	"github.com/ozy-max/recall/internal/core/domain"
	"github.com/ozy-max/recall/internal/core/ports/driven"
	"github.com/ozy-max/recall/internal/core/ports/driving"
	"github.com/ozy-max/recall/internal/core/services"
	"github.com/ozy-max/recall/internal/keywords"
	"github.com/ozy-max/recall/internal/logger"
	"github.com/ozy-max/recall/internal/rerank"
)

// Options configures engine construction.
type Options struct {
	// DataDir is where the SQLite database lives.
	// Empty means ~/.recall/data.
	DataDir string

	// ConfigPath is the TOML configuration file. Empty means built-in
	// defaults and no synonym hot reload.
	ConfigPath string
}

// Engine owns the wired services and their resources.
type Engine struct {
	Indexing  driving.IndexingService
	Retrieval driving.RetrievalService

	store      *sqlite.Store
	embedder   driven.EmbeddingService
	generation driven.GenerationService
	watcher    *file.SynonymWatcher
}

// New builds an engine from options.
func New(opts Options) (*Engine, error) {
	cfg, err := file.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	synonyms := keywords.NewSynonymTable(cfg.Synonyms)

	store, err := sqlite.NewStore(opts.DataDir, synonyms)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	// Remote embedding is optional; the deterministic local embedder
	// always backs it so indexing keeps working offline.
	var remoteEmb driven.EmbeddingService
	if cfg.Embedding.UseRemote {
		remoteEmb = remote.NewEmbeddingService(remote.Config{
			BaseURL:           cfg.Embedding.BaseURL,
			Model:             cfg.Embedding.Model,
			Timeout:           time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
			Dimensions:        cfg.Embedding.Dimensions,
			RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		})
	}
	embedder := embedding.NewFallbackService(remoteEmb, local.New())

	var generation driven.GenerationService
	if cfg.Generation.Enabled {
		generation = llmremote.NewGenerationService(llmremote.Config{
			BaseURL: cfg.Generation.BaseURL,
			Model:   cfg.Generation.Model,
			Timeout: time.Duration(cfg.Generation.TimeoutSeconds) * time.Second,
		})
	}

	filterCfg := rerank.Config{Threshold: cfg.Search.Threshold}
	if generation != nil {
		filterCfg.Generation = generation
	}
	filter, err := rerank.New(domain.FilterStrategy(cfg.Search.Filter), filterCfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	e := &Engine{
		Indexing: services.NewIndexingService(store, embedder, domain.ChunkingConfig{
			ChunkSize:         cfg.Chunking.ChunkSize,
			Overlap:           cfg.Chunking.Overlap,
			SentencesPerChunk: cfg.Chunking.SentencesPerChunk,
		}),
		Retrieval: services.NewRetrievalService(
			store, store, embedder, generation,
			filter, cfg.Search.Threshold, cfg.Search.DefaultLimit,
		),
		store:      store,
		embedder:   embedder,
		generation: generation,
	}

	if opts.ConfigPath != "" {
		watcher, err := file.WatchSynonyms(opts.ConfigPath, synonyms)
		if err != nil {
			// The engine works without hot reload; the table keeps
			// its loaded contents.
			logger.Warn("Synonym hot reload disabled: %v", err)
		} else {
			e.watcher = watcher
		}
	}

	return e, nil
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	var first error
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			first = err
		}
	}
	if err := e.embedder.Close(); err != nil && first == nil {
		first = err
	}
	if e.generation != nil {
		if err := e.generation.Close(); err != nil && first == nil {
			first = err
		}
	}
	if err := e.store.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
