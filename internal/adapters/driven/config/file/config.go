// Package file provides the TOML configuration for the engine,
// including the hand-curated keyword synonym table. The table is
// swappable data, not logic: it can be edited on disk and hot-reloaded
// while the engine runs.
package file

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/ozy-max/recall/internal/core/domain"
	"github.com/ozy-max/recall/internal/keywords"
)

// Config is the engine configuration file layout.
type Config struct {
	Embedding  EmbeddingConfig     `toml:"embedding"`
	Generation GenerationConfig    `toml:"generation"`
	Chunking   ChunkingConfig      `toml:"chunking"`
	Search     SearchConfig        `toml:"search"`
	Synonyms   map[string][]string `toml:"synonyms"`
}

// EmbeddingConfig configures the embedding provider chain.
type EmbeddingConfig struct {
	// UseRemote enables the remote provider; the deterministic local
	// fallback is always present. An explicit value injected at
	// construction, not ambient mutable state.
	UseRemote bool `toml:"use_remote"`

	BaseURL           string  `toml:"base_url"`
	Model             string  `toml:"model"`
	Dimensions        int     `toml:"dimensions"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// GenerationConfig configures the generation collaborator.
type GenerationConfig struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ChunkingConfig carries the default chunking parameters.
type ChunkingConfig struct {
	ChunkSize         int `toml:"chunk_size"`
	Overlap           int `toml:"overlap"`
	SentencesPerChunk int `toml:"sentences_per_chunk"`
}

// SearchConfig carries query pipeline defaults.
type SearchConfig struct {
	// Filter selects the rerank strategy: passthrough, threshold, llm.
	Filter string `toml:"filter"`

	// Threshold is the similarity cutoff for the threshold filter.
	Threshold float64 `toml:"threshold"`

	// DefaultLimit is the result count when the caller gives none.
	DefaultLimit int `toml:"default_limit"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			UseRemote:         false,
			Model:             "nomic-embed-text",
			Dimensions:        384,
			TimeoutSeconds:    30,
			RequestsPerSecond: 10,
		},
		Generation: GenerationConfig{
			Enabled:        false,
			Model:          "llama3.2",
			TimeoutSeconds: 120,
		},
		Chunking: ChunkingConfig{
			ChunkSize:         1000,
			Overlap:           200,
			SentencesPerChunk: 5,
		},
		Search: SearchConfig{
			Filter:       string(domain.FilterPassthrough),
			Threshold:    0.3,
			DefaultLimit: 10,
		},
		Synonyms: keywords.DefaultSynonyms(),
	}
}

// Load reads the configuration file, filling gaps with defaults.
// A missing file yields the defaults without error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate rejects invalid values before any component is built.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", domain.ErrInvalidConfig)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("%w: overlap must be in [0, chunk_size)", domain.ErrInvalidConfig)
	}
	if c.Chunking.SentencesPerChunk <= 0 {
		return fmt.Errorf("%w: sentences_per_chunk must be positive", domain.ErrInvalidConfig)
	}

	switch domain.FilterStrategy(c.Search.Filter) {
	case domain.FilterPassthrough, domain.FilterThreshold, domain.FilterLLM, "":
	default:
		return fmt.Errorf("%w: unknown filter %q", domain.ErrInvalidConfig, c.Search.Filter)
	}

	if c.Search.Threshold < 0 || c.Search.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be in [0, 1]", domain.ErrInvalidConfig)
	}
	return nil
}

// ChunkingConfigFor builds the domain chunking configuration for a
// strategy from the file defaults.
func (c *Config) ChunkingConfigFor(strategy domain.ChunkingStrategy) domain.ChunkingConfig {
	return domain.ChunkingConfig{
		Strategy:          strategy,
		ChunkSize:         c.Chunking.ChunkSize,
		Overlap:           c.Chunking.Overlap,
		SentencesPerChunk: c.Chunking.SentencesPerChunk,
	}
}
