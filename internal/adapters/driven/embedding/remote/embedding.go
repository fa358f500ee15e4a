// Package remote provides an embedding service adapter backed by an
// HTTP embedding endpoint.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ozy-max/recall/internal/core/domain"
	"github.com/ozy-max/recall/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768

	// DefaultRequestsPerSecond throttles indexing runs so a large
	// document does not hammer the endpoint.
	DefaultRequestsPerSecond = 10
)

// Config holds configuration for the remote embedding service.
type Config struct {
	// BaseURL is the embedding endpoint base URL.
	BaseURL string

	// Model is the embedding model name sent with each request.
	Model string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int

	// RequestsPerSecond caps the outbound request rate. Zero applies
	// the default; negative disables throttling.
	RequestsPerSecond float64
}

// EmbeddingService generates embeddings over HTTP.
type EmbeddingService struct {
	client     *http.Client
	limiter    *rate.Limiter
	baseURL    string
	model      string
	dimensions int
}

// embedRequest is the embedding endpoint request format.
type embedRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

// embedResponse is the embedding endpoint response format.
type embedResponse struct {
	Vector []float64 `json:"vector"`
}

// NewEmbeddingService creates a new remote embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    limiter,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) (*domain.Embedding, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	reqBody := embedRequest{
		Model: s.model,
		Text:  text,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/embeddings",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrProviderUnavailable, err)
	}
	if len(embedResp.Vector) == 0 {
		return nil, fmt.Errorf("%w: empty vector in response", domain.ErrProviderUnavailable)
	}

	vec := make([]float32, len(embedResp.Vector))
	for i, v := range embedResp.Vector {
		vec[i] = float32(v)
	}

	return &domain.Embedding{
		Vector:    vec,
		Dimension: len(vec),
		Provider:  s.model,
	}, nil
}

// Dimensions returns the configured embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the model sent with each request.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the endpoint is reachable.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
