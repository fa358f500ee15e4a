// Package remote provides the generation service adapter: a thin HTTP
// client for the external generation collaborator.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ozy-max/recall/internal/core/domain"
	"github.com/ozy-max/recall/internal/core/ports/driven"
)

// Ensure GenerationService implements the interface.
var _ driven.GenerationService = (*GenerationService)(nil)

// Default configuration values.
const (
	DefaultBaseURL     = "http://localhost:11434"
	DefaultModel       = "llama3.2"
	DefaultTimeout     = 120 * time.Second
	DefaultMaxTokens   = 1024
	DefaultTemperature = 0.3
)

// Config holds configuration for the generation service.
type Config struct {
	// BaseURL is the generation endpoint base URL.
	BaseURL string

	// Model is the generation model name sent with each request.
	Model string

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration
}

// GenerationService produces completions over HTTP.
type GenerationService struct {
	client  *http.Client
	baseURL string
	model   string
}

// generateRequest is the generation endpoint request format.
type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Context     string  `json:"context,omitempty"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

// generateResponse is the generation endpoint response format.
type generateResponse struct {
	Text string `json:"text"`
}

// NewGenerationService creates a new remote generation service.
func NewGenerationService(cfg Config) *GenerationService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &GenerationService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Generate produces a text completion for the prompt.
func (s *GenerationService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}

	reqBody := generateRequest{
		Model:       s.model,
		Prompt:      prompt,
		Context:     opts.Context,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", fmt.Errorf("%w: status %d", domain.ErrGenerationUnavailable, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrGenerationUnavailable, resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrGenerationUnavailable, err)
	}

	return genResp.Text, nil
}

// ModelName returns the model sent with each request.
func (s *GenerationService) ModelName() string {
	return s.model
}

// Ping validates the endpoint is reachable.
func (s *GenerationService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", domain.ErrGenerationUnavailable, resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *GenerationService) Close() error {
	return nil
}
