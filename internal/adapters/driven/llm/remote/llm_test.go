package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozy-max/recall/internal/core/domain"
	"github.com/ozy-max/recall/internal/core/ports/driven"
)

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, "Why is the sky blue?", req.Prompt)
		assert.Equal(t, "[Source: sky.txt]\nRayleigh scattering.", req.Context)
		assert.Equal(t, 64, req.MaxTokens)
		assert.InDelta(t, 0.7, req.Temperature, 1e-9)

		json.NewEncoder(w).Encode(generateResponse{Text: "Because of scattering."})
	}))
	defer server.Close()

	svc := NewGenerationService(Config{BaseURL: server.URL, Model: "test-model"})

	text, err := svc.Generate(context.Background(), "Why is the sky blue?", driven.GenerateOptions{
		Context:     "[Source: sky.txt]\nRayleigh scattering.",
		MaxTokens:   64,
		Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "Because of scattering.", text)
}

func TestGenerate_AppliesDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultMaxTokens, req.MaxTokens)
		assert.InDelta(t, DefaultTemperature, req.Temperature, 1e-9)

		json.NewEncoder(w).Encode(generateResponse{Text: "ok"})
	}))
	defer server.Close()

	svc := NewGenerationService(Config{BaseURL: server.URL})

	_, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	require.NoError(t, err)
}

func TestGenerate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := NewGenerationService(Config{BaseURL: server.URL})

	_, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestGenerate_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	svc := NewGenerationService(Config{BaseURL: server.URL})

	_, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
	}))
	defer server.Close()

	svc := NewGenerationService(Config{BaseURL: server.URL})
	assert.NoError(t, svc.Ping(context.Background()))

	assert.Equal(t, DefaultModel, NewGenerationService(Config{}).ModelName())
	assert.NoError(t, svc.Close())
}
