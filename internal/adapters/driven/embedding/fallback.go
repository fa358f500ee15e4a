// Package embedding composes the remote and local embedding services
// into the provider the pipelines actually use: remote first when
// configured, silent degradation to the deterministic local embedder
// on any remote failure.
package embedding

import (
	"context"

	"github.com/ozy-max/recall/internal/core/domain"
	"github.com/ozy-max/recall/internal/core/ports/driven"
	"github.com/ozy-max/recall/internal/logger"
)

// Ensure FallbackService implements the interface.
var _ driven.EmbeddingService = (*FallbackService)(nil)

// FallbackService wraps a preferred (remote) service and a fallback
// (local) service. Callers never see a remote failure: the returned
// embedding's Provider field records which service answered.
type FallbackService struct {
	remote   driven.EmbeddingService // nil when remote is not configured
	fallback driven.EmbeddingService
}

// NewFallbackService creates the composed provider. remote may be nil,
// in which case every call goes straight to fallback.
func NewFallbackService(remote, fallback driven.EmbeddingService) *FallbackService {
	return &FallbackService{
		remote:   remote,
		fallback: fallback,
	}
}

// Embed tries the remote service first, then degrades to the fallback.
func (s *FallbackService) Embed(ctx context.Context, text string) (*domain.Embedding, error) {
	if s.remote != nil {
		emb, err := s.remote.Embed(ctx, text)
		if err == nil {
			return emb, nil
		}
		// Cancellation is the caller's decision, not a degradation.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Remote embedding failed, falling back to local: %v", err)
	}
	return s.fallback.Embed(ctx, text)
}

// Dimensions returns the remote dimensions when remote is configured,
// matching the vectors the store will mostly hold.
func (s *FallbackService) Dimensions() int {
	if s.remote != nil {
		return s.remote.Dimensions()
	}
	return s.fallback.Dimensions()
}

// ModelName names the preferred service.
func (s *FallbackService) ModelName() string {
	if s.remote != nil {
		return s.remote.ModelName()
	}
	return s.fallback.ModelName()
}

// Ping reports reachability of the preferred service. The fallback is
// always available, so a failed remote ping is informational only.
func (s *FallbackService) Ping(ctx context.Context) error {
	if s.remote != nil {
		return s.remote.Ping(ctx)
	}
	return s.fallback.Ping(ctx)
}

// Close releases both services.
func (s *FallbackService) Close() error {
	var err error
	if s.remote != nil {
		err = s.remote.Close()
	}
	if cerr := s.fallback.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
