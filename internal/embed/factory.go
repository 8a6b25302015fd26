package embed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/askcatalog/askcatalog/internal/config"
	"github.com/askcatalog/askcatalog/internal/errors"
)

// NewFromConfig builds the configured embedding provider, wrapped in an
// LRU cache when caching is enabled. Provider construction failures are
// reported as provider errors: callers must not silently degrade to
// lexical-only behavior.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Embedder, error) {
	var (
		inner Embedder
		err   error
	)

	provider := strings.ToLower(cfg.Embeddings.Provider)
	switch provider {
	case "static", "":
		inner = NewStaticEmbedder()

	case "ollama":
		inner = NewOllamaEmbedder(OllamaConfig{
			Host:       cfg.Embeddings.OllamaHost,
			Model:      cfg.Embeddings.Model,
			Dimensions: cfg.Embeddings.Dimensions,
			BatchSize:  cfg.Embeddings.BatchSize,
		})

	case "openai":
		inner, err = NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     cfg.Embeddings.OpenAIAPIKey,
			BaseURL:    cfg.Embeddings.OpenAIBaseURL,
			Model:      cfg.Embeddings.Model,
			Dimensions: cfg.Embeddings.Dimensions,
			BatchSize:  cfg.Embeddings.BatchSize,
		})
		if err != nil {
			return nil, errors.ProviderError("failed to create openai embedder", err)
		}

	default:
		return nil, errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown embeddings provider: %s", provider), nil)
	}

	if !inner.Available(ctx) {
		_ = inner.Close()
		return nil, errors.ProviderError(
			fmt.Sprintf("embedding provider %q is not available", provider), nil)
	}

	slog.Debug("embedding provider ready",
		slog.String("provider", provider),
		slog.String("model", inner.ModelName()))

	if cfg.Embeddings.CacheSize > 0 {
		return NewCachedEmbedder(inner, cfg.Embeddings.CacheSize), nil
	}
	return inner, nil
}
