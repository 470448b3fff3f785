// Package search provides vector search-index clients for retrieval
// augmentation. Two backends are supported: Azure AI Search and a
// SurrealDB HNSW index. The index schema is owned by whoever ingests
// the documents; this package only queries it.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docchat-io/docchat/internal/config"
)

// Document is one indexed text chunk returned by a search.
type Document struct {
	Title string `json:"title"`
	Chunk string `json:"chunk"`
}

// Index is the nearest-neighbor search contract.
type Index interface {
	// Search returns up to k chunks nearest to vector, in ranking order.
	Search(ctx context.Context, vector []float32, k int) ([]Document, error)

	// Close releases any backend connection.
	Close(ctx context.Context) error
}

// New creates the configured search index. Returns (nil, nil) when no
// search backend is configured; retrieval is then disabled.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (Index, error) {
	switch cfg.SearchProvider {
	case config.SearchDisabled:
		return nil, nil

	case config.SearchAzure:
		if cfg.AzureSearchEndpoint == "" || cfg.AzureSearchAPIKey == "" || cfg.AzureSearchIndex == "" {
			return nil, fmt.Errorf("azure search requires endpoint, API key, and index name")
		}
		return NewAzureIndex(cfg.AzureSearchEndpoint, cfg.AzureSearchAPIKey, cfg.AzureSearchIndex), nil

	case config.SearchSurreal:
		return NewSurrealIndex(ctx, cfg, logger)

	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.SearchProvider)
	}
}
