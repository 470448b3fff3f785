// Package retriever fetches supporting document context for a query by
// embedding it and running a nearest-neighbor search against the
// configured index.
package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/docchat-io/docchat/internal/metrics"
	"github.com/docchat-io/docchat/internal/search"
)

// TopK is the number of chunks requested from the index.
const TopK = 3

// Embedder turns a query into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever combines an embedder with a search index. A nil Retriever,
// or one constructed without an index, is a valid no-op.
type Retriever struct {
	embedder  Embedder
	index     search.Index
	collector *metrics.Collector
	logger    *slog.Logger
}

// New creates a retriever. index may be nil, which disables retrieval;
// collector may be nil, which disables timing collection.
func New(embedder Embedder, index search.Index, collector *metrics.Collector, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		embedder:  embedder,
		index:     index,
		collector: collector,
		logger:    logger,
	}
}

// Enabled reports whether retrieval is configured.
func (r *Retriever) Enabled() bool {
	return r != nil && r.index != nil && r.embedder != nil
}

// Retrieve returns the top-matching chunk texts joined by blank lines,
// in ranking order. Any failure is logged and treated as "no context
// available": the return is then the empty string.
func (r *Retriever) Retrieve(ctx context.Context, query string) string {
	if !r.Enabled() {
		return ""
	}

	docs, err := r.Lookup(ctx, query)
	if err != nil {
		r.logger.Warn("context retrieval failed, continuing without context", "error", err)
		return ""
	}

	chunks := make([]string, 0, len(docs))
	for _, doc := range docs {
		chunks = append(chunks, doc.Chunk)
	}
	return strings.Join(chunks, "\n\n")
}

// Lookup embeds the query and returns the raw top-k documents. Unlike
// Retrieve, errors are surfaced so the search endpoint can report them.
func (r *Retriever) Lookup(ctx context.Context, query string) ([]search.Document, error) {
	if !r.Enabled() {
		return nil, fmt.Errorf("search is not configured")
	}

	embedStart := time.Now()
	vector, err := r.embedder.Embed(ctx, query)
	r.collector.Record(metrics.OpEmbedding, time.Since(embedStart))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	searchStart := time.Now()
	docs, err := r.index.Search(ctx, vector, TopK)
	r.collector.Record(metrics.OpSearch, time.Since(searchStart))
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return docs, nil
}
