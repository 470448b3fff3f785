package retriever_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat-io/docchat/internal/retriever"
	"github.com/docchat-io/docchat/internal/search"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeIndex struct {
	docs []search.Document
	err  error
	gotK int
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, k int) ([]search.Document, error) {
	f.gotK = k
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func (f *fakeIndex) Close(context.Context) error { return nil }

func TestRetrieveDisabledWithoutIndex(t *testing.T) {
	r := retriever.New(&fakeEmbedder{}, nil, nil, testLogger())

	assert.False(t, r.Enabled())
	assert.Empty(t, r.Retrieve(context.Background(), "anything"))
}

func TestRetrieveJoinsChunksInRankingOrder(t *testing.T) {
	idx := &fakeIndex{docs: []search.Document{
		{Title: "A", Chunk: "first chunk"},
		{Title: "B", Chunk: "second chunk"},
		{Title: "C", Chunk: "third chunk"},
	}}
	r := retriever.New(&fakeEmbedder{}, idx, nil, testLogger())

	got := r.Retrieve(context.Background(), "query")
	assert.Equal(t, "first chunk\n\nsecond chunk\n\nthird chunk", got)
	assert.Equal(t, retriever.TopK, idx.gotK)
}

func TestRetrieveAbsorbsEmbedError(t *testing.T) {
	idx := &fakeIndex{docs: []search.Document{{Chunk: "x"}}}
	r := retriever.New(&fakeEmbedder{err: errors.New("quota exceeded")}, idx, nil, testLogger())

	assert.Empty(t, r.Retrieve(context.Background(), "query"))
}

func TestRetrieveAbsorbsSearchError(t *testing.T) {
	idx := &fakeIndex{err: errors.New("index unreachable")}
	r := retriever.New(&fakeEmbedder{}, idx, nil, testLogger())

	assert.Empty(t, r.Retrieve(context.Background(), "query"))
}

func TestLookupSurfacesErrors(t *testing.T) {
	idx := &fakeIndex{err: errors.New("index unreachable")}
	r := retriever.New(&fakeEmbedder{}, idx, nil, testLogger())

	_, err := r.Lookup(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index unreachable")
}

func TestLookupUnconfigured(t *testing.T) {
	r := retriever.New(nil, nil, nil, testLogger())

	_, err := r.Lookup(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
