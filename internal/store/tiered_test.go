package store_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat-io/docchat/internal/models"
	"github.com/docchat-io/docchat/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// fakeDurable implements store.DurableStore with switchable failure.
type fakeDurable struct {
	data map[string]models.Conversation
	fail bool
}

func newFakeDurable() *fakeDurable {
	return &fakeDurable{data: make(map[string]models.Conversation)}
}

func (f *fakeDurable) Get(_ context.Context, id string) (models.Conversation, bool, error) {
	if f.fail {
		return nil, false, errors.New("connection refused")
	}
	conv, ok := f.data[id]
	return conv, ok, nil
}

func (f *fakeDurable) Save(_ context.Context, id string, conv models.Conversation) error {
	if f.fail {
		return errors.New("connection refused")
	}
	f.data[id] = conv
	return nil
}

func (f *fakeDurable) Delete(_ context.Context, id string) error {
	if f.fail {
		return errors.New("connection refused")
	}
	delete(f.data, id)
	return nil
}

func (f *fakeDurable) Close() error { return nil }

func sampleConversation() models.Conversation {
	conv := models.NewConversation()
	return append(conv, models.NewTurn(models.RoleUser, "hello"))
}

func TestMemoryOnlySaveReportsMemoryTier(t *testing.T) {
	s := store.NewTieredStore(nil, testLogger())
	ctx := context.Background()

	tier := s.Save(ctx, "c1", sampleConversation())
	assert.Equal(t, store.TierMemory, tier)
	assert.False(t, s.Durable())

	conv, ok := s.Get(ctx, "c1")
	require.True(t, ok)
	assert.Len(t, conv, 2)
}

func TestMemoryOnlyDelete(t *testing.T) {
	s := store.NewTieredStore(nil, testLogger())
	ctx := context.Background()

	s.Save(ctx, "c1", sampleConversation())
	tier := s.Delete(ctx, "c1")
	assert.Equal(t, store.TierMemory, tier)

	_, ok := s.Get(ctx, "c1")
	assert.False(t, ok)

	// Deleting an unknown id is not an error.
	tier = s.Delete(ctx, "never-seen")
	assert.Equal(t, store.TierMemory, tier)
}

func TestDurableSaveReportsRedisTier(t *testing.T) {
	durable := newFakeDurable()
	s := store.NewTieredStore(durable, testLogger())
	ctx := context.Background()

	tier := s.Save(ctx, "c1", sampleConversation())
	assert.Equal(t, store.TierRedis, tier)
	assert.True(t, s.Durable())
	assert.Contains(t, durable.data, "c1")
}

func TestGetPrefersDurableTier(t *testing.T) {
	durable := newFakeDurable()
	s := store.NewTieredStore(durable, testLogger())
	ctx := context.Background()

	durableConv := append(sampleConversation(), models.NewTurn(models.RoleAssistant, "from redis"))
	durable.data["c1"] = durableConv

	conv, ok := s.Get(ctx, "c1")
	require.True(t, ok)
	assert.Equal(t, "from redis", conv[len(conv)-1].Text())
}

func TestDurableFailureDegradesToMemory(t *testing.T) {
	durable := newFakeDurable()
	s := store.NewTieredStore(durable, testLogger())
	ctx := context.Background()

	// Healthy save lands in both tiers.
	s.Save(ctx, "c1", sampleConversation())

	// With the durable tier failing, every operation still succeeds via
	// the memory map and save reports non-durable persistence.
	durable.fail = true

	conv, ok := s.Get(ctx, "c1")
	require.True(t, ok, "get must fall back to memory on durable error")
	assert.Len(t, conv, 2)

	tier := s.Save(ctx, "c1", append(conv, models.NewTurn(models.RoleAssistant, "hi")))
	assert.Equal(t, store.TierMemory, tier)

	tier = s.Delete(ctx, "c1")
	assert.Equal(t, store.TierMemory, tier)
	_, ok = s.Get(ctx, "c1")
	assert.False(t, ok, "memory tier must be cleared even when durable delete fails")
}

func TestGetReturnsCopy(t *testing.T) {
	s := store.NewTieredStore(nil, testLogger())
	ctx := context.Background()

	s.Save(ctx, "c1", sampleConversation())

	conv, ok := s.Get(ctx, "c1")
	require.True(t, ok)
	_ = append(conv, models.NewTurn(models.RoleAssistant, "unpersisted"))

	again, ok := s.Get(ctx, "c1")
	require.True(t, ok)
	assert.Len(t, again, 2, "mutating a loaded conversation must not leak into the store")
}
