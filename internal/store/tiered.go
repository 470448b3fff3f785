package store

import (
	"context"
	"log/slog"

	"github.com/docchat-io/docchat/internal/models"
)

// DurableStore is the contract of the durable tier. RedisStore is the
// production implementation; tests substitute fakes.
type DurableStore interface {
	Get(ctx context.Context, id string) (models.Conversation, bool, error)
	Save(ctx context.Context, id string, conv models.Conversation) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// TieredStore composes the memory tier with an optional durable tier.
// Every save writes through to memory; the durable tier is written when
// configured and reachable. Durable-tier errors are logged and absorbed,
// never surfaced to the caller.
type TieredStore struct {
	memory  *MemoryStore
	durable DurableStore
	logger  *slog.Logger
}

var _ Store = (*TieredStore)(nil)

// NewTieredStore creates a tiered store. durable may be nil, which
// leaves the store memory-only for the process lifetime.
func NewTieredStore(durable DurableStore, logger *slog.Logger) *TieredStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TieredStore{
		memory:  NewMemoryStore(),
		durable: durable,
		logger:  logger,
	}
}

// Get prefers the durable tier and falls back to memory on miss or error.
func (s *TieredStore) Get(ctx context.Context, id string) (models.Conversation, bool) {
	if s.durable != nil {
		conv, ok, err := s.durable.Get(ctx, id)
		if err != nil {
			s.logger.Warn("durable get failed, falling back to memory", "id", id, "error", err)
		} else if ok {
			return conv, true
		}
	}
	return s.memory.Get(id)
}

// Save writes to memory unconditionally, then to the durable tier when
// available. Returns the tier the write reached.
func (s *TieredStore) Save(ctx context.Context, id string, conv models.Conversation) Tier {
	s.memory.Save(id, conv)

	if s.durable == nil {
		return TierMemory
	}
	if err := s.durable.Save(ctx, id, conv); err != nil {
		s.logger.Warn("durable save failed, conversation held in memory only", "id", id, "error", err)
		return TierMemory
	}
	return TierRedis
}

// Delete removes the conversation from both tiers independently.
func (s *TieredStore) Delete(ctx context.Context, id string) Tier {
	s.memory.Delete(id)

	if s.durable == nil {
		return TierMemory
	}
	if err := s.durable.Delete(ctx, id); err != nil {
		s.logger.Warn("durable delete failed", "id", id, "error", err)
		return TierMemory
	}
	return TierRedis
}

// Durable reports whether the durable tier is configured.
func (s *TieredStore) Durable() bool {
	return s.durable != nil
}

// Close releases the durable-tier connection, if any.
func (s *TieredStore) Close() error {
	if s.durable != nil {
		return s.durable.Close()
	}
	return nil
}
