// Package store provides two-tier conversation persistence: a durable
// Redis tier with expiration and an in-process memory tier that backs
// every write and absorbs durable-tier failures.
package store

import (
	"context"

	"github.com/docchat-io/docchat/internal/models"
)

// Tier reports which storage tier an operation reached.
type Tier string

const (
	// TierRedis means the operation reached the durable tier.
	TierRedis Tier = "redis"

	// TierMemory means only the in-process map was touched.
	TierMemory Tier = "memory"
)

// Store is the conversation persistence contract. Implementations never
// fail hard: degraded durable-tier availability is reported through the
// returned Tier, not through errors.
type Store interface {
	// Get loads a conversation, preferring the durable tier.
	Get(ctx context.Context, id string) (models.Conversation, bool)

	// Save persists a conversation and reports the tier the write reached.
	Save(ctx context.Context, id string, conv models.Conversation) Tier

	// Delete removes a conversation from all tiers and reports the tier
	// the removal reached. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) Tier

	// Durable reports whether the durable tier is available.
	Durable() bool
}
