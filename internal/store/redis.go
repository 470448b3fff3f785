package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/docchat-io/docchat/internal/models"
)

// keyPrefix namespaces conversation keys in Redis.
const keyPrefix = "conv:"

// ConversationTTL is the fixed expiration applied to every durable write.
const ConversationTTL = 7 * 24 * time.Hour

// RedisStore is the durable tier. Conversations are stored as
// JSON-serialized turn sequences with a fixed TTL.
type RedisStore struct {
	client *redis.Client
}

var _ DurableStore = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies connectivity with a PING.
// A probe failure here permanently disables the durable tier: callers
// construct the store once at startup and there is no reconnect logic.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 5 * time.Second
	opts.WriteTimeout = 5 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Get loads a conversation. The second return is false on a clean miss.
func (s *RedisStore) Get(ctx context.Context, id string) (models.Conversation, bool, error) {
	val, err := s.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var conv models.Conversation
	if err := json.Unmarshal([]byte(val), &conv); err != nil {
		return nil, false, fmt.Errorf("decode conversation %q: %w", id, err)
	}
	return conv, true, nil
}

// Save writes the conversation with the fixed TTL.
func (s *RedisStore) Save(ctx context.Context, id string, conv models.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode conversation %q: %w", id, err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, data, ConversationTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the conversation key.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
