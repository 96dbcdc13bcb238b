package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hr95savage/screenshotter/internal/types"
)

// DefaultPrefix namespaces status keys.
const DefaultPrefix = "screenshotter:run:"

// RedisStatusStore stores run status in Redis.
type RedisStatusStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStatusStore initializes a Redis-backed StatusStore.
func NewRedisStatusStore(addr, prefix string, ttl time.Duration) *RedisStatusStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisStatusStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
		ttl:    ttl,
	}
}

// Ping checks that the server is reachable.
func (s *RedisStatusStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStatusStore) Close() error {
	return s.client.Close()
}

// SetStatus writes the status record to Redis.
func (s *RedisStatusStore) SetStatus(ctx context.Context, status types.RunStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+status.RunID, payload, s.ttl).Err()
}

// GetStatus reads the status record from Redis.
func (s *RedisStatusStore) GetStatus(ctx context.Context, runID string) (types.RunStatus, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+runID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return types.RunStatus{}, false, nil
		}
		return types.RunStatus{}, false, err
	}

	var status types.RunStatus
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return types.RunStatus{}, false, err
	}
	return status, true, nil
}
