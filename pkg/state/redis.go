package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces view-state keys inside a shared database.
const DefaultRedisPrefix = "viewstate:"

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// RedisWithPrefix overrides the key prefix.
func RedisWithPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// RedisWithTTL expires entries after ttl instead of keeping them forever.
func RedisWithTTL(ttl time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// RedisStore is a Store backed by Redis, for deployments that keep view state
// server-side so it follows the user across browsers.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps an already-configured client.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("state: redis client is required")
	}
	s := &RedisStore{
		client: client,
		prefix: DefaultRedisPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// OpenRedisStore connects using a redis URL (redis://host:port/db) and pings
// before returning.
func OpenRedisStore(ctx context.Context, redisURL string, opts ...RedisStoreOption) (*RedisStore, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("state: parse redis url: %w", err)
	}
	client := redis.NewClient(parsed)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("state: connect redis: %w", err)
	}
	return NewRedisStore(client, opts...)
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, key string) (string, bool, error) {
	payload, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("state: redis get %q: %w", key, err)
	}
	return payload, true, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, key string, payload string) error {
	if err := s.client.Set(ctx, s.prefix+key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("state: redis set %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
