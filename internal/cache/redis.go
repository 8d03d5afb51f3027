// Package cache keeps in-progress match state in Redis so a match can be
// resumed after a restart.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/merev/ds-scoring-engine/internal/match"
)

const keyPrefix = "scoring:match:"

// RedisStateCache stores engine state as JSON with a TTL that is refreshed
// on every save.
type RedisStateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStateCache connects to Redis and checks the connection.
func NewRedisStateCache(addr, password string, db int, ttl time.Duration) (*RedisStateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, ttl), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration) *RedisStateCache {
	return &RedisStateCache{client: client, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + id
}

// Save stores s under the match id.
func (c *RedisStateCache) Save(ctx context.Context, id string, s match.State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	return c.client.Set(ctx, key(id), data, c.ttl).Err()
}

// Load returns the cached state of id. A missing key is not an error.
func (c *RedisStateCache) Load(ctx context.Context, id string) (match.State, bool, error) {
	data, err := c.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return match.State{}, false, nil
	}
	if err != nil {
		return match.State{}, false, fmt.Errorf("failed to get state: %w", err)
	}

	var s match.State
	if err := json.Unmarshal(data, &s); err != nil {
		return match.State{}, false, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return s, true, nil
}

// Delete drops the cached state of id.
func (c *RedisStateCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, key(id)).Err()
}

// Close closes the connection to Redis.
func (c *RedisStateCache) Close() error {
	return c.client.Close()
}
