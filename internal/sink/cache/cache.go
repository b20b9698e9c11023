// Package cache memoizes compiled query statements in Redis, keyed by
// the hash of the inputs that determine them. Because the query
// translator is deterministic (spec.md §8), identical
// (domain, design, paradigm, query) inputs never need retranslating.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatementCache wraps a Redis client with the get/set shape the query
// translator and schema generator need.
type StatementCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a StatementCache backed by the given Redis client.
func New(client *redis.Client, ttl time.Duration) *StatementCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &StatementCache{client: client, ttl: ttl}
}

// Key derives a cache key from the compiled statement's inputs.
func Key(domainHash, designHash, paradigm, queryHash string) string {
	sum := sha256.Sum256([]byte(domainHash + "|" + designHash + "|" + paradigm + "|" + queryHash))
	return "dorm:stmt:" + hex.EncodeToString(sum[:])
}

// Get returns the cached SQL for key, if present.
func (c *StatementCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache: get %q: %w", key, err)
	}
	return val, true, nil
}

// Set stores sql under key with the cache's configured TTL.
func (c *StatementCache) Set(ctx context.Context, key, sql string) error {
	if err := c.client.Set(ctx, key, sql, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %q: %w", key, err)
	}
	return nil
}
