package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "stats:version"
	summaryKey      = "stats:summary"
)

// Cache stores the summary in Redis under a versioned key. Bumping the
// version invalidates every earlier entry at once.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	return ver, err
}

func versionedKey(ver int64) string {
	return fmt.Sprintf("%s:%d", summaryKey, ver)
}

// Get loads the cached summary. The boolean is false on a miss.
func (c *Cache) Get(ctx context.Context) (Summary, bool, error) {
	if c == nil || c.client == nil {
		return Summary{}, false, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return Summary{}, false, fmt.Errorf("stats: cache version: %w", err)
	}
	payload, err := c.client.Get(ctx, versionedKey(ver)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Summary{}, false, nil
	}
	if err != nil {
		return Summary{}, false, fmt.Errorf("stats: cache get: %w", err)
	}
	var s Summary
	if err := json.Unmarshal(payload, &s); err != nil {
		return Summary{}, false, fmt.Errorf("stats: cache decode: %w", err)
	}
	return s, true, nil
}

// PutVersion stores s under ver. A summary computed before a Bump lands under
// the superseded version and is never read.
func (c *Cache) PutVersion(ctx context.Context, ver int64, s Summary) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("stats: cache encode: %w", err)
	}
	if err := c.client.Set(ctx, versionedKey(ver), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("stats: cache set: %w", err)
	}
	return nil
}

// Bump invalidates the cache by incrementing the version.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Incr(ctx, cacheVersionKey).Err(); err != nil {
		return fmt.Errorf("stats: cache bump: %w", err)
	}
	return nil
}
