// Package cache is a JSON cache over Redis. A Cache without a client is a
// no-op, so callers never branch on whether Redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"
	"travelbook/pkg/logger"
	"travelbook/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

func New(client *redis.Client, prefix string, ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{client: client, prefix: prefix, ttl: ttl, log: log}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) key(k string) string {
	return c.prefix + ":" + k
}

// Get decodes the cached value into dst and reports whether there was a hit.
// Redis failures count as misses.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	if !c.Enabled() {
		return false
	}

	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Cache read failed", "key", c.key(key), "error", err)
		}
		metrics.CacheMisses.WithLabelValues(c.prefix).Inc()
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Warn("Cache entry undecodable, dropping", "key", c.key(key), "error", err)
		c.Delete(ctx, key)
		metrics.CacheMisses.WithLabelValues(c.prefix).Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues(c.prefix).Inc()
	return true
}

func (c *Cache) Set(ctx context.Context, key string, value any) {
	if !c.Enabled() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("Cache entry not encodable", "key", c.key(key), "error", err)
		return
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		c.log.Warn("Cache write failed", "key", c.key(key), "error", err)
	}
}

func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		c.log.Warn("Cache invalidation failed", "keys", full, "error", err)
	}
}

func (c *Cache) versionKey(k string) string {
	return c.prefix + ":version:" + k
}

// Versioned qualifies key with its current generation. Entries stored under a
// generation that Bump has since moved past are never read again, so a slow
// reader cannot resurrect data an invalidation already dropped. ok is false
// when the cache is disabled or the generation could not be read; callers
// should then neither read nor write.
func (c *Cache) Versioned(ctx context.Context, key string) (string, bool) {
	if !c.Enabled() {
		return "", false
	}

	v, err := c.client.Get(ctx, c.versionKey(key)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn("Cache version read failed", "key", c.versionKey(key), "error", err)
		return "", false
	}
	return key + "@" + strconv.FormatInt(v, 10), true
}

// Bump moves each key to its next generation. The generation outlives the
// entries it guards by one TTL.
func (c *Cache) Bump(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}

	pipe := c.client.TxPipeline()
	for _, k := range keys {
		pipe.Incr(ctx, c.versionKey(k))
		if c.ttl > 0 {
			pipe.Expire(ctx, c.versionKey(k), 2*c.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("Cache invalidation failed", "keys", keys, "error", err)
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}
