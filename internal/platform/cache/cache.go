package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/navidrop/taxi-site/internal/places"
	"github.com/navidrop/taxi-site/pkg/logger"
)

// NewClient connects to redis from a REDIS_URL-style string.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// SuggestCache keeps resolved place suggestions in redis so repeated
// keystrokes across visitors don't hammer the upstream geocoder. Every
// method is fail-soft: redis being down degrades to uncached lookups.
type SuggestCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSuggestCache(client *redis.Client, ttl time.Duration) *SuggestCache {
	return &SuggestCache{client: client, ttl: ttl}
}

func (c *SuggestCache) key(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return fmt.Sprintf("suggest:%x", sum)
}

func (c *SuggestCache) Get(ctx context.Context, query string) ([]places.Suggestion, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, c.key(query)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.DebugContext(ctx, "suggest cache read failed", "error", err)
		}
		return nil, false
	}

	var suggestions []places.Suggestion
	if err := json.Unmarshal(raw, &suggestions); err != nil {
		return nil, false
	}
	return suggestions, true
}

func (c *SuggestCache) Set(ctx context.Context, query string, suggestions []places.Suggestion) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(suggestions)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(query), raw, c.ttl).Err(); err != nil {
		logger.DebugContext(ctx, "suggest cache write failed", "error", err)
	}
}

// Counter backs the per-IP rate limiter with a redis INCR whose key
// expires at the window boundary.
type Counter struct {
	client *redis.Client
}

func NewCounter(client *redis.Client) *Counter {
	return &Counter{client: client}
}

func (c *Counter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		c.client.Expire(ctx, key, ttl)
	}
	return count, nil
}
