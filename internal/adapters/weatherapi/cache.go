package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/busyspot/internal/domain/model"
	"github.com/okian/busyspot/internal/domain/weather"
	"github.com/okian/busyspot/pkg/logger"
	"github.com/okian/busyspot/pkg/metrics"
)

const (
	defaultCacheTTL    = 30 * time.Minute
	defaultCachePrefix = "busyspot:weather:"
)

// KV is the subset of *redis.Client the cache uses.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Cached is a read-through Redis cache in front of another provider, keyed by UTC hour.
// Cache errors never fail a lookup.
type Cached struct {
	kv     KV
	next   weather.Provider
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

// CacheOption configures Cached.
type CacheOption func(*Cached)

// WithTTL sets how long an hour's observation is kept.
func WithTTL(d time.Duration) CacheOption {
	return func(c *Cached) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithCacheLogger sets the cache's logger.
func WithCacheLogger(l logger.Logger) CacheOption {
	return func(c *Cached) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCached wraps next with a cache in kv. A nil kv disables caching.
func NewCached(kv KV, next weather.Provider, opts ...CacheOption) *Cached {
	c := &Cached{kv: kv, next: next, ttl: defaultCacheTTL, prefix: defaultCachePrefix, logger: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRedisClient builds a client from a redis:// URL with fail-fast timeouts.
func NewRedisClient(redisURL string, timeout time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if timeout > 0 {
		opts.DialTimeout = timeout
		opts.ReadTimeout = timeout
		opts.WriteTimeout = timeout
	}
	opts.MaxRetries = -1
	return redis.NewClient(opts), nil
}

// Observe returns the cached observation for at's hour, or asks the wrapped provider.
func (c *Cached) Observe(ctx context.Context, at time.Time) (model.WeatherObservation, error) {
	if c.kv == nil {
		return c.next.Observe(ctx, at)
	}
	key := c.prefix + HourKey(at)

	raw, err := c.kv.Get(ctx, key).Result()
	switch {
	case err == nil:
		var obs model.WeatherObservation
		if jerr := json.Unmarshal([]byte(raw), &obs); jerr == nil {
			metrics.RecordWeatherCache("hit")
			return obs, nil
		}
		metrics.RecordWeatherCache("error")
	case errors.Is(err, redis.Nil):
		metrics.RecordWeatherCache("miss")
	default:
		metrics.RecordWeatherCache("error")
		c.logger.Debug(ctx, "weather cache read failed", logger.String("key", key), logger.Error(err))
	}

	obs, err := c.next.Observe(ctx, at)
	if err != nil {
		return obs, err
	}
	if data, jerr := json.Marshal(obs); jerr == nil {
		if serr := c.kv.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			c.logger.Debug(ctx, "weather cache write failed", logger.String("key", key), logger.Error(serr))
		}
	}
	return obs, nil
}
