package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeriesCache stores decoded forecasts between requests.
type SeriesCache interface {
	Get(ctx context.Context, key string) (Series, bool, error)
	Set(ctx context.Context, key string, s Series, ttl time.Duration) error
}

// CacheKey rounds coordinates to three decimals (about 100 m) so nearby
// places share a forecast.
func CacheKey(lat, lon float64) string {
	return fmt.Sprintf("forecast:%.3f:%.3f", round3(lat), round3(lon))
}

func round3(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0 // avoid "-0.000"
	}
	return r
}

// RedisCache is a SeriesCache backed by Redis, storing series as JSON.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache parses a redis:// URL and returns a cache using it.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("weather.NewRedisCache: %w", err)
	}
	return &RedisCache{rdb: redis.NewClient(opts)}, nil
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) (Series, bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Series{}, false, nil
	}
	if err != nil {
		return Series{}, false, fmt.Errorf("weather.RedisCache.Get: %w", err)
	}
	var s Series
	if err := json.Unmarshal(val, &s); err != nil {
		return Series{}, false, fmt.Errorf("weather.RedisCache.Get: %w", err)
	}
	return s, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, s Series, ttl time.Duration) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("weather.RedisCache.Set: %w", err)
	}
	if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("weather.RedisCache.Set: %w", err)
	}
	return nil
}
