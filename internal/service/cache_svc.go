package service

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// viewedTTL is how long a (viewer, content) view fingerprint suppresses
// repeat view counting.
const viewedTTL = 24 * time.Hour

// CacheService provides the Redis layer: cached feed pages and short-lived
// view fingerprints.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a new CacheService. If redisURL is empty or the
// connection fails, it returns a CacheService with a nil client (cache
// operations become no-ops and every view counts).
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Println("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, caching disabled: %v", redisURL, err)
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, caching disabled: %v", err)
		return &CacheService{}
	}

	log.Println("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetBytes retrieves a cached value. Returns nil if not cached or cache is
// disabled.
func (c *CacheService) GetBytes(ctx context.Context, key string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetBytes stores a value with the given TTL.
func (c *CacheService) SetBytes(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys from the cache.
func (c *CacheService) Delete(ctx context.Context, keys ...string) error {
	if c.rdb == nil || len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// MarkViewed records a view fingerprint and reports whether it was fresh.
// With the cache disabled every view is treated as fresh.
func (c *CacheService) MarkViewed(ctx context.Context, fingerprint string) (bool, error) {
	if c.rdb == nil {
		return true, nil
	}
	return c.rdb.SetNX(ctx, "viewed:"+fingerprint, 1, viewedTTL).Result()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
