package service

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bericyb/dislinkedIn/internal/metrics"
)

// CountCacheTTL bounds how stale a cached per-post count may get between the
// periodic resyncs.
const CountCacheTTL = 5 * time.Minute

// CacheService provides a Redis cache-aside layer for per-post counts.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a new CacheService. If redisURL is empty or the
// connection fails, it returns a CacheService with a nil client (cache
// operations become no-ops).
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

// GetCount retrieves a cached count. The second return is false when the URN
// is not cached or the cache is disabled.
func (c *CacheService) GetCount(ctx context.Context, postURN string) (int, bool) {
	if c.rdb == nil {
		return 0, false
	}
	val, err := c.rdb.Get(ctx, countKey(postURN)).Result()
	if err == redis.Nil {
		metrics.CacheMisses.Inc()
		return 0, false
	}
	if err != nil {
		return 0, false
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	metrics.CacheHits.Inc()
	return count, true
}

// SetCount stores a count with the standard TTL.
func (c *CacheService) SetCount(ctx context.Context, postURN string, count int) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, countKey(postURN), strconv.Itoa(count), CountCacheTTL).Err(); err != nil {
		log.Printf("cache: set count error: %v", err)
	}
}

// Invalidate removes a count from cache (called after toggle mutations).
func (c *CacheService) Invalidate(ctx context.Context, postURN string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, countKey(postURN)).Err(); err != nil {
		log.Printf("cache: invalidate error: %v", err)
	}
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func countKey(postURN string) string {
	return "dislike:" + postURN
}
