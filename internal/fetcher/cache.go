package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "fictrack:page:"

// PageCache is an optional Redis-backed cache for fetched listing pages.
// Cache failures are treated as misses; the fetcher must keep working
// with no cache at all.
type PageCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewPageCache connects to Redis using a redis:// URL.
func NewPageCache(redisURL string, ttl time.Duration, logger *slog.Logger) (*PageCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &PageCache{rdb: redis.NewClient(opt), ttl: ttl, logger: logger}, nil
}

func (c *PageCache) Get(ctx context.Context, url string) ([]byte, bool) {
	body, err := c.rdb.Get(ctx, cacheKeyPrefix+url).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("page cache read failed", "url", url, "error", err)
		}
		return nil, false
	}
	return body, true
}

func (c *PageCache) Set(ctx context.Context, url string, body []byte) {
	if err := c.rdb.Set(ctx, cacheKeyPrefix+url, body, c.ttl).Err(); err != nil {
		c.logger.Warn("page cache write failed", "url", url, "error", err)
	}
}

// Close releases the Redis connection.
func (c *PageCache) Close() error {
	return c.rdb.Close()
}
