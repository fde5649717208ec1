package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/user/icebreaker-videos/internal/config"
)

// RedisCache is a PageCache shared by every instance of the site
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg *config.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.RevalidateTime).Msg("Connected to Redis page cache")
	return &RedisCache{client: client, ttl: cfg.RevalidateTime}, nil
}

// PageKey generates a consistent cache key for a request path
func PageKey(path string) string {
	hash := sha256.Sum256([]byte(path))
	return fmt.Sprintf("page:%x", hash[:8])
}

// Get returns the cached page for path
func (c *RedisCache) Get(ctx context.Context, path string) (*Page, bool, error) {
	key := PageKey(path)
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get page %s: %w", path, err)
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		// Unreadable entries count as a miss
		log.Warn().Err(err).Str("path", path).Msg("Dropping invalid cached page")
		c.client.Del(ctx, key)
		return nil, false, nil
	}
	return &page, true, nil
}

// Set stores page for path with the cache TTL
func (c *RedisCache) Set(ctx context.Context, path string, page *Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal page %s: %w", path, err)
	}
	if err := c.client.Set(ctx, PageKey(path), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set page %s: %w", path, err)
	}
	return nil
}

// Invalidate deletes the cached pages for paths
func (c *RedisCache) Invalidate(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = PageKey(p)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate %v: %w", paths, err)
	}
	return nil
}

// Health returns cache health information
func (c *RedisCache) Health(ctx context.Context) map[string]interface{} {
	health := map[string]interface{}{
		"status": "healthy",
		"type":   "redis",
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
		return health
	}
	if n, err := c.client.DBSize(ctx).Result(); err == nil {
		health["key_count"] = n
	}
	return health
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
