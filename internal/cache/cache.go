// Package cache stores rendered pages keyed by request path until they
// expire or are invalidated.
package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/user/icebreaker-videos/internal/config"
)

// Page is a rendered response body
type Page struct {
	Body        []byte    `json:"body"`
	ContentType string    `json:"contentType"`
	RenderedAt  time.Time `json:"renderedAt"`
}

// PageCache defines the operations on the rendered-page cache
type PageCache interface {
	// Get returns the cached page for path; ok is false on a miss
	Get(ctx context.Context, path string) (page *Page, ok bool, err error)
	// Set stores page for path until the cache TTL elapses
	Set(ctx context.Context, path string, page *Page) error
	// Invalidate drops the cached pages for paths so the next request renders them again
	Invalidate(ctx context.Context, paths ...string) error
	Health(ctx context.Context) map[string]interface{}
	Close() error
}

// New creates a Redis-backed cache when an address is configured, an
// in-memory cache otherwise
func New(cfg *config.CacheConfig) (PageCache, error) {
	if cfg.RedisAddr == "" {
		log.Info().Dur("ttl", cfg.RevalidateTime).Msg("Using in-memory page cache")
		return NewMemoryCache(cfg.RevalidateTime), nil
	}
	return NewRedisCache(cfg)
}
