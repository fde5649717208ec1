package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	page    *Page
	expires time.Time
}

// MemoryCache is a process-local PageCache
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an in-memory cache whose entries live for ttl
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached page for path unless it has expired
func (c *MemoryCache) Get(ctx context.Context, path string) (*Page, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(entry.expires) {
		c.mu.Lock()
		if current, ok := c.entries[path]; ok && current.expires.Equal(entry.expires) {
			delete(c.entries, path)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.page, true, nil
}

// Set stores page for path
func (c *MemoryCache) Set(ctx context.Context, path string, page *Page) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = memoryEntry{page: page, expires: c.now().Add(c.ttl)}
	return nil
}

// Invalidate drops the entries for paths
func (c *MemoryCache) Invalidate(ctx context.Context, paths ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		delete(c.entries, p)
	}
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Health returns cache health information
func (c *MemoryCache) Health(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"status":    "healthy",
		"type":      "memory",
		"key_count": c.Len(),
	}
}

// Close is a no-op
func (c *MemoryCache) Close() error {
	return nil
}
