package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shelflog/backend/internal/domain"
)

// cacheItem holds one JSON-encoded entry and its creation time
type cacheItem struct {
	Payload   []byte
	CreatedAt time.Time
}

// MemoryCache is a thread-safe in-process cache with read-time TTL
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
	ttl   time.Duration
	opts  options

	closed bool

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(ttl time.Duration, opts ...Option) *MemoryCache {
	cache := &MemoryCache{
		data: make(map[string]cacheItem),
		ttl:  resolveTTL(ttl),
		opts: newOptions(opts),
		stop: make(chan struct{}),
	}

	if cache.opts.sweepInterval > 0 {
		go cache.cleanupExpired(cache.opts.sweepInterval)
	}

	return cache
}

// Get retrieves an entry. Each call decodes a fresh copy so callers can
// never mutate what is stored.
func (c *MemoryCache) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	c.mutex.RLock()
	item, exists := c.data[key]
	closed := c.closed
	c.mutex.RUnlock()

	if closed {
		return nil, errStoreClosed
	}
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	entry, err := decodeEntry(key, item.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode cache entry %q: %w", key, err)
	}

	if entry.Expired(c.opts.now(), c.ttl) {
		return nil, domain.ErrCacheMiss
	}

	return entry, nil
}

// Put stores an entry, replacing any previous one for the same key
func (c *MemoryCache) Put(ctx context.Context, entry domain.CacheEntry) error {
	// Serialize to JSON to mimic an external store
	payload, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheWrite, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return fmt.Errorf("%w: %v", domain.ErrCacheWrite, errStoreClosed)
	}
	c.data[entry.Key] = cacheItem{
		Payload:   payload,
		CreatedAt: entry.CreatedAt,
	}

	return nil
}

// PurgeExpired removes every expired entry and reports how many were removed
func (c *MemoryCache) PurgeExpired(ctx context.Context) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.opts.now()
	removed := 0
	for key, item := range c.data {
		if now.Sub(item.CreatedAt) > c.ttl {
			delete(c.data, key)
			removed++
		}
	}
	return removed, nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n, _ := c.PurgeExpired(context.Background()); n > 0 {
				c.opts.logger.Debug("swept expired cache entries", "removed", n)
			}
		case <-c.stop:
			return
		}
	}
}

// Close stops the background sweep and drops every entry
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() {
		close(c.stop)

		c.mutex.Lock()
		defer c.mutex.Unlock()
		c.closed = true
		c.data = make(map[string]cacheItem)
	})
	return nil
}

// Size returns the number of stored entries, including expired ones not yet swept
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}
