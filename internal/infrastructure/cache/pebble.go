package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble/v2"
	"github.com/shelflog/backend/internal/domain"
)

// Key schema:
// - search:<category>:<normalized query> -> storedEntry JSON
const (
	pebblePrefix     = "search:"
	pebblePrefixStop = "search;"
)

// PebbleCache persists search entries in a PebbleDB directory.
// Operations after Close fail with an error instead of touching the DB.
type PebbleCache struct {
	db   *pebble.DB
	ttl  time.Duration
	opts options

	// every DB call runs under the read lock; Close takes the write lock
	mu     sync.RWMutex
	closed bool

	stop     chan struct{}
	stopOnce sync.Once
}

// NewPebbleCache opens or creates a PebbleDB store at path
func NewPebbleCache(path string, ttl time.Duration, opts ...Option) (*PebbleCache, error) {
	db, err := pebble.Open(path, &pebble.Options{
		FormatMajorVersion: pebble.FormatNewest,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open PebbleDB: %w", err)
	}

	cache := &PebbleCache{
		db:   db,
		ttl:  resolveTTL(ttl),
		opts: newOptions(opts),
		stop: make(chan struct{}),
	}
	cache.opts.logger.Debug("pebble cache opened", "path", path, "format", db.FormatMajorVersion())

	if cache.opts.sweepInterval > 0 {
		go cache.cleanupExpired(cache.opts.sweepInterval)
	}

	return cache, nil
}

func pebbleKey(key string) []byte {
	return []byte(pebblePrefix + key)
}

// Get reads an entry, treating expired entries as a miss
func (c *PebbleCache) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	data, err := c.read(key)
	if err != nil {
		return nil, err
	}

	entry, err := decodeEntry(key, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cache entry %q: %w", key, err)
	}
	if entry.Expired(c.opts.now(), c.ttl) {
		return nil, domain.ErrCacheMiss
	}
	return entry, nil
}

// read copies the stored value out under the read lock
func (c *PebbleCache) read(key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, fmt.Errorf("failed to read cache entry %q: %w", key, pebble.ErrClosed)
	}

	value, closer, err := c.db.Get(pebbleKey(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry %q: %w", key, err)
	}
	data := append([]byte(nil), value...)
	closer.Close()
	return data, nil
}

// Put upserts an entry with a synced write
func (c *PebbleCache) Put(ctx context.Context, entry domain.CacheEntry) error {
	data, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheWrite, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return fmt.Errorf("%w: %v", domain.ErrCacheWrite, pebble.ErrClosed)
	}
	if err := c.db.Set(pebbleKey(entry.Key), data, pebble.Sync); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheWrite, err)
	}
	return nil
}

// PurgeExpired deletes expired entries in a single batch
func (c *PebbleCache) PurgeExpired(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return 0, pebble.ErrClosed
	}

	iter, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(pebblePrefix),
		UpperBound: []byte(pebblePrefixStop),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create iterator: %w", err)
	}

	now := c.opts.now()
	batch := c.db.NewBatch()
	defer batch.Close()

	removed := 0
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			iter.Close()
			return 0, err
		}
		var stored storedEntry
		if err := json.Unmarshal(iter.Value(), &stored); err != nil {
			// Unreadable entries can never be served, drop them too
			c.opts.logger.Warn("dropping unreadable cache entry", "key", string(iter.Key()), "err", err)
		} else if now.Sub(stored.CreatedAt) <= c.ttl {
			continue
		}
		if err := batch.Delete(append([]byte(nil), iter.Key()...), nil); err != nil {
			iter.Close()
			return 0, fmt.Errorf("failed to stage delete: %w", err)
		}
		removed++
	}
	if err := iter.Close(); err != nil {
		return 0, fmt.Errorf("iterator error: %w", err)
	}

	if removed == 0 {
		return 0, nil
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return 0, fmt.Errorf("failed to commit purge: %w", err)
	}
	return removed, nil
}

func (c *PebbleCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := c.PurgeExpired(context.Background())
			if err != nil {
				c.opts.logger.Warn("cache sweep failed", "err", err)
			} else if n > 0 {
				c.opts.logger.Debug("swept expired cache entries", "removed", n)
			}
		case <-c.stop:
			return
		}
	}
}

// Close stops the sweep and closes the database
func (c *PebbleCache) Close() error {
	var err error
	c.stopOnce.Do(func() {
		close(c.stop)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.closed = true
		err = c.db.Close()
	})
	return err
}
