package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shelflog/backend/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS search_cache (
	key        TEXT PRIMARY KEY,
	records    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_search_cache_created_at ON search_cache(created_at);
`

// SQLiteCache persists search entries in a single SQLite table
type SQLiteCache struct {
	db   *sql.DB
	ttl  time.Duration
	opts options

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSQLiteCache opens the database at path and creates the cache table
func NewSQLiteCache(path string, ttl time.Duration, opts ...Option) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	cache := &SQLiteCache{
		db:   db,
		ttl:  resolveTTL(ttl),
		opts: newOptions(opts),
		stop: make(chan struct{}),
	}
	if cache.opts.sweepInterval > 0 {
		go cache.cleanupExpired(cache.opts.sweepInterval)
	}
	return cache, nil
}

// Get reads an entry, treating expired rows as a miss
func (c *SQLiteCache) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	var (
		records   string
		createdAt int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT records, created_at FROM search_cache WHERE key = ?`, key,
	).Scan(&records, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("query cache entry %q: %w", key, err)
	}

	entry := &domain.CacheEntry{Key: key, CreatedAt: time.Unix(0, createdAt).UTC()}
	if err := json.Unmarshal([]byte(records), &entry.Records); err != nil {
		return nil, fmt.Errorf("decode cache entry %q: %w", key, err)
	}
	if entry.Expired(c.opts.now(), c.ttl) {
		return nil, domain.ErrCacheMiss
	}
	return entry, nil
}

// Put upserts an entry; the key's previous row is replaced
func (c *SQLiteCache) Put(ctx context.Context, entry domain.CacheEntry) error {
	records, err := json.Marshal(entry.Records)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheWrite, err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO search_cache (key, records, created_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET records = excluded.records, created_at = excluded.created_at`,
		entry.Key, string(records), entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheWrite, err)
	}
	return nil
}

// PurgeExpired deletes rows older than the TTL
func (c *SQLiteCache) PurgeExpired(ctx context.Context) (int, error) {
	cutoff := c.opts.now().Add(-c.ttl).UnixNano()
	res, err := c.db.ExecContext(ctx, `DELETE FROM search_cache WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge expired entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge expired entries: %w", err)
	}
	return int(n), nil
}

func (c *SQLiteCache) cleanupExpired(interval time.Duration) {
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
func (c *SQLiteCache) Close() error {
	var err error
	c.stopOnce.Do(func() {
		close(c.stop)
		err = c.db.Close()
	})
	return err
}
