package cache

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shelflog/backend/internal/domain"
	"github.com/shelflog/backend/internal/logging"
)

var errStoreClosed = errors.New("cache store is closed")

// Option customizes a cache store
type Option func(*options)

type options struct {
	now           func() time.Time
	sweepInterval time.Duration
	logger        *log.Logger
}

func newOptions(opts []Option) options {
	o := options{
		now:    time.Now,
		logger: logging.OrDefault(nil),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces time.Now for expiry checks
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSweepInterval enables periodic removal of expired entries.
// Zero disables the sweep; expiry is still enforced on read.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) { o.sweepInterval = d }
}

// WithLogger sets the logger used for background maintenance
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = logging.OrDefault(l) }
}

func resolveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return domain.DefaultCacheTTL
	}
	return ttl
}

// storedEntry is the persisted form shared by the memory and pebble stores
type storedEntry struct {
	Records   []domain.Record `json:"records"`
	CreatedAt time.Time       `json:"created_at"`
}

func encodeEntry(entry domain.CacheEntry) ([]byte, error) {
	return json.Marshal(storedEntry{Records: entry.Records, CreatedAt: entry.CreatedAt})
}

func decodeEntry(key string, data []byte) (*domain.CacheEntry, error) {
	var stored storedEntry
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	return &domain.CacheEntry{Key: key, Records: stored.Records, CreatedAt: stored.CreatedAt}, nil
}
