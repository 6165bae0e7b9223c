package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shelflog/backend/internal/domain"
	"github.com/shelflog/backend/internal/logging"
	"github.com/shelflog/backend/internal/metrics"
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	// WriteTimeout bounds each detached cache write
	WriteTimeout time.Duration
	// Now stamps new cache entries; defaults to time.Now
	Now func() time.Time
}

// SearchService answers category searches from cache, falling back to providers
type SearchService struct {
	cache        domain.CacheStore
	registry     *Registry
	logger       *log.Logger
	writeTimeout time.Duration
	now          func() time.Time

	writes sync.WaitGroup
}

// NewSearchService creates a new search service with dependencies
func NewSearchService(
	cache domain.CacheStore,
	registry *Registry,
	logger *log.Logger,
	config SearchServiceConfig,
) *SearchService {
	writeTimeout := config.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &SearchService{
		cache:        cache,
		registry:     registry,
		logger:       logging.OrDefault(logger).WithPrefix("search"),
		writeTimeout: writeTimeout,
		now:          now,
	}
}

// Search returns up to ten records for query in category.
// Flow: validate -> cache -> provider -> detached cache write -> return.
// Provider failures degrade to an empty slice; only invalid input is an error.
func (s *SearchService) Search(ctx context.Context, rawCategory, query string) ([]domain.Record, error) {
	category, err := domain.ParseCategory(rawCategory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}

	provider, ok := s.registry.Get(category)
	if !ok {
		return nil, fmt.Errorf("%w: no provider for %q", domain.ErrInvalidRequest, category)
	}

	metrics.IncSearchRequest(string(category))
	key := domain.CacheKey(category, query)

	if records, ok := s.fromCache(ctx, key); ok {
		metrics.IncCacheHit(string(category))
		return records, nil
	}
	metrics.IncCacheMiss(string(category))

	records, err := provider.Fetch(ctx, query)
	if err != nil {
		kind := failureKind(err)
		metrics.IncProviderFailure(string(provider.Source()), kind)
		s.logger.Warn("provider failed, returning no results",
			"source", provider.Source(), "category", category, "kind", kind, "err", err)
		return []domain.Record{}, nil
	}

	records = validRecords(records)
	if len(records) == 0 {
		// Empty results are never cached so a later retry can succeed
		return []domain.Record{}, nil
	}

	s.storeDetached(ctx, domain.CacheEntry{Key: key, Records: records, CreatedAt: s.now()})
	return records, nil
}

// Drain waits for in-flight cache writes or until ctx is done
func (s *SearchService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.writes.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SearchService) fromCache(ctx context.Context, key string) ([]domain.Record, bool) {
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("cache read failed, treating as miss", "key", key, "err", err)
		}
		return nil, false
	}
	return entry.Records, true
}

// storeDetached writes entry without blocking the caller.
// The write outlives request cancellation but is bounded by writeTimeout.
func (s *SearchService) storeDetached(ctx context.Context, entry domain.CacheEntry) {
	writeCtx := context.WithoutCancel(ctx)

	s.writes.Add(1)
	go func() {
		defer s.writes.Done()

		ctx, cancel := context.WithTimeout(writeCtx, s.writeTimeout)
		defer cancel()

		if err := s.cache.Put(ctx, entry); err != nil {
			metrics.IncCacheWriteFailure()
			s.logger.Error("cache write failed", "key", entry.Key, "err", err)
			return
		}
		s.logger.Debug("cached search result", "key", entry.Key, "records", len(entry.Records))
	}()
}

// validRecords drops records missing a mandatory field and caps the result size
func validRecords(records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if !r.Valid() {
			continue
		}
		out = append(out, r)
		if len(out) == domain.MaxResults {
			break
		}
	}
	return out
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthFailure):
		return "auth"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "provider"
	}
}
