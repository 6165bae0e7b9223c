package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shelflog/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable clock shared by a store and its test
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type storeFactory func(t *testing.T, ttl time.Duration, clock *fakeClock) domain.CacheStore

func sampleRecords() []domain.Record {
	return []domain.Record{
		{ID: "OL893415W", Title: "Dune", Image: "https://covers.openlibrary.org/b/id/12345-L.jpg", Year: "1965", Author: "Frank Herbert", Category: domain.CategoryBook, Source: domain.SourceOpenLibrary},
		{ID: "OL2W", Title: "Dune Messiah", Year: "1969", Author: "Frank Herbert", Category: domain.CategoryBook, Source: domain.SourceOpenLibrary},
	}
}

// runStoreContract checks the behavior every CacheStore backend must share
func runStoreContract(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	t.Run("miss for unknown key", func(t *testing.T) {
		store := newStore(t, domain.DefaultCacheTTL, newFakeClock())

		_, err := store.Get(ctx, "book:unknown")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("put then get preserves order and fields", func(t *testing.T) {
		clock := newFakeClock()
		store := newStore(t, domain.DefaultCacheTTL, clock)

		require.NoError(t, store.Put(ctx, domain.CacheEntry{Key: "book:dune", Records: sampleRecords(), CreatedAt: clock.Now()}))

		got, err := store.Get(ctx, "book:dune")
		require.NoError(t, err)
		assert.Equal(t, "book:dune", got.Key)
		assert.Equal(t, sampleRecords(), got.Records)
		assert.True(t, clock.Now().Equal(got.CreatedAt))
	})

	t.Run("expiry is checked at read time", func(t *testing.T) {
		clock := newFakeClock()
		store := newStore(t, domain.DefaultCacheTTL, clock)
		require.NoError(t, store.Put(ctx, domain.CacheEntry{Key: "book:dune", Records: sampleRecords(), CreatedAt: clock.Now()}))

		clock.Advance(domain.DefaultCacheTTL - time.Second)
		_, err := store.Get(ctx, "book:dune")
		require.NoError(t, err)

		clock.Advance(2 * time.Second)
		_, err = store.Get(ctx, "book:dune")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("put overwrites existing key", func(t *testing.T) {
		clock := newFakeClock()
		store := newStore(t, domain.DefaultCacheTTL, clock)

		require.NoError(t, store.Put(ctx, domain.CacheEntry{Key: "book:dune", Records: sampleRecords(), CreatedAt: clock.Now()}))
		clock.Advance(time.Hour)
		replacement := sampleRecords()[:1]
		require.NoError(t, store.Put(ctx, domain.CacheEntry{Key: "book:dune", Records: replacement, CreatedAt: clock.Now()}))

		got, err := store.Get(ctx, "book:dune")
		require.NoError(t, err)
		assert.Equal(t, replacement, got.Records)
		assert.True(t, clock.Now().Equal(got.CreatedAt))
	})

	t.Run("rewrite refreshes an expired entry", func(t *testing.T) {
		clock := newFakeClock()
		store := newStore(t, time.Hour, clock)
		require.NoError(t, store.Put(ctx, domain.CacheEntry{Key: "game:hades", Records: sampleRecords(), CreatedAt: clock.Now()}))

		clock.Advance(2 * time.Hour)
		_, err := store.Get(ctx, "game:hades")
		require.ErrorIs(t, err, domain.ErrCacheMiss)

		require.NoError(t, store.Put(ctx, domain.CacheEntry{Key: "game:hades", Records: sampleRecords(), CreatedAt: clock.Now()}))
		_, err = store.Get(ctx, "game:hades")
		assert.NoError(t, err)
	})

	t.Run("purge removes only expired entries", func(t *testing.T) {
		clock := newFakeClock()
		store := newStore(t, time.Hour, clock)
		purger, ok := store.(domain.CachePurger)
		require.True(t, ok, "store should support purging")

		require.NoError(t, store.Put(ctx, domain.CacheEntry{Key: "movie:old", Records: sampleRecords(), CreatedAt: clock.Now()}))
		clock.Advance(90 * time.Minute)
		require.NoError(t, store.Put(ctx, domain.CacheEntry{Key: "movie:new", Records: sampleRecords(), CreatedAt: clock.Now()}))

		removed, err := purger.PurgeExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		_, err = store.Get(ctx, "movie:new")
		assert.NoError(t, err)
	})

	t.Run("concurrent writers to one key do not corrupt it", func(t *testing.T) {
		clock := newFakeClock()
		store := newStore(t, domain.DefaultCacheTTL, clock)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				records := []domain.Record{{ID: fmt.Sprintf("id-%d", i), Title: "Writer", Year: "2000", Category: domain.CategoryGame, Source: domain.SourceRAWG}}
				assert.NoError(t, store.Put(ctx, domain.CacheEntry{Key: "game:race", Records: records, CreatedAt: clock.Now()}))
			}(i)
		}
		wg.Wait()

		got, err := store.Get(ctx, "game:race")
		require.NoError(t, err)
		require.Len(t, got.Records, 1)
		assert.Equal(t, "Writer", got.Records[0].Title)
	})

	t.Run("put after close returns an error", func(t *testing.T) {
		clock := newFakeClock()
		store := newStore(t, domain.DefaultCacheTTL, clock)
		require.NoError(t, store.Put(ctx, domain.CacheEntry{Key: "book:dune", Records: sampleRecords(), CreatedAt: clock.Now()}))
		require.NoError(t, store.Close())

		assert.NotPanics(t, func() {
			err := store.Put(ctx, domain.CacheEntry{Key: "book:dune", Records: sampleRecords(), CreatedAt: clock.Now()})
			assert.ErrorIs(t, err, domain.ErrCacheWrite)
		})
		assert.NotPanics(t, func() {
			_, err := store.Get(ctx, "book:dune")
			assert.Error(t, err)
		})
		if purger, ok := store.(domain.CachePurger); ok {
			assert.NotPanics(t, func() {
				_, _ = purger.PurgeExpired(ctx)
			})
		}
		assert.NoError(t, store.Close(), "second close is a no-op")
	})

	t.Run("close while writes are in flight", func(t *testing.T) {
		clock := newFakeClock()
		store := newStore(t, domain.DefaultCacheTTL, clock)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					err := store.Put(ctx, domain.CacheEntry{Key: fmt.Sprintf("game:%d-%d", i, j), Records: sampleRecords(), CreatedAt: clock.Now()})
					if err != nil {
						assert.ErrorIs(t, err, domain.ErrCacheWrite)
					}
				}
			}(i)
		}
		time.Sleep(time.Millisecond)
		require.NoError(t, store.Close())
		wg.Wait()
	})
}
