package domain

import "context"

// CacheStore defines the interface for memoizing search results.
// Get returns ErrCacheMiss for keys never written or past their TTL.
// Put overwrites any existing entry for the same key.
type CacheStore interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Put(ctx context.Context, entry CacheEntry) error
	Close() error
}

// CachePurger is implemented by stores that can reclaim expired entries
type CachePurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// Provider searches one external catalog for one category
type Provider interface {
	Category() Category
	Source() Source
	Fetch(ctx context.Context, query string) ([]Record, error)
}

// TokenSource exchanges configured client credentials for an access token
type TokenSource interface {
	AccessToken(ctx context.Context) (Credential, error)
}
