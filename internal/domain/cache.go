package domain

import (
	"strings"
	"time"
)

// DefaultCacheTTL is how long a search result stays servable from cache
const DefaultCacheTTL = 7 * 24 * time.Hour

// CacheEntry is a memoized provider result for one normalized query
type CacheEntry struct {
	Key       string    `json:"key"`
	Records   []Record  `json:"records"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the entry is past its TTL at now.
// An entry exactly TTL old is still served.
func (e CacheEntry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CreatedAt) > ttl
}

// CacheKey builds the key for a category/query pair.
// Format: "{category}:{trimmed lowercase query}"
func CacheKey(category Category, query string) string {
	return strings.ToLower(string(category)) + ":" + strings.TrimSpace(strings.ToLower(query))
}

// Credential is a short-lived bearer token obtained from a provider
type Credential struct {
	AccessToken string
	ObtainedAt  time.Time
}
