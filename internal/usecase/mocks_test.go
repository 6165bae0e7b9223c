package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/shelflog/backend/internal/domain"
)

// MockCacheStore is a mock implementation of domain.CacheStore
type MockCacheStore struct {
	mu       sync.Mutex
	data     map[string]domain.CacheEntry
	ttl      time.Duration
	now      func() time.Time
	getError error
	putError error
	putDelay time.Duration
	getCalls int
	putCalls int
}

func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		data: make(map[string]domain.CacheEntry),
		ttl:  domain.DefaultCacheTTL,
		now:  time.Now,
	}
}

func (m *MockCacheStore) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getError != nil {
		return nil, m.getError
	}
	entry, ok := m.data[key]
	if !ok || entry.Expired(m.now(), m.ttl) {
		return nil, domain.ErrCacheMiss
	}
	entry.Records = append([]domain.Record(nil), entry.Records...)
	return &entry, nil
}

func (m *MockCacheStore) Put(ctx context.Context, entry domain.CacheEntry) error {
	if m.putDelay > 0 {
		time.Sleep(m.putDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.putError != nil {
		return m.putError
	}
	m.data[entry.Key] = entry
	return nil
}

func (m *MockCacheStore) Close() error { return nil }

func (m *MockCacheStore) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.putCalls
}

func (m *MockCacheStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}

// MockProvider is a mock implementation of domain.Provider
type MockProvider struct {
	mu       sync.Mutex
	category domain.Category
	source   domain.Source
	records  []domain.Record
	err      error
	queries  []string
}

func NewMockProvider(category domain.Category, source domain.Source) *MockProvider {
	return &MockProvider{category: category, source: source}
}

func (m *MockProvider) Category() domain.Category { return m.category }
func (m *MockProvider) Source() domain.Source     { return m.source }

func (m *MockProvider) Fetch(ctx context.Context, query string) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.Record(nil), m.records...), nil
}

func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

func (m *MockProvider) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}
