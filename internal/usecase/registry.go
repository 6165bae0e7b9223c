package usecase

import (
	"fmt"

	"github.com/shelflog/backend/internal/domain"
)

// Registry maps each category to the provider that serves it
type Registry struct {
	providers map[domain.Category]domain.Provider
}

// NewRegistry builds a registry, rejecting nil providers and duplicate categories
func NewRegistry(providers ...domain.Provider) (*Registry, error) {
	r := &Registry{providers: make(map[domain.Category]domain.Provider, len(providers))}
	for _, p := range providers {
		if p == nil {
			return nil, fmt.Errorf("registry: nil provider")
		}
		category := p.Category()
		if existing, ok := r.providers[category]; ok {
			return nil, fmt.Errorf("registry: category %q already served by %s", category, existing.Source())
		}
		r.providers[category] = p
	}
	return r, nil
}

// Get returns the provider for category
func (r *Registry) Get(category domain.Category) (domain.Provider, bool) {
	p, ok := r.providers[category]
	return p, ok
}

// Categories returns the registered categories in display order
func (r *Registry) Categories() []domain.Category {
	out := make([]domain.Category, 0, len(r.providers))
	for _, c := range domain.Categories {
		if _, ok := r.providers[c]; ok {
			out = append(out, c)
		}
	}
	return out
}
