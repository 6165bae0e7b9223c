package omdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shelflog/backend/internal/domain"
	"github.com/shelflog/backend/internal/infrastructure/httpx"
	"github.com/shelflog/backend/internal/logging"
)

// DefaultBaseURL is the public OMDb endpoint
const DefaultBaseURL = "https://www.omdbapi.com"

// Provider searches OMDb for one of the two categories it serves.
// Movies and TV share the API and differ only in the type parameter.
type Provider struct {
	client     *httpx.Client
	apiKey     string
	baseURL    string
	category   domain.Category
	searchType string
	logger     *log.Logger
}

// NewProvider creates an OMDb provider bound to CategoryMovie or CategoryTV
func NewProvider(client *httpx.Client, apiKey, baseURL string, category domain.Category, logger *log.Logger) (*Provider, error) {
	var searchType string
	switch category {
	case domain.CategoryMovie:
		searchType = "movie"
	case domain.CategoryTV:
		searchType = "series"
	default:
		return nil, fmt.Errorf("omdb serves movie and tv, not %q", category)
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Provider{
		client:     client,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		category:   category,
		searchType: searchType,
		logger:     logging.OrDefault(logger).WithPrefix("omdb"),
	}, nil
}

func (p *Provider) Category() domain.Category { return p.category }

func (p *Provider) Source() domain.Source { return domain.SourceOMDb }

// Fetch runs a title search. A "not found" response yields an empty slice.
func (p *Provider) Fetch(ctx context.Context, query string) ([]domain.Record, error) {
	params := url.Values{}
	params.Add("apikey", p.apiKey)
	params.Add("s", query)
	params.Add("type", p.searchType)
	reqURL := fmt.Sprintf("%s/?%s", p.baseURL, params.Encode())

	var resp SearchResponse
	if err := p.client.GetJSON(ctx, reqURL, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Response == "False" {
		p.logger.Debug("no results", "query", query, "type", p.searchType, "reason", resp.Error)
		return []domain.Record{}, nil
	}

	records := MapSearchItems(resp.Search, p.category)
	p.logger.Debug("search complete", "query", query, "type", p.searchType, "results", len(records))
	return records, nil
}
