package jikan

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shelflog/backend/internal/domain"
	"github.com/shelflog/backend/internal/infrastructure/httpx"
	"github.com/shelflog/backend/internal/logging"
)

// DefaultBaseURL is the Jikan v4 endpoint (no key required)
const DefaultBaseURL = "https://api.jikan.moe/v4"

// Provider searches MyAnimeList through Jikan
type Provider struct {
	client  *httpx.Client
	baseURL string
	logger  *log.Logger
}

// NewProvider creates an anime provider
func NewProvider(client *httpx.Client, baseURL string, logger *log.Logger) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logging.OrDefault(logger).WithPrefix("jikan"),
	}
}

func (p *Provider) Category() domain.Category { return domain.CategoryAnime }

func (p *Provider) Source() domain.Source { return domain.SourceJikan }

// Fetch searches anime by title
func (p *Provider) Fetch(ctx context.Context, query string) ([]domain.Record, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("limit", strconv.Itoa(domain.MaxResults))
	reqURL := fmt.Sprintf("%s/anime?%s", p.baseURL, params.Encode())

	var resp SearchResponse
	if err := p.client.GetJSON(ctx, reqURL, nil, &resp); err != nil {
		return nil, err
	}

	records := MapAnime(resp.Data)
	p.logger.Debug("search complete", "query", query, "results", len(records))
	return records, nil
}
