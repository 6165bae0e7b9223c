package rawg

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

const DefaultBaseURL = "https://api.rawg.io/api"

// Provider searches the RAWG games database
type Provider struct {
	client  *httpx.Client
	apiKey  string
	baseURL string
	logger  *log.Logger
}

func NewProvider(client *httpx.Client, apiKey, baseURL string, logger *log.Logger) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		client:  client,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logging.OrDefault(logger).WithPrefix("rawg"),
	}
}

func (p *Provider) Category() domain.Category { return domain.CategoryGame }

func (p *Provider) Source() domain.Source { return domain.SourceRAWG }

func (p *Provider) Fetch(ctx context.Context, query string) ([]domain.Record, error) {
	params := url.Values{}
	params.Add("key", p.apiKey)
	params.Add("search", query)
	params.Add("page_size", strconv.Itoa(domain.MaxResults))
	reqURL := fmt.Sprintf("%s/games?%s", p.baseURL, params.Encode())

	var resp SearchResponse
	if err := p.client.GetJSON(ctx, reqURL, nil, &resp); err != nil {
		return nil, err
	}

	records := MapGames(resp.Results)
	p.logger.Debug("search complete", "query", query, "results", len(records))
	return records, nil
}
