package openlibrary

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

const (
	// DefaultBaseURL is the Open Library API host
	DefaultBaseURL = "https://openlibrary.org"
	// DefaultCoversURL is the host serving cover images by numeric id
	DefaultCoversURL = "https://covers.openlibrary.org"
)

// Provider handles book searches against the Open Library search API
type Provider struct {
	client    *httpx.Client
	baseURL   string
	coversURL string
	logger    *log.Logger
}

// NewProvider creates a book provider. Empty URLs fall back to the public hosts.
func NewProvider(client *httpx.Client, baseURL, coversURL string, logger *log.Logger) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if coversURL == "" {
		coversURL = DefaultCoversURL
	}
	return &Provider{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		coversURL: strings.TrimRight(coversURL, "/"),
		logger:    logging.OrDefault(logger).WithPrefix("openlibrary"),
	}
}

func (p *Provider) Category() domain.Category { return domain.CategoryBook }

func (p *Provider) Source() domain.Source { return domain.SourceOpenLibrary }

// Fetch runs a free-text search over works
func (p *Provider) Fetch(ctx context.Context, query string) ([]domain.Record, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("limit", strconv.Itoa(domain.MaxResults))
	reqURL := fmt.Sprintf("%s/search.json?%s", p.baseURL, params.Encode())

	var resp SearchResponse
	if err := p.client.GetJSON(ctx, reqURL, nil, &resp); err != nil {
		return nil, err
	}

	records := MapDocs(resp.Docs, p.coversURL)
	p.logger.Debug("search complete", "query", query, "found", resp.NumFound, "results", len(records))
	return records, nil
}
