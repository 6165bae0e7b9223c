package mangadex

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
	DefaultBaseURL    = "https://api.mangadex.org"
	DefaultUploadsURL = "https://uploads.mangadex.org"
)

// Provider searches MangaDex. Cover art is requested inline with the
// search so no second round trip is needed per title.
type Provider struct {
	client     *httpx.Client
	baseURL    string
	uploadsURL string
	logger     *log.Logger
}

func NewProvider(client *httpx.Client, baseURL, uploadsURL string, logger *log.Logger) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if uploadsURL == "" {
		uploadsURL = DefaultUploadsURL
	}
	return &Provider{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		uploadsURL: strings.TrimRight(uploadsURL, "/"),
		logger:     logging.OrDefault(logger).WithPrefix("mangadex"),
	}
}

func (p *Provider) Category() domain.Category { return domain.CategoryManga }

func (p *Provider) Source() domain.Source { return domain.SourceMangaDex }

func (p *Provider) Fetch(ctx context.Context, query string) ([]domain.Record, error) {
	params := url.Values{}
	params.Add("title", query)
	params.Add("limit", strconv.Itoa(domain.MaxResults))
	params.Add("includes[]", relationCoverArt)
	reqURL := fmt.Sprintf("%s/manga?%s", p.baseURL, params.Encode())

	var resp SearchResponse
	if err := p.client.GetJSON(ctx, reqURL, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Result != "" && resp.Result != "ok" {
		return nil, &domain.ProviderError{Source: domain.SourceMangaDex, Cause: fmt.Errorf("result %q", resp.Result)}
	}

	records := MapManga(resp.Data, p.uploadsURL)
	p.logger.Debug("search complete", "query", query, "results", len(records))
	return records, nil
}
