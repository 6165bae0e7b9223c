package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shelflog/backend/internal/domain"
	"github.com/shelflog/backend/internal/infrastructure/httpx"
	"github.com/shelflog/backend/internal/logging"
)

// DefaultBaseURL is the Spotify Web API root
const DefaultBaseURL = "https://api.spotify.com/v1"

// Provider searches Spotify albums. Each search first obtains a new
// access token from the token source.
type Provider struct {
	client  *httpx.Client
	tokens  domain.TokenSource
	baseURL string
	logger  *log.Logger
}

// NewProvider creates a music provider
func NewProvider(client *httpx.Client, tokens domain.TokenSource, baseURL string, logger *log.Logger) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		client:  client,
		tokens:  tokens,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logging.OrDefault(logger).WithPrefix("spotify"),
	}
}

func (p *Provider) Category() domain.Category { return domain.CategoryMusic }

func (p *Provider) Source() domain.Source { return domain.SourceSpotify }

// Fetch searches albums. Token failures are returned as *domain.AuthError.
func (p *Provider) Fetch(ctx context.Context, query string) ([]domain.Record, error) {
	cred, err := p.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Add("q", query)
	params.Add("type", "album")
	params.Add("limit", strconv.Itoa(domain.MaxResults))
	reqURL := fmt.Sprintf("%s/search?%s", p.baseURL, params.Encode())

	header := http.Header{}
	header.Set("Authorization", "Bearer "+cred.AccessToken)

	var resp SearchResponse
	if err := p.client.GetJSON(ctx, reqURL, header, &resp); err != nil {
		return nil, err
	}
	if resp.Albums == nil {
		return nil, &domain.ProviderError{Source: domain.SourceSpotify, Cause: fmt.Errorf("response without albums")}
	}

	records := MapAlbums(resp.Albums.Items)
	p.logger.Debug("search complete", "query", query, "results", len(records))
	return records, nil
}
