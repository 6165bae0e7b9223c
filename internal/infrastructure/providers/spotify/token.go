package spotify

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/shelflog/backend/internal/domain"
	"github.com/shelflog/backend/internal/infrastructure/httpx"
)

// DefaultTokenURL is the Spotify accounts token endpoint
const DefaultTokenURL = "https://accounts.spotify.com/api/token"

// ClientCredentials exchanges the configured client id/secret for an app
// access token. Every call performs a fresh exchange; tokens are never reused.
type ClientCredentials struct {
	client       *httpx.Client
	tokenURL     string
	clientID     string
	clientSecret string
	now          func() time.Time
}

// NewClientCredentials creates a broker for the client-credentials grant
func NewClientCredentials(client *httpx.Client, tokenURL, clientID, clientSecret string) *ClientCredentials {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &ClientCredentials{
		client:       client,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		now:          time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AccessToken performs the exchange. Any failure is an *domain.AuthError.
func (c *ClientCredentials) AccessToken(ctx context.Context) (domain.Credential, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return domain.Credential{}, &domain.AuthError{Source: domain.SourceSpotify, Cause: errors.New("client id and secret are not configured")}
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	header := http.Header{}
	header.Set("Authorization", "Basic "+basic)

	var resp tokenResponse
	err := c.client.PostFormJSON(ctx, c.tokenURL, url.Values{"grant_type": {"client_credentials"}}, header, &resp)
	if err != nil {
		authErr := &domain.AuthError{Source: domain.SourceSpotify, Cause: err}
		var perr *domain.ProviderError
		if errors.As(err, &perr) {
			authErr.StatusCode = perr.StatusCode
		}
		return domain.Credential{}, authErr
	}
	if resp.AccessToken == "" {
		return domain.Credential{}, &domain.AuthError{Source: domain.SourceSpotify, Cause: errors.New("token response without access_token")}
	}

	return domain.Credential{AccessToken: resp.AccessToken, ObtainedAt: c.now()}, nil
}
