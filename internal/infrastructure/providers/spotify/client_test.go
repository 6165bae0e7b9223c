package spotify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shelflog/backend/internal/domain"
	"github.com/shelflog/backend/internal/infrastructure/httpx"
	"github.com/shelflog/backend/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSpotify serves both the token endpoint and the search endpoint
func stubSpotify(t *testing.T, tokenCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		w.Write([]byte(`{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer fresh-token", r.Header.Get("Authorization"))
		assert.Equal(t, "album", r.URL.Query().Get("type"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"albums":{"total":1,"items":[{
			"id":"4aawyAB9vmqN3uQ7FjRGTy",
			"name":"Random Access Memories",
			"release_date":"2013-05-17",
			"images":[{"url":"https://i.scdn.co/640.jpg","height":640,"width":640},{"url":"https://i.scdn.co/300.jpg","height":300,"width":300}],
			"artists":[{"id":"a1","name":"Daft Punk"}]
		}]}}`))
	})
	return httptest.NewServer(mux)
}

func newTestProvider(serverURL string) *Provider {
	client := httpx.NewClient(domain.SourceSpotify, httpx.Options{MaxAttempts: 1, Logger: logging.Discard()})
	tokens := NewClientCredentials(client, serverURL+"/api/token", "id", "secret")
	return NewProvider(client, tokens, serverURL+"/v1", logging.Discard())
}

func TestFetch(t *testing.T) {
	var tokenCalls int32
	server := stubSpotify(t, &tokenCalls)
	defer server.Close()

	records, err := newTestProvider(server.URL).Fetch(context.Background(), "daft punk")

	require.NoError(t, err)
	assert.Equal(t, []domain.Record{{
		ID:       "4aawyAB9vmqN3uQ7FjRGTy",
		Title:    "Random Access Memories",
		Image:    "https://i.scdn.co/640.jpg",
		Year:     "2013",
		Artist:   "Daft Punk",
		Category: domain.CategoryMusic,
		Source:   domain.SourceSpotify,
	}}, records)
}

func TestFetch_FreshTokenPerSearch(t *testing.T) {
	var tokenCalls int32
	server := stubSpotify(t, &tokenCalls)
	defer server.Close()

	provider := newTestProvider(server.URL)
	for i := 0; i < 3; i++ {
		_, err := provider.Fetch(context.Background(), "daft punk")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(3), atomic.LoadInt32(&tokenCalls))
}

func TestFetch_AuthFailure(t *testing.T) {
	var searchCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&searchCalls, 1)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := newTestProvider(server.URL).Fetch(context.Background(), "daft punk")

	assert.ErrorIs(t, err, domain.ErrAuthFailure)
	assert.Zero(t, atomic.LoadInt32(&searchCalls))
}

func TestMapAlbums(t *testing.T) {
	albums := []Album{
		{ID: "1", Name: "Collab", ReleaseDate: "1999", Artists: []Artist{{Name: "A"}, {Name: "B"}}},
		{ID: "2", Name: "", ReleaseDate: "2001-01-01"},
		{ID: "3", Name: "No Date"},
	}

	assert.Equal(t, []domain.Record{
		{ID: "1", Title: "Collab", Year: "1999", Artist: "A, B", Category: domain.CategoryMusic, Source: domain.SourceSpotify},
		{ID: "3", Title: "No Date", Year: domain.YearUnknown, Category: domain.CategoryMusic, Source: domain.SourceSpotify},
	}, MapAlbums(albums))
}
