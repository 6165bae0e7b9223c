package omdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shelflog/backend/internal/domain"
	"github.com/shelflog/backend/internal/infrastructure/httpx"
	"github.com/shelflog/backend/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, baseURL string, category domain.Category) *Provider {
	t.Helper()
	client := httpx.NewClient(domain.SourceOMDb, httpx.Options{MaxAttempts: 1, Logger: logging.Discard()})
	p, err := NewProvider(client, "test-api-key", baseURL, category, logging.Discard())
	require.NoError(t, err)
	return p
}

func TestNewProvider(t *testing.T) {
	client := httpx.NewClient(domain.SourceOMDb, httpx.Options{})

	movie, err := NewProvider(client, "k", "", domain.CategoryMovie, nil)
	require.NoError(t, err)
	assert.Equal(t, "movie", movie.searchType)
	assert.Equal(t, DefaultBaseURL, movie.baseURL)
	assert.Equal(t, domain.SourceOMDb, movie.Source())

	tv, err := NewProvider(client, "k", "http://stub/", domain.CategoryTV, nil)
	require.NoError(t, err)
	assert.Equal(t, "series", tv.searchType)
	assert.Equal(t, "http://stub", tv.baseURL)
	assert.Equal(t, domain.CategoryTV, tv.Category())

	_, err = NewProvider(client, "k", "", domain.CategoryBook, nil)
	assert.Error(t, err)
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "Inception", r.URL.Query().Get("s"))
		assert.Equal(t, "movie", r.URL.Query().Get("type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Search":[{"Title":"Inception","Year":"2010","imdbID":"tt1375666","Type":"movie","Poster":"N/A"}],"totalResults":"1","Response":"True"}`))
	}))
	defer server.Close()

	records, err := newTestProvider(t, server.URL, domain.CategoryMovie).Fetch(context.Background(), "Inception")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.Record{
		ID: "tt1375666", Title: "Inception", Year: "2010",
		Category: domain.CategoryMovie, Source: domain.SourceOMDb,
	}, records[0])
}

func TestFetch_SeriesToggle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "series", r.URL.Query().Get("type"))
		w.Write([]byte(`{"Search":[{"Title":"Dark","Year":"2017–2020","imdbID":"tt5753856","Type":"series","Poster":"https://img/dark.jpg"}],"Response":"True"}`))
	}))
	defer server.Close()

	records, err := newTestProvider(t, server.URL, domain.CategoryTV).Fetch(context.Background(), "dark")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.CategoryTV, records[0].Category)
	assert.Equal(t, "https://img/dark.jpg", records[0].Image)
}

func TestFetch_NotFoundIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	}))
	defer server.Close()

	records, err := newTestProvider(t, server.URL, domain.CategoryMovie).Fetch(context.Background(), "zzzzqqq")

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	records, err := newTestProvider(t, server.URL, domain.CategoryMovie).Fetch(context.Background(), "Inception")

	assert.Nil(t, records)
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
}
