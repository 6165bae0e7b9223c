package openlibrary

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

func TestFetch_Dune(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "Dune", r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"numFound":1,"start":0,"docs":[{"key":"/works/OL893415W","title":"Dune","cover_i":12345,"first_publish_year":1965,"author_name":["Frank Herbert"]}]}`))
	}))
	defer server.Close()

	client := httpx.NewClient(domain.SourceOpenLibrary, httpx.Options{MaxAttempts: 1, Logger: logging.Discard()})
	provider := NewProvider(client, server.URL, "", logging.Discard())

	records, err := provider.Fetch(context.Background(), "Dune")

	require.NoError(t, err)
	assert.Equal(t, []domain.Record{{
		ID:       "OL893415W",
		Title:    "Dune",
		Image:    "https://covers.openlibrary.org/b/id/12345-L.jpg",
		Year:     "1965",
		Author:   "Frank Herbert",
		Category: domain.CategoryBook,
		Source:   domain.SourceOpenLibrary,
	}}, records)
}

func TestFetch_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	client := httpx.NewClient(domain.SourceOpenLibrary, httpx.Options{MaxAttempts: 1, Logger: logging.Discard()})
	_, err := NewProvider(client, server.URL, "", logging.Discard()).Fetch(context.Background(), "Dune")

	assert.ErrorIs(t, err, domain.ErrProviderFailure)
}
