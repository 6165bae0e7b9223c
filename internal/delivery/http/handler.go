package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shelflog/backend/internal/domain"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Searcher answers category searches
type Searcher interface {
	Search(ctx context.Context, category, query string) ([]domain.Record, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searcher Searcher
}

// NewHandler creates a new HTTP handler
func NewHandler(searcher Searcher) *Handler {
	return &Handler{searcher: searcher}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "shelflog-backend",
		"version": Version,
	})
}

// Search handles GET /api/v1/search?type={category}&q={query}
func (h *Handler) Search(c *gin.Context) {
	h.search(c, c.Query("type"))
}

// SearchByCategory handles GET /api/v1/search/:category?q={query}
func (h *Handler) SearchByCategory(c *gin.Context) {
	h.search(c, c.Param("category"))
}

func (h *Handler) search(c *gin.Context, category string) {
	if h.searcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search service unavailable"})
		return
	}

	records, err := h.searcher.Search(c.Request.Context(), category, c.Query("q"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if records == nil {
		records = []domain.Record{}
	}
	c.JSON(http.StatusOK, records)
}
