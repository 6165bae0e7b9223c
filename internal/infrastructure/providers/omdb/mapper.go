package omdb

import (
	"strings"

	"github.com/shelflog/backend/internal/domain"
)

// posterUnavailable is what OMDb sends instead of a poster URL
const posterUnavailable = "N/A"

// SearchResponse is the body of an OMDb "s=" search
type SearchResponse struct {
	Search       []SearchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
	Response     string       `json:"Response"`
	Error        string       `json:"Error,omitempty"`
}

// SearchItem is a single OMDb search hit
type SearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// MapSearchItems converts OMDb hits to records, dropping hits without an
// IMDb id or title and keeping at most domain.MaxResults.
func MapSearchItems(items []SearchItem, category domain.Category) []domain.Record {
	records := make([]domain.Record, 0, len(items))
	for _, item := range items {
		if len(records) == domain.MaxResults {
			break
		}
		id := strings.TrimSpace(item.IMDbID)
		title := strings.TrimSpace(item.Title)
		if id == "" || title == "" {
			continue
		}

		year := strings.TrimSpace(item.Year)
		if year == "" {
			year = domain.YearUnknown
		}

		record := domain.Record{
			ID:       id,
			Title:    title,
			Year:     year,
			Category: category,
			Source:   domain.SourceOMDb,
		}
		if poster := strings.TrimSpace(item.Poster); poster != "" && poster != posterUnavailable {
			record.Image = poster
		}
		records = append(records, record)
	}
	return records
}
