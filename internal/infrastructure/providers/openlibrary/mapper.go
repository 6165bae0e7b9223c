package openlibrary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shelflog/backend/internal/domain"
)

// unknownAuthor is reported when a work lists no authors
const unknownAuthor = "Unknown"

// SearchResponse represents the API response from Open Library search
type SearchResponse struct {
	NumFound int   `json:"numFound"`
	Start    int   `json:"start"`
	Docs     []Doc `json:"docs"`
}

// Doc represents one work in a search response
type Doc struct {
	Key              string   `json:"key"` // "/works/OL45804W"
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverI           int      `json:"cover_i"`
}

// MapDocs converts Open Library docs to records, dropping docs without a
// work key or title and keeping at most domain.MaxResults.
func MapDocs(docs []Doc, coversURL string) []domain.Record {
	records := make([]domain.Record, 0, len(docs))
	for _, doc := range docs {
		if len(records) == domain.MaxResults {
			break
		}
		id := strings.TrimPrefix(strings.TrimSpace(doc.Key), "/works/")
		title := strings.TrimSpace(doc.Title)
		if id == "" || title == "" {
			continue
		}

		record := domain.Record{
			ID:       id,
			Title:    title,
			Year:     domain.YearUnknown,
			Author:   joinAuthors(doc.AuthorName),
			Category: domain.CategoryBook,
			Source:   domain.SourceOpenLibrary,
		}
		if doc.FirstPublishYear > 0 {
			record.Year = strconv.Itoa(doc.FirstPublishYear)
		}
		if doc.CoverI > 0 {
			record.Image = CoverURL(coversURL, doc.CoverI)
		}
		records = append(records, record)
	}
	return records
}

// CoverURL builds the large cover image URL for a numeric cover id
func CoverURL(coversURL string, coverID int) string {
	return fmt.Sprintf("%s/b/id/%d-L.jpg", coversURL, coverID)
}

func joinAuthors(names []string) string {
	if len(names) == 0 {
		return unknownAuthor
	}
	return strings.Join(names, ", ")
}
