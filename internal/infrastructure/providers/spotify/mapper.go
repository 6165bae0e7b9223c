package spotify

import (
	"strings"

	"github.com/shelflog/backend/internal/domain"
)

// SearchResponse is the body of GET /search?type=album
type SearchResponse struct {
	Albums *AlbumPage `json:"albums"`
}

type AlbumPage struct {
	Items []Album `json:"items"`
	Total int     `json:"total"`
}

type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ReleaseDate string   `json:"release_date"`
	Images      []Image  `json:"images"`
	Artists     []Artist `json:"artists"`
}

// Image entries arrive widest first
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MapAlbums converts albums to records, dropping albums without an id or
// name and keeping at most domain.MaxResults.
func MapAlbums(albums []Album) []domain.Record {
	records := make([]domain.Record, 0, len(albums))
	for _, a := range albums {
		if len(records) == domain.MaxResults {
			break
		}
		id := strings.TrimSpace(a.ID)
		name := strings.TrimSpace(a.Name)
		if id == "" || name == "" {
			continue
		}

		record := domain.Record{
			ID:       id,
			Title:    name,
			Year:     domain.YearFromDate(a.ReleaseDate),
			Artist:   joinArtists(a.Artists),
			Category: domain.CategoryMusic,
			Source:   domain.SourceSpotify,
		}
		if len(a.Images) > 0 {
			record.Image = strings.TrimSpace(a.Images[0].URL)
		}
		records = append(records, record)
	}
	return records
}

func joinArtists(artists []Artist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}
