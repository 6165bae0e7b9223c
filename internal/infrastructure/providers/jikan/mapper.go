package jikan

import (
	"strconv"
	"strings"

	"github.com/shelflog/backend/internal/domain"
)

// SearchResponse is the body of GET /anime
type SearchResponse struct {
	Data []Anime `json:"data"`
}

// Anime is one entry of a Jikan search
type Anime struct {
	MalID  int    `json:"mal_id"`
	Title  string `json:"title"`
	Images Images `json:"images"`
	Year   *int   `json:"year"`
	Aired  Aired  `json:"aired"`
}

// Images groups the image variants Jikan returns per format
type Images struct {
	JPG ImageSet `json:"jpg"`
}

// ImageSet holds the size variants of one image format
type ImageSet struct {
	ImageURL      string `json:"image_url"`
	LargeImageURL string `json:"large_image_url"`
}

// Aired is the airing window; From is an RFC 3339 timestamp or null
type Aired struct {
	From *string `json:"from"`
}

// MapAnime converts Jikan entries to records, dropping entries without a
// MAL id or title and keeping at most domain.MaxResults.
func MapAnime(items []Anime) []domain.Record {
	records := make([]domain.Record, 0, len(items))
	for _, item := range items {
		if len(records) == domain.MaxResults {
			break
		}
		title := strings.TrimSpace(item.Title)
		if item.MalID == 0 || title == "" {
			continue
		}

		records = append(records, domain.Record{
			ID:       strconv.Itoa(item.MalID),
			Title:    title,
			Image:    pickImage(item.Images.JPG),
			Year:     animeYear(item),
			Category: domain.CategoryAnime,
			Source:   domain.SourceJikan,
		})
	}
	return records
}

// pickImage prefers the large JPEG and falls back to the default size
func pickImage(jpg ImageSet) string {
	if u := strings.TrimSpace(jpg.LargeImageURL); u != "" {
		return u
	}
	return strings.TrimSpace(jpg.ImageURL)
}

// animeYear uses the native year, then the start of the airing date
func animeYear(item Anime) string {
	if item.Year != nil && *item.Year > 0 {
		return strconv.Itoa(*item.Year)
	}
	if item.Aired.From != nil {
		return domain.YearFromDate(*item.Aired.From)
	}
	return domain.YearUnknown
}
