package domain

import (
	"fmt"
	"strings"
)

// Category is the kind of catalog item a caller asks for
type Category string

const (
	CategoryMovie Category = "movie"
	CategoryTV    Category = "tv"
	CategoryAnime Category = "anime"
	CategoryManga Category = "manga"
	CategoryGame  Category = "game"
	CategoryBook  Category = "book"
	CategoryMusic Category = "music"
)

// Categories lists every supported category in display order
var Categories = []Category{
	CategoryMovie, CategoryTV, CategoryAnime, CategoryManga,
	CategoryGame, CategoryBook, CategoryMusic,
}

// ParseCategory normalizes s and checks it against the supported categories
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Source tags which external catalog produced a record
type Source string

const (
	SourceOMDb        Source = "omdb"
	SourceJikan       Source = "jikan"
	SourceRAWG        Source = "rawg"
	SourceOpenLibrary Source = "openlibrary"
	SourceMangaDex    Source = "mangadex"
	SourceSpotify     Source = "spotify"
)

// YearUnknown is used when a provider exposes no usable release year
const YearUnknown = "N/A"

// MaxResults caps every provider response
const MaxResults = 10

// Record is the provider-agnostic search result returned to callers.
// Image, Author and Artist are omitted rather than sent as empty strings.
type Record struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Image    string   `json:"image,omitempty"`
	Year     string   `json:"year"`
	Category Category `json:"category"`
	Source   Source   `json:"source"`
	Author   string   `json:"author,omitempty"`
	Artist   string   `json:"artist,omitempty"`
}

// Valid reports whether the mandatory fields are populated
func (r Record) Valid() bool {
	return r.ID != "" && r.Title != "" && r.Year != "" && r.Category != "" && r.Source != ""
}

// YearFromDate returns the first four characters of a date string such as
// "2010-07-16", or YearUnknown when the string is too short.
func YearFromDate(date string) string {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return YearUnknown
	}
	return date[:4]
}
