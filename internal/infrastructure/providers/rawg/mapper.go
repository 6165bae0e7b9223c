package rawg

import (
	"strconv"
	"strings"

	"github.com/shelflog/backend/internal/domain"
)

type SearchResponse struct {
	Count   int    `json:"count"`
	Results []Game `json:"results"`
}

type Game struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	BackgroundImage string `json:"background_image"`
	Released        string `json:"released"`
}

// MapGames converts RAWG games to records. released is "YYYY-MM-DD" or null.
func MapGames(games []Game) []domain.Record {
	records := make([]domain.Record, 0, len(games))
	for _, g := range games {
		if len(records) == domain.MaxResults {
			break
		}
		name := strings.TrimSpace(g.Name)
		if g.ID == 0 || name == "" {
			continue
		}
		records = append(records, domain.Record{
			ID:       strconv.Itoa(g.ID),
			Title:    name,
			Image:    strings.TrimSpace(g.BackgroundImage),
			Year:     domain.YearFromDate(g.Released),
			Category: domain.CategoryGame,
			Source:   domain.SourceRAWG,
		})
	}
	return records
}
