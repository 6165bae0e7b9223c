package mangadex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shelflog/backend/internal/domain"
)

const relationCoverArt = "cover_art"

type SearchResponse struct {
	Result string  `json:"result"`
	Data   []Manga `json:"data"`
}

type Manga struct {
	ID            string          `json:"id"`
	Attributes    MangaAttributes `json:"attributes"`
	Relationships []Relationship  `json:"relationships"`
}

type MangaAttributes struct {
	Title LocalizedString `json:"title"`
	Year  *int            `json:"year"`
}

// Relationship links a manga to another entity. Attributes are only
// populated for relation types requested through includes[].
type Relationship struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Attributes *RelationshipAttributes `json:"attributes"`
}

type RelationshipAttributes struct {
	FileName string `json:"fileName"`
}

// LocalizedString is a language-code → text object that remembers the
// order in which languages appeared in the payload.
type LocalizedString struct {
	langs  []string
	values map[string]string
}

// NewLocalizedString builds a LocalizedString from alternating language/text pairs
func NewLocalizedString(pairs ...string) LocalizedString {
	ls := LocalizedString{values: make(map[string]string)}
	for i := 0; i+1 < len(pairs); i += 2 {
		ls.set(pairs[i], pairs[i+1])
	}
	return ls
}

func (ls *LocalizedString) set(lang, text string) {
	if _, seen := ls.values[lang]; !seen {
		ls.langs = append(ls.langs, lang)
	}
	ls.values[lang] = text
}

// UnmarshalJSON walks the object token by token to keep key order
func (ls *LocalizedString) UnmarshalJSON(data []byte) error {
	*ls = LocalizedString{values: make(map[string]string)}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("localized string: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("localized string %v: %w", keyTok, err)
		}
		ls.set(keyTok.(string), text)
	}
	_, err = dec.Token()
	return err
}

// Preferred returns the English text, else the first non-empty localization
func (ls LocalizedString) Preferred() string {
	if en := strings.TrimSpace(ls.values["en"]); en != "" {
		return en
	}
	for _, lang := range ls.langs {
		if text := strings.TrimSpace(ls.values[lang]); text != "" {
			return text
		}
	}
	return ""
}

// MapManga converts MangaDex entries to records, dropping entries without an
// id or any title and keeping at most domain.MaxResults.
func MapManga(items []Manga, uploadsURL string) []domain.Record {
	records := make([]domain.Record, 0, len(items))
	for _, item := range items {
		if len(records) == domain.MaxResults {
			break
		}
		id := strings.TrimSpace(item.ID)
		title := item.Attributes.Title.Preferred()
		if id == "" || title == "" {
			continue
		}

		record := domain.Record{
			ID:       id,
			Title:    title,
			Year:     domain.YearUnknown,
			Category: domain.CategoryManga,
			Source:   domain.SourceMangaDex,
		}
		if item.Attributes.Year != nil && *item.Attributes.Year > 0 {
			record.Year = strconv.Itoa(*item.Attributes.Year)
		}
		if fileName := coverFileName(item.Relationships); fileName != "" {
			record.Image = fmt.Sprintf("%s/covers/%s/%s", uploadsURL, id, fileName)
		}
		records = append(records, record)
	}
	return records
}

// coverFileName returns the file name of the first cover_art relationship
// that carries one. Cover relations without attributes or with a blank
// file name are skipped, so a later usable cover is still picked up.
func coverFileName(rels []Relationship) string {
	for _, rel := range rels {
		if rel.Type != relationCoverArt || rel.Attributes == nil {
			continue
		}
		if name := strings.TrimSpace(rel.Attributes.FileName); name != "" {
			return name
		}
	}
	return ""
}
