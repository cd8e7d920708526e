package covers

import "github.com/sydlexius/coverlens/internal/shs"

// Placeholder values for fields the upstream did not supply.
const (
	UnknownPerformer = "Unknown"
	UnknownGenre     = "Unknown"
)

// CoverRecord is the normalized shape of a covers or performances item.
// Year is nil when the item had no parsable date.
type CoverRecord struct {
	Title     string `json:"title"`
	Performer string `json:"performer"`
	Year      *int   `json:"year,omitempty"`
	Genre     string `json:"genre"`
}

// ParseYear reads a four-digit year from the head of a date string such as
// "1975-06-01". It returns nil for short, non-numeric or out-of-range input.
func ParseYear(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year := 0
	for _, c := range date[:4] {
		if c < '0' || c > '9' {
			return nil
		}
		year = year*10 + int(c-'0')
	}
	if year < 1000 {
		return nil
	}
	return &year
}

// normalize maps upstream items onto cover records. defaultPerformer is used
// when an item has no performer; an empty default means UnknownPerformer.
// Performances carry no reliable genre, so fromPerformances files every
// record under UnknownGenre.
func normalize(items []shs.Item, defaultPerformer string, fromPerformances bool) []CoverRecord {
	if defaultPerformer == "" {
		defaultPerformer = UnknownPerformer
	}
	records := make([]CoverRecord, 0, len(items))
	for _, it := range items {
		performer := it.PerformerName()
		if performer == "" {
			performer = defaultPerformer
		}
		genre := it.Genre
		if genre == "" || fromPerformances {
			genre = UnknownGenre
		}
		records = append(records, CoverRecord{
			Title:     it.DisplayName(),
			Performer: performer,
			Year:      ParseYear(it.DateString()),
			Genre:     genre,
		})
	}
	return records
}
