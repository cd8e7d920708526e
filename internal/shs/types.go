package shs

// SecondHandSongs API response types.

// listEnvelope is the object form of a list response. Search endpoints use
// resultPage; some list endpoints use data.
type listEnvelope struct {
	ResultPage []Item `json:"resultPage"`
	Data       []Item `json:"data"`
}

func (e *listEnvelope) items() []Item {
	if len(e.ResultPage) > 0 {
		return e.ResultPage
	}
	return e.Data
}

// Item is a single entity in a search, covers or performance list. Which
// name field is populated depends on the entity type.
type Item struct {
	URI           string     `json:"uri"`
	EntityType    string     `json:"entityType"`
	EntitySubtype string     `json:"entitySubtype"`
	CommonName    string     `json:"commonName"`
	Title         string     `json:"title"`
	Name          string     `json:"name"`
	Performer     *Performer `json:"performer,omitempty"`
	Date          string     `json:"date"`
	ReleaseDate   string     `json:"release_date"`
	Genre         string     `json:"genre"`
}

// Performer is the nested performer object on performance and cover items.
type Performer struct {
	URI        string `json:"uri"`
	Name       string `json:"name"`
	CommonName string `json:"commonName"`
}

// DisplayName returns the first populated name field.
func (i Item) DisplayName() string {
	switch {
	case i.CommonName != "":
		return i.CommonName
	case i.Title != "":
		return i.Title
	default:
		return i.Name
	}
}

// Subtype returns the entity subtype, falling back to the entity type.
func (i Item) Subtype() string {
	if i.EntitySubtype != "" {
		return i.EntitySubtype
	}
	return i.EntityType
}

// PerformerName returns the nested performer's display name, or "".
func (i Item) PerformerName() string {
	if i.Performer == nil {
		return ""
	}
	if i.Performer.Name != "" {
		return i.Performer.Name
	}
	return i.Performer.CommonName
}

// DateString returns the item's date, preferring date over release_date.
func (i Item) DateString() string {
	if i.Date != "" {
		return i.Date
	}
	return i.ReleaseDate
}

// EntityRecord is one row of a search result.
type EntityRecord struct {
	Name       string `json:"name"`
	Subtype    string `json:"subtype"`
	ProfileRef string `json:"profile_ref"`
}

// SearchResult is an ordered list of entity records.
type SearchResult []EntityRecord

func toRecord(i Item) EntityRecord {
	return EntityRecord{
		Name:       i.DisplayName(),
		Subtype:    i.Subtype(),
		ProfileRef: i.URI,
	}
}

func toResult(items []Item) SearchResult {
	result := make(SearchResult, 0, len(items))
	for _, it := range items {
		result = append(result, toRecord(it))
	}
	return result
}
