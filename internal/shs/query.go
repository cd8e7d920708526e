package shs

import (
	"fmt"
	"net/url"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// EntityKind selects the search endpoint.
type EntityKind string

// Searchable entity kinds.
const (
	EntityArtist      EntityKind = "artist"
	EntityPerformance EntityKind = "performance"
	EntityWork        EntityKind = "work"
)

// Page size bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SearchQuery describes one search request. Empty filters are omitted from
// the request. A zero Page means the first page; a zero PageSize means
// DefaultPageSize. Other page sizes are clamped to [1, MaxPageSize].
type SearchQuery struct {
	Kind      EntityKind
	Name      string
	Title     string
	Performer string
	Date      string
	Credits   string
	Page      int
	PageSize  int
}

// Validate checks the query contract. Pagination values below the minimum
// are rejected only for Page; PageSize is clamped instead.
func (q SearchQuery) Validate() error {
	err := validation.ValidateStruct(&q,
		validation.Field(&q.Kind, validation.Required,
			validation.In(EntityArtist, EntityPerformance, EntityWork)),
		validation.Field(&q.Page, validation.Min(1)),
	)
	if err != nil {
		return &ErrInvalidQuery{Cause: err}
	}
	return nil
}

// EffectivePage returns the page that will be requested.
func (q SearchQuery) EffectivePage() int {
	if q.Page == 0 {
		return 1
	}
	return q.Page
}

// EffectivePageSize returns the clamped page size.
func (q SearchQuery) EffectivePageSize() int {
	switch {
	case q.PageSize == 0:
		return DefaultPageSize
	case q.PageSize < 1:
		return 1
	case q.PageSize > MaxPageSize:
		return MaxPageSize
	default:
		return q.PageSize
	}
}

// Params builds the request parameters for the query's kind. Filters that do
// not apply to the kind are ignored.
func (q SearchQuery) Params() url.Values {
	params := url.Values{}
	set := func(key, value string) {
		if value != "" {
			params.Set(key, value)
		}
	}

	switch q.Kind {
	case EntityArtist:
		set("commonName", q.Name)
	case EntityPerformance:
		set("title", q.Title)
		set("performer", q.Performer)
		set("date", q.Date)
	case EntityWork:
		set("title", q.Title)
		set("credits", q.Credits)
	}

	params.Set("page", strconv.Itoa(q.EffectivePage()))
	params.Set("pageSize", strconv.Itoa(q.EffectivePageSize()))
	return params
}

// ErrInvalidQuery is returned for a query that violates the search contract.
type ErrInvalidQuery struct {
	Cause error
}

func (e *ErrInvalidQuery) Error() string {
	return fmt.Sprintf("invalid search query: %v", e.Cause)
}

func (e *ErrInvalidQuery) Unwrap() error { return e.Cause }

// ErrInvalidReference is returned when a profile reference cannot be turned
// into a request URL.
type ErrInvalidReference struct {
	Ref    string
	Reason string
}

func (e *ErrInvalidReference) Error() string {
	return fmt.Sprintf("invalid profile reference %q: %s", e.Ref, e.Reason)
}
