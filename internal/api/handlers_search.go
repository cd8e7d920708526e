package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/sydlexius/coverlens/internal/shs"
)

type searchResponse struct {
	Outcome  shs.OutcomeInfo  `json:"outcome"`
	Data     shs.SearchResult `json:"data"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// handleSearch runs GET /api/v1/search?kind=artist&name=...
func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) {
	q, err := searchQueryFrom(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := r.searcher.Search(req.Context(), q)
	if err != nil {
		r.writeCallError(w, req, err)
		return
	}
	if !out.OK() {
		writeNotice(w, req, out, out.Notice(describe(q)))
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Outcome:  viewOf(out),
		Data:     out.Payload,
		Page:     q.EffectivePage(),
		PageSize: q.EffectivePageSize(),
	})
}

func searchQueryFrom(req *http.Request) (shs.SearchQuery, error) {
	v := req.URL.Query()
	q := shs.SearchQuery{
		Kind:      shs.EntityKind(v.Get("kind")),
		Name:      v.Get("name"),
		Title:     v.Get("title"),
		Performer: v.Get("performer"),
		Date:      v.Get("date"),
		Credits:   v.Get("credits"),
	}
	if q.Kind == "" {
		q.Kind = shs.EntityArtist
	}

	var err error
	if q.Page, err = intParam(v.Get("page")); err != nil {
		return q, fmt.Errorf("page: %w", err)
	}
	if q.PageSize, err = intParam(v.Get("page_size")); err != nil {
		return q, fmt.Errorf("page_size: %w", err)
	}
	return q, nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return n, nil
}

// describe names a query for notices.
func describe(q shs.SearchQuery) string {
	switch {
	case q.Name != "":
		return fmt.Sprintf("%s %q", q.Kind, q.Name)
	case q.Title != "":
		return fmt.Sprintf("%s %q", q.Kind, q.Title)
	case q.Performer != "":
		return fmt.Sprintf("%s by %q", q.Kind, q.Performer)
	default:
		return string(q.Kind) + " search"
	}
}
