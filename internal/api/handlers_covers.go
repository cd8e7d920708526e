package api

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/sydlexius/coverlens/internal/aggregate"
	"github.com/sydlexius/coverlens/internal/analysis"
	"github.com/sydlexius/coverlens/internal/chart"
	"github.com/sydlexius/coverlens/internal/covers"
	"github.com/sydlexius/coverlens/internal/shs"
)

var errNoTargets = errors.New("at least one uri parameter is required")

type coversResponse struct {
	Outcome shs.OutcomeInfo      `json:"outcome"`
	Artist  shs.EntityRecord     `json:"artist"`
	Data    []covers.CoverRecord `json:"data"`
}

// handleCovers runs GET /api/v1/covers?uri=...&name=...
func (r *Router) handleCovers(w http.ResponseWriter, req *http.Request) {
	v := req.URL.Query()
	report, err := r.analyzer.Analyze(req.Context(), analysis.Target{
		Ref:  v.Get("uri"),
		Name: v.Get("name"),
	})
	if err != nil {
		r.writeCallError(w, req, err)
		return
	}
	if !report.Outcome.OK() {
		writeNotice(w, req, report.Outcome, report.Notice())
		return
	}
	writeJSON(w, http.StatusOK, coversResponse{
		Outcome: viewOf(report.Outcome),
		Artist:  report.Artist,
		Data:    report.Outcome.Payload,
	})
}

type artistReport struct {
	Artist  shs.EntityRecord `json:"artist"`
	Outcome shs.OutcomeInfo  `json:"outcome"`
	Records int              `json:"records"`
	Notice  string           `json:"notice,omitempty"`
}

type summaryView struct {
	Influence []aggregate.Count     `json:"influence"`
	Genres    []aggregate.Count     `json:"genres"`
	Years     []aggregate.YearCount `json:"years"`
	Graph     []aggregate.Edge      `json:"graph"`
}

type analyzeResponse struct {
	Artists []artistReport `json:"artists"`
	Data    summaryView    `json:"data"`
}

// handleAnalyze runs GET /api/v1/analyze?uri=...[&uri=...][&name=...][&target=...]
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) {
	combined, ok := r.analyzeTargets(w, req)
	if !ok {
		return
	}

	target := req.URL.Query().Get("target")
	if target == "" {
		target = aggregate.DefaultTarget
	}
	resp := analyzeResponse{
		Artists: make([]artistReport, len(combined.Reports)),
		Data: summaryView{
			Influence: combined.Summary.TopInfluences(),
			Genres:    combined.Summary.Genres(),
			Years:     combined.Summary.Years(),
			Graph:     combined.Summary.Graph(target),
		},
	}
	for i, rep := range combined.Reports {
		resp.Artists[i] = artistReport{
			Artist:  rep.Artist,
			Outcome: viewOf(rep.Outcome),
			Records: len(rep.Outcome.Payload),
			Notice:  rep.Notice(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleChart runs GET /api/v1/charts/{view}?uri=... and returns a PNG.
func (r *Router) handleChart(w http.ResponseWriter, req *http.Request) {
	view, err := chart.ParseView(req.PathValue("view"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	combined, ok := r.analyzeTargets(w, req)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, view, combined.Summary); err != nil {
		r.writeCallError(w, req, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// analyzeTargets runs the multi-artist analysis for uri/name parameters. It
// writes the response itself and returns false unless at least one artist
// resolved successfully.
func (r *Router) analyzeTargets(w http.ResponseWriter, req *http.Request) (*analysis.Combined, bool) {
	targets := targetsFrom(req)
	if len(targets) == 0 {
		writeError(w, http.StatusBadRequest, errNoTargets.Error())
		return nil, false
	}
	combined, err := r.analyzer.AnalyzeMany(req.Context(), targets)
	if err != nil {
		r.writeCallError(w, req, err)
		return nil, false
	}
	for _, rep := range combined.Reports {
		if rep.Outcome.OK() {
			return combined, true
		}
	}
	first := combined.Reports[0]
	writeNotice(w, req, first.Outcome, first.Notice())
	return nil, false
}

// targetsFrom pairs uri values with name values by position. Names may be
// omitted; missing ones are looked up.
func targetsFrom(req *http.Request) []analysis.Target {
	v := req.URL.Query()
	names := v["name"]
	var targets []analysis.Target
	for i, ref := range v["uri"] {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		t := analysis.Target{Ref: ref}
		if i < len(names) {
			t.Name = strings.TrimSpace(names[i])
		}
		targets = append(targets, t)
	}
	return targets
}
