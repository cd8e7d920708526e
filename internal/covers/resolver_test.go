package covers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sydlexius/coverlens/internal/shs"
)

// fakeSource returns canned outcomes and records every call.
type fakeSource struct {
	mu          sync.Mutex
	covers      map[string]shs.Outcome[[]shs.Item]
	performance shs.Outcome[[]shs.Item]
	coverCalls  []string
	searchCalls []shs.SearchQuery
}

func (f *fakeSource) Covers(_ context.Context, ref string) (shs.Outcome[[]shs.Item], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ref == "" {
		return shs.Outcome[[]shs.Item]{}, &shs.ErrInvalidReference{Ref: ref, Reason: "empty"}
	}
	f.coverCalls = append(f.coverCalls, ref)
	return f.covers[ref], nil
}

func (f *fakeSource) SearchItems(_ context.Context, q shs.SearchQuery) (shs.Outcome[[]shs.Item], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, q)
	return f.performance, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

var nina = shs.EntityRecord{Name: "Nina Simone", Subtype: "person", ProfileRef: "/artist/11578"}

var twoPerformances = shs.Success([]shs.Item{
	{Title: "Feeling Good", Date: "1965-01-01"},
	{Title: "Sinnerman", Performer: &shs.Performer{Name: "Nina Simone & Band"}},
})

func TestResolvePrimarySuccessSkipsFallback(t *testing.T) {
	src := &fakeSource{
		covers: map[string]shs.Outcome[[]shs.Item]{
			nina.ProfileRef: shs.Success([]shs.Item{
				{Title: "Feeling Good", Performer: &shs.Performer{Name: "Muse"}, Date: "2001-06-18", Genre: "Rock"},
			}),
		},
	}
	r := NewResolver(src, quietLogger(), 0)

	out, err := r.Resolve(context.Background(), nina)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Tag != shs.TagSuccess || len(out.Payload) != 1 {
		t.Fatalf("expected 1 record, got %s/%d", out.Tag, len(out.Payload))
	}
	rec := out.Payload[0]
	if rec.Performer != "Muse" || rec.Genre != "Rock" || rec.Year == nil || *rec.Year != 2001 {
		t.Errorf("unexpected record %+v", rec)
	}
	if len(src.searchCalls) != 0 {
		t.Errorf("expected no fallback call, got %d", len(src.searchCalls))
	}
}

func TestResolveFallsBackOn500(t *testing.T) {
	src := &fakeSource{
		covers: map[string]shs.Outcome[[]shs.Item]{
			nina.ProfileRef: shs.HTTPError[[]shs.Item](http.StatusInternalServerError, []byte("oops"), nil),
		},
		performance: twoPerformances,
	}
	r := NewResolver(src, quietLogger(), 0)

	out, err := r.Resolve(context.Background(), nina)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(src.searchCalls) != 1 {
		t.Fatalf("expected exactly 1 fallback call, got %d", len(src.searchCalls))
	}
	q := src.searchCalls[0]
	if q.Kind != shs.EntityPerformance || q.Performer != "Nina Simone" {
		t.Errorf("unexpected fallback query %+v", q)
	}
	if out.Tag != shs.TagSuccess || len(out.Payload) != 2 {
		t.Fatalf("expected 2 records, got %s/%d", out.Tag, len(out.Payload))
	}
	if out.Payload[0].Performer != "Nina Simone" {
		t.Errorf("expected performer defaulted to artist name, got %q", out.Payload[0].Performer)
	}
	if out.Payload[1].Performer != "Nina Simone & Band" {
		t.Errorf("expected nested performer kept, got %q", out.Payload[1].Performer)
	}
	for i, rec := range out.Payload {
		if rec.Genre != UnknownGenre {
			t.Errorf("record %d: expected genre %q, got %q", i, UnknownGenre, rec.Genre)
		}
	}
}

func TestResolveFallsBackOnEmpty(t *testing.T) {
	src := &fakeSource{
		covers: map[string]shs.Outcome[[]shs.Item]{
			nina.ProfileRef: shs.Empty[[]shs.Item](),
		},
		performance: twoPerformances,
	}
	r := NewResolver(src, quietLogger(), 0)

	out, err := r.Resolve(context.Background(), nina)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(src.searchCalls) != 1 {
		t.Fatalf("expected exactly 1 fallback call, got %d", len(src.searchCalls))
	}
	if !out.OK() || len(out.Payload) != 2 {
		t.Errorf("expected 2 records, got %s/%d", out.Tag, len(out.Payload))
	}
}

func TestResolveFallbackGenreIsUnknown(t *testing.T) {
	src := &fakeSource{
		covers: map[string]shs.Outcome[[]shs.Item]{
			nina.ProfileRef: shs.HTTPError[[]shs.Item](http.StatusInternalServerError, nil, nil),
		},
		performance: shs.Success([]shs.Item{
			{Title: "X", Genre: "Jazz"},
			{Title: "Y", Performer: &shs.Performer{Name: "Muse"}, Genre: "Rock"},
		}),
	}
	r := NewResolver(src, quietLogger(), 0)

	out, err := r.Resolve(context.Background(), nina)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Tag != shs.TagSuccess || len(out.Payload) != 2 {
		t.Fatalf("expected 2 records, got %s/%d", out.Tag, len(out.Payload))
	}
	for i, rec := range out.Payload {
		if rec.Genre != UnknownGenre {
			t.Errorf("record %d: expected genre %q, got %q", i, UnknownGenre, rec.Genre)
		}
	}
}

func TestResolveFallbackWithoutName(t *testing.T) {
	anon := shs.EntityRecord{ProfileRef: "/artist/42"}
	src := &fakeSource{
		covers: map[string]shs.Outcome[[]shs.Item]{
			anon.ProfileRef: shs.Empty[[]shs.Item](),
		},
		performance: shs.Empty[[]shs.Item](),
	}
	r := NewResolver(src, quietLogger(), 0)

	out, err := r.Resolve(context.Background(), anon)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(src.searchCalls) != 1 {
		t.Fatalf("expected exactly 1 fallback call, got %d", len(src.searchCalls))
	}
	if q := src.searchCalls[0]; q.Kind != shs.EntityPerformance || q.Performer != "" {
		t.Errorf("unexpected fallback query %+v", q)
	}
	if out.Tag != shs.TagEmpty {
		t.Errorf("expected empty, got %s", out.Tag)
	}
}

func TestResolveNoFallbackOnOtherFailures(t *testing.T) {
	cases := []struct {
		name    string
		primary shs.Outcome[[]shs.Item]
		wantTag shs.Tag
	}{
		{"404", shs.HTTPError[[]shs.Item](http.StatusNotFound, []byte("nope"), nil), shs.TagHTTPError},
		{"502", shs.HTTPError[[]shs.Item](http.StatusBadGateway, nil, nil), shs.TagHTTPError},
		{"transport", shs.HTTPError[[]shs.Item](0, nil, errors.New("dial tcp: refused")), shs.TagHTTPError},
		{"decode", shs.DecodeError[[]shs.Item]([]byte("{"), errors.New("unexpected EOF")), shs.TagDecodeError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{
				covers:      map[string]shs.Outcome[[]shs.Item]{nina.ProfileRef: tc.primary},
				performance: twoPerformances,
			}
			r := NewResolver(src, quietLogger(), 0)

			out, err := r.Resolve(context.Background(), nina)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if out.Tag != tc.wantTag {
				t.Errorf("expected %s, got %s", tc.wantTag, out.Tag)
			}
			if out.StatusCode != tc.primary.StatusCode {
				t.Errorf("expected status %d, got %d", tc.primary.StatusCode, out.StatusCode)
			}
			if len(src.searchCalls) != 0 {
				t.Errorf("expected no fallback call, got %d", len(src.searchCalls))
			}
		})
	}
}

func TestResolveFallbackFailureIsEmpty(t *testing.T) {
	fallbacks := map[string]shs.Outcome[[]shs.Item]{
		"empty":  shs.Empty[[]shs.Item](),
		"500":    shs.HTTPError[[]shs.Item](http.StatusInternalServerError, nil, nil),
		"404":    shs.HTTPError[[]shs.Item](http.StatusNotFound, nil, nil),
		"decode": shs.DecodeError[[]shs.Item]([]byte("<"), errors.New("bad")),
	}
	for name, fb := range fallbacks {
		t.Run(name, func(t *testing.T) {
			src := &fakeSource{
				covers: map[string]shs.Outcome[[]shs.Item]{
					nina.ProfileRef: shs.HTTPError[[]shs.Item](http.StatusInternalServerError, nil, nil),
				},
				performance: fb,
			}
			r := NewResolver(src, quietLogger(), 0)

			out, err := r.Resolve(context.Background(), nina)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if out.Tag != shs.TagEmpty {
				t.Errorf("expected empty, got %s", out.Tag)
			}
		})
	}
}

func TestResolveMissingReference(t *testing.T) {
	src := &fakeSource{}
	r := NewResolver(src, quietLogger(), 0)

	_, err := r.Resolve(context.Background(), shs.EntityRecord{Name: "Nobody"})
	var invalid *shs.ErrInvalidReference
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
	if len(src.searchCalls) != 0 {
		t.Errorf("expected no fallback call, got %d", len(src.searchCalls))
	}
}

func TestResolveDeterministic(t *testing.T) {
	src := &fakeSource{
		covers: map[string]shs.Outcome[[]shs.Item]{
			nina.ProfileRef: shs.Empty[[]shs.Item](),
		},
		performance: twoPerformances,
	}
	r := NewResolver(src, quietLogger(), 0)

	first, _ := r.Resolve(context.Background(), nina)
	second, _ := r.Resolve(context.Background(), nina)
	if first.Tag != second.Tag || len(first.Payload) != len(second.Payload) {
		t.Fatalf("outcomes differ")
	}
	for i := range first.Payload {
		a, b := first.Payload[i], second.Payload[i]
		if a.Title != b.Title || a.Performer != b.Performer || a.Genre != b.Genre || (a.Year == nil) != (b.Year == nil) {
			t.Errorf("record %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestResolveMany(t *testing.T) {
	muse := shs.EntityRecord{Name: "Muse", ProfileRef: "/artist/42"}
	src := &fakeSource{
		covers: map[string]shs.Outcome[[]shs.Item]{
			nina.ProfileRef: shs.Success([]shs.Item{{Title: "A"}, {Title: "B"}}),
			muse.ProfileRef: shs.HTTPError[[]shs.Item](http.StatusNotFound, nil, nil),
		},
	}
	r := NewResolver(src, quietLogger(), 2)

	results, err := r.ResolveMany(context.Background(), []shs.EntityRecord{nina, muse})
	if err != nil {
		t.Fatalf("ResolveMany: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 resolutions, got %d", len(results))
	}
	if results[0].Artist.Name != "Nina Simone" || !results[0].Outcome.OK() {
		t.Errorf("unexpected first resolution %+v", results[0])
	}
	if results[1].Outcome.Tag != shs.TagHTTPError {
		t.Errorf("expected second resolution to fail, got %s", results[1].Outcome.Tag)
	}
	if merged := Merge(results); len(merged) != 2 {
		t.Errorf("expected 2 merged records, got %d", len(merged))
	}
}

func TestResolveManyContractError(t *testing.T) {
	r := NewResolver(&fakeSource{}, quietLogger(), 1)
	_, err := r.ResolveMany(context.Background(), []shs.EntityRecord{{Name: "no ref"}})
	if err == nil {
		t.Fatal("expected error for artist without reference")
	}
}

func TestParseYear(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1975-06-01", 1975, true},
		{"1980", 1980, true},
		{"2001-06", 2001, true},
		{"", 0, false},
		{"??", 0, false},
		{"19", 0, false},
		{"abcd-01-01", 0, false},
		{"0999-01-01", 0, false},
		{"9999", 9999, true},
	}
	for _, tc := range cases {
		got := ParseYear(tc.in)
		if (got != nil) != tc.ok {
			t.Errorf("ParseYear(%q) = %v, want ok=%v", tc.in, got, tc.ok)
			continue
		}
		if got != nil && *got != tc.want {
			t.Errorf("ParseYear(%q) = %d, want %d", tc.in, *got, tc.want)
		}
	}
}

// TestResolveEndToEnd drives the resolver through a real client against a
// server whose covers endpoint always fails with 500.
func TestResolveEndToEnd(t *testing.T) {
	var mu sync.Mutex
	var coverHits, searchHits int
	var performerFilter string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/artist/11578/covers":
			coverHits++
			w.WriteHeader(http.StatusInternalServerError)
		case "/search/performance":
			searchHits++
			performerFilter = r.URL.Query().Get("performer")
			w.Write([]byte(`{"resultPage":[
				{"title":"Feeling Good","uri":"https://secondhandsongs.com/performance/1","date":"1965-07-01"},
				{"title":"I Put a Spell on You","uri":"https://secondhandsongs.com/performance/2","performer":{"name":"Nina Simone"}}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := shs.New(shs.NewHTTPTransport(5*time.Second, 0), quietLogger(), shs.Options{BaseURL: srv.URL})
	r := NewResolver(client, quietLogger(), 0)

	artist := shs.EntityRecord{Name: "Nina Simone", ProfileRef: "https://secondhandsongs.com/artist/11578"}
	out, err := r.Resolve(context.Background(), artist)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if coverHits != 1 || searchHits != 1 {
		t.Fatalf("expected 1 covers and 1 search call, got %d and %d", coverHits, searchHits)
	}
	if performerFilter != "Nina Simone" {
		t.Errorf("expected performer filter %q, got %q", "Nina Simone", performerFilter)
	}
	if out.Tag != shs.TagSuccess || len(out.Payload) != 2 {
		t.Fatalf("expected 2 records, got %s/%d", out.Tag, len(out.Payload))
	}
	for i, rec := range out.Payload {
		if rec.Genre != UnknownGenre {
			t.Errorf("record %d: expected genre Unknown, got %q", i, rec.Genre)
		}
		if rec.Performer != "Nina Simone" {
			t.Errorf("record %d: expected performer Nina Simone, got %q", i, rec.Performer)
		}
	}
	if out.Payload[0].Year == nil || *out.Payload[0].Year != 1965 {
		t.Errorf("expected year 1965, got %v", out.Payload[0].Year)
	}
	if out.Payload[1].Year != nil {
		t.Errorf("expected no year, got %d", *out.Payload[1].Year)
	}
}
