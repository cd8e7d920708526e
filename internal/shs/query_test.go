package shs

import (
	"errors"
	"net/http"
	"testing"
)

func TestEffectivePageSize(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultPageSize},
		{-5, 1},
		{1, 1},
		{50, 50},
		{100, 100},
		{101, 100},
		{10000, 100},
	}
	for _, tc := range cases {
		q := SearchQuery{Kind: EntityArtist, PageSize: tc.in}
		if got := q.EffectivePageSize(); got != tc.want {
			t.Errorf("EffectivePageSize(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		q       SearchQuery
		wantErr bool
	}{
		{"artist", SearchQuery{Kind: EntityArtist, Name: "x"}, false},
		{"performance page 3", SearchQuery{Kind: EntityPerformance, Page: 3}, false},
		{"work huge page size", SearchQuery{Kind: EntityWork, PageSize: 1000}, false},
		{"missing kind", SearchQuery{Name: "x"}, true},
		{"unknown kind", SearchQuery{Kind: "label"}, true},
		{"negative page", SearchQuery{Kind: EntityArtist, Page: -1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil {
				var invalid *ErrInvalidQuery
				if !errors.As(err, &invalid) {
					t.Errorf("expected ErrInvalidQuery, got %T", err)
				}
			}
		})
	}
}

func TestParamsPerKind(t *testing.T) {
	q := SearchQuery{
		Kind:      EntityPerformance,
		Name:      "ignored",
		Title:     "Feeling Good",
		Performer: "Nina Simone",
		Credits:   "ignored",
	}
	p := q.Params()
	if p.Get("title") != "Feeling Good" || p.Get("performer") != "Nina Simone" {
		t.Errorf("unexpected params: %v", p)
	}
	if p.Has("commonName") || p.Has("credits") || p.Has("date") {
		t.Errorf("expected inapplicable and unset filters to be omitted: %v", p)
	}
	if p.Get("page") != "1" || p.Get("pageSize") != "20" {
		t.Errorf("expected default pagination, got page=%s pageSize=%s", p.Get("page"), p.Get("pageSize"))
	}

	a := SearchQuery{Kind: EntityArtist, Name: "Muse", Page: 2, PageSize: 10}.Params()
	if a.Get("commonName") != "Muse" || a.Get("page") != "2" || a.Get("pageSize") != "10" {
		t.Errorf("unexpected artist params: %v", a)
	}
}

func TestMapCarriesFailures(t *testing.T) {
	in := HTTPError[[]Item](http.StatusBadGateway, []byte("bad gateway"), nil)
	out := Map(in, toResult)
	if out.Tag != TagHTTPError || out.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected http_error 502, got %s/%d", out.Tag, out.StatusCode)
	}
	if string(out.Body) != "bad gateway" {
		t.Errorf("expected body carried over, got %q", out.Body)
	}
}

func TestCapBody(t *testing.T) {
	big := make([]byte, maxDiagnosticBody+10)
	out := DecodeError[Item](big, errors.New("boom"))
	if len(out.Body) != maxDiagnosticBody {
		t.Errorf("expected body capped to %d, got %d", maxDiagnosticBody, len(out.Body))
	}
}

func TestTagString(t *testing.T) {
	want := map[Tag]string{
		TagSuccess:     "success",
		TagEmpty:       "empty",
		TagHTTPError:   "http_error",
		TagDecodeError: "decode_error",
	}
	for tag, s := range want {
		if tag.String() != s {
			t.Errorf("%d.String() = %q, want %q", int(tag), tag.String(), s)
		}
	}
}

func TestOutcomeInfo(t *testing.T) {
	o := HTTPError[SearchResult](http.StatusNotFound, []byte("not found here"), errors.New("boom"))
	info := o.Info(9)
	if info.Tag != "http_error" || info.Status != http.StatusNotFound {
		t.Errorf("unexpected info %+v", info)
	}
	if info.Body != "not found" {
		t.Errorf("expected body truncated to 9 bytes, got %q", info.Body)
	}
	if info.Error != "boom" {
		t.Errorf("unexpected error %q", info.Error)
	}

	if got := Success(SearchResult{}).Info(10); got != (OutcomeInfo{Tag: "success"}) {
		t.Errorf("unexpected success info %+v", got)
	}
}

func TestNoticeHTMLPage(t *testing.T) {
	titled := DecodeError[Item]([]byte("<html>"), &HTMLPageError{Title: "Bad Gateway"})
	if got := titled.Notice("search"); got != `upstream returned an HTML page ("Bad Gateway") instead of JSON for search` {
		t.Errorf("unexpected notice %q", got)
	}
	untitled := DecodeError[Item]([]byte("<html>"), &HTMLPageError{})
	if got := untitled.Notice("search"); got != "upstream returned an HTML page instead of JSON for search" {
		t.Errorf("unexpected notice %q", got)
	}
	garbled := DecodeError[Item]([]byte("{"), errors.New("unexpected EOF"))
	if got := garbled.Notice("search"); got != "upstream response for search could not be decoded" {
		t.Errorf("unexpected notice %q", got)
	}
}
