package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestSecurityHeaders_Present(t *testing.T) {
	handler := SecurityHeaders(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	expected := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "no-referrer",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	}
	for header, want := range expected {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestSecurityHeaders_NoHSTSOverHTTP(t *testing.T) {
	handler := SecurityHeaders(okHandler())

	req := httptest.NewRequest(http.MethodGet, "http://localhost/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if hsts := w.Header().Get("Strict-Transport-Security"); hsts != "" {
		t.Errorf("HSTS should not be set over plain HTTP, got %q", hsts)
	}
}

func TestSecurityHeaders_HSTSOverForwardedHTTPS(t *testing.T) {
	handler := SecurityHeaders(okHandler())

	req := httptest.NewRequest(http.MethodGet, "http://localhost/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if hsts := w.Header().Get("Strict-Transport-Security"); hsts == "" {
		t.Fatal("HSTS header missing when X-Forwarded-Proto is https")
	}
}

func TestLogging_AssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var seen string
	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?kind=artist&api_key=hunter2", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected a UUID request id in context, got %q", seen)
	}
	if got := w.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header %q, context %q", got, seen)
	}

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("decoding log line: %v", err)
	}
	if rec["request_id"] != seen {
		t.Errorf("log request_id = %v, want %s", rec["request_id"], seen)
	}
	if rec["status"] != float64(http.StatusTeapot) {
		t.Errorf("log status = %v", rec["status"])
	}
	if q, _ := rec["query"].(string); strings.Contains(q, "hunter2") {
		t.Errorf("query not scrubbed: %q", q)
	}
}

func TestLogging_ReusesIncomingRequestID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := Logging(logger)(okHandler())

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != incoming {
		t.Errorf("request id = %q, want %q", got, incoming)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not a uuid\nforged=1")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got == "not a uuid\nforged=1" {
		t.Error("malformed request id should be replaced")
	}
}

func TestScrubQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"kind=artist&name=Nina", "kind=artist&name=Nina"},
		{"apiKey=abc&page=2", "apiKey=REDACTED&page=2"},
		{"flag", "flag"},
	}
	for _, tt := range tests {
		if got := scrubQuery(tt.in); got != tt.want {
			t.Errorf("scrubQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
