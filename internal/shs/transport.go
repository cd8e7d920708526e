package shs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// maxResponseBody bounds how much of any response is read.
	maxResponseBody = 4 * 1024 * 1024
	// maxDiagnosticBody bounds the body kept on error outcomes.
	maxDiagnosticBody = 64 * 1024
)

// Response is the subset of an HTTP response the client classifies.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs a single GET. Implementations own pooling, TLS and
// timeouts; they must not retry.
type Transport interface {
	Get(ctx context.Context, rawURL string, params url.Values, header http.Header) (*Response, error)
}

// HTTPTransport is the net/http Transport, spaced by a client-side limiter.
type HTTPTransport struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPTransport creates a transport with the given timeout. A
// requestsPerSecond of zero or less disables request spacing.
func NewHTTPTransport(timeout time.Duration, requestsPerSecond float64) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{Timeout: timeout},
	}
	if requestsPerSecond > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return t
}

// Get issues the request and reads at most maxResponseBody bytes of the body.
func (t *HTTPTransport) Get(ctx context.Context, rawURL string, params url.Values, header http.Header) (*Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	reqURL := rawURL
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(reqURL, "?") {
			sep = "&"
		}
		reqURL += sep + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(req) //nolint:gosec // URL built from configured base + upstream-provided path
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
