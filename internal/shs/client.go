package shs

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sydlexius/coverlens/internal/version"
)

// DefaultBaseURL is the public SecondHandSongs API.
const DefaultBaseURL = "https://api.secondhandsongs.com"

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL   string
	APIKey    string
	UserAgent string
}

// Client issues SecondHandSongs requests and classifies every response into
// an Outcome. It holds no per-request state and is safe for concurrent use.
type Client struct {
	transport Transport
	logger    *slog.Logger
	baseURL   string
	apiKey    string
	userAgent string
}

// New creates a Client over the given transport.
func New(transport Transport, logger *slog.Logger, opts Options) *Client {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = userAgent()
	}
	return &Client{
		transport: transport,
		logger:    logger.With(slog.String("component", "shs")),
		baseURL:   strings.TrimRight(base, "/"),
		apiKey:    opts.APIKey,
		userAgent: ua,
	}
}

// Search runs a search and maps the items to entity records. The error is
// non-nil only for an invalid query, in which case no request is made.
func (c *Client) Search(ctx context.Context, q SearchQuery) (Outcome[SearchResult], error) {
	items, err := c.SearchItems(ctx, q)
	if err != nil {
		return Outcome[SearchResult]{}, err
	}
	return Map(items, toResult), nil
}

// SearchItems runs a search and returns the raw items, keeping fields such
// as performer and date that entity records do not carry.
func (c *Client) SearchItems(ctx context.Context, q SearchQuery) (Outcome[[]Item], error) {
	if err := q.Validate(); err != nil {
		return Outcome[[]Item]{}, err
	}
	reqURL := c.baseURL + "/search/" + string(q.Kind)
	return c.list(ctx, reqURL, q.Params()), nil
}

// Covers fetches the covers list of the entity behind ref.
func (c *Client) Covers(ctx context.Context, ref string) (Outcome[[]Item], error) {
	reqURL, err := c.refURL(ref, "covers")
	if err != nil {
		return Outcome[[]Item]{}, err
	}
	return c.list(ctx, reqURL, nil), nil
}

// Entity fetches the entity behind ref.
func (c *Client) Entity(ctx context.Context, ref string) (Outcome[EntityRecord], error) {
	reqURL, err := c.refURL(ref, "")
	if err != nil {
		return Outcome[EntityRecord]{}, err
	}

	resp, failed := c.get(ctx, reqURL, nil)
	if resp == nil {
		return Into[EntityRecord](failed), nil
	}
	out := classifyItem(resp)
	c.logOutcome(reqURL, out.Tag, out.StatusCode)
	return Map(out, func(it Item) EntityRecord {
		rec := toRecord(it)
		if rec.ProfileRef == "" {
			rec.ProfileRef = ref
		}
		return rec
	}), nil
}

func (c *Client) list(ctx context.Context, reqURL string, params url.Values) Outcome[[]Item] {
	resp, failed := c.get(ctx, reqURL, params)
	if resp == nil {
		return failed
	}
	out := classifyList(resp)
	c.logOutcome(reqURL, out.Tag, out.StatusCode)
	return out
}

// get performs the round trip. When no response was received it returns a
// nil response and the status-0 outcome to hand back.
func (c *Client) get(ctx context.Context, reqURL string, params url.Values) (*Response, Outcome[[]Item]) {
	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		header.Set("X-API-Key", c.apiKey)
	}

	c.logger.Debug("requesting", slog.String("url", reqURL), slog.String("query", params.Encode()))

	resp, err := c.transport.Get(ctx, reqURL, params, header)
	if err != nil {
		c.logger.Warn("request failed", slog.String("url", reqURL), slog.String("error", err.Error()))
		return nil, HTTPError[[]Item](0, nil, err)
	}
	return resp, Outcome[[]Item]{}
}

func (c *Client) logOutcome(reqURL string, tag Tag, status int) {
	c.logger.Debug("response classified",
		slog.String("url", reqURL),
		slog.String("outcome", tag.String()),
		slog.Int("status", status))
}

// refURL maps a profile reference onto the API base. References are URIs
// such as https://secondhandsongs.com/artist/11578; only the path is used so
// that site URIs resolve against the configured API host.
func (c *Client) refURL(ref, suffix string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", &ErrInvalidReference{Ref: ref, Reason: "empty"}
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", &ErrInvalidReference{Ref: ref, Reason: err.Error()}
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "", &ErrInvalidReference{Ref: ref, Reason: "no entity path"}
	}

	out := c.baseURL + "/" + path
	if suffix != "" {
		out += "/" + suffix
	}
	return out, nil
}

func userAgent() string {
	return "Coverlens/" + version.Version + " (https://github.com/sydlexius/coverlens)"
}
