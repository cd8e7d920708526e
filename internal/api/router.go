package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sydlexius/coverlens/internal/analysis"
	"github.com/sydlexius/coverlens/internal/api/middleware"
	"github.com/sydlexius/coverlens/internal/shs"
)

// Searcher runs entity searches. *shs.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, q shs.SearchQuery) (shs.Outcome[shs.SearchResult], error)
}

// Analyzer resolves and aggregates covers. *analysis.Service satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, t analysis.Target) (*analysis.Report, error)
	AnalyzeMany(ctx context.Context, targets []analysis.Target) (*analysis.Combined, error)
}

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	Searcher Searcher
	Analyzer Analyzer
	Logger   *slog.Logger
	BasePath string
	// RateLimitPerMinute caps API requests per client IP; 0 disables it.
	RateLimitPerMinute int
}

// Router sets up all HTTP routes for the application.
type Router struct {
	searcher  Searcher
	analyzer  Analyzer
	logger    *slog.Logger
	basePath  string
	rateLimit int
}

// NewRouter creates a new Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		searcher:  deps.Searcher,
		analyzer:  deps.Analyzer,
		logger:    deps.Logger.With(slog.String("component", "api")),
		basePath:  deps.BasePath,
		rateLimit: deps.RateLimitPerMinute,
	}
}

// Handler returns the fully configured HTTP handler with middleware applied.
// ctx bounds background work owned by the middleware.
func (r *Router) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	bp := r.basePath

	limit := func(fn http.HandlerFunc) http.Handler { return fn }
	if r.rateLimit > 0 {
		rl := middleware.NewClientRateLimiter(ctx, r.rateLimit)
		limit = func(fn http.HandlerFunc) http.Handler { return rl.Middleware(fn) }
	}

	mux.HandleFunc("GET "+bp+"/api/v1/health", r.handleHealth)
	mux.Handle("GET "+bp+"/api/v1/search", limit(r.handleSearch))
	mux.Handle("GET "+bp+"/api/v1/covers", limit(r.handleCovers))
	mux.Handle("GET "+bp+"/api/v1/analyze", limit(r.handleAnalyze))
	mux.Handle("GET "+bp+"/api/v1/charts/{view}", limit(r.handleChart))

	return middleware.Logging(r.logger)(middleware.SecurityHeaders(mux))
}
