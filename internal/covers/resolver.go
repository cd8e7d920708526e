package covers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/sydlexius/coverlens/internal/shs"
)

// DefaultConcurrency bounds ResolveMany when no limit is configured.
const DefaultConcurrency = 4

// Source is the upstream surface the resolver needs. *shs.Client satisfies it.
type Source interface {
	Covers(ctx context.Context, ref string) (shs.Outcome[[]shs.Item], error)
	SearchItems(ctx context.Context, q shs.SearchQuery) (shs.Outcome[[]shs.Item], error)
}

// Resolver fetches an artist's covers, falling back once to a performance
// search when the covers endpoint is unavailable or empty.
type Resolver struct {
	source      Source
	logger      *slog.Logger
	concurrency int
}

// NewResolver creates a Resolver. A concurrency below 1 selects DefaultConcurrency.
func NewResolver(source Source, logger *slog.Logger, concurrency int) *Resolver {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Resolver{
		source:      source,
		logger:      logger.With(slog.String("component", "covers")),
		concurrency: concurrency,
	}
}

// Resolve returns the artist's covers as normalized records.
//
// The covers endpoint is tried first. HTTP 500 and an empty list both lead to
// a single performance search by the artist's name; any result other than a
// non-empty success from that search is reported as empty. Every other
// failure of the covers fetch is returned as is, without a fallback. The
// error is non-nil only for an artist without a profile reference.
func (r *Resolver) Resolve(ctx context.Context, artist shs.EntityRecord) (shs.Outcome[[]CoverRecord], error) {
	logger := r.logger.With(slog.String("artist", artist.Name), slog.String("ref", artist.ProfileRef))

	primary, err := r.source.Covers(ctx, artist.ProfileRef)
	if err != nil {
		return shs.Outcome[[]CoverRecord]{}, fmt.Errorf("resolving covers: %w", err)
	}

	switch {
	case primary.Tag == shs.TagSuccess:
		records := normalize(primary.Payload, "", false)
		logger.Debug("covers resolved", slog.Int("records", len(records)))
		return shs.Success(records), nil
	case primary.Tag == shs.TagEmpty:
		logger.Debug("covers list empty, falling back to performances")
	case primary.Tag == shs.TagHTTPError && primary.StatusCode == http.StatusInternalServerError:
		logger.Debug("covers unavailable, falling back to performances",
			slog.Int("status", primary.StatusCode))
	default:
		logger.Warn("covers fetch failed",
			slog.String("outcome", primary.Tag.String()),
			slog.Int("status", primary.StatusCode))
		return shs.Into[[]CoverRecord](primary), nil
	}

	return r.fallback(ctx, artist, logger), nil
}

func (r *Resolver) fallback(ctx context.Context, artist shs.EntityRecord, logger *slog.Logger) shs.Outcome[[]CoverRecord] {
	q := shs.SearchQuery{
		Kind:      shs.EntityPerformance,
		Performer: artist.Name,
		PageSize:  shs.MaxPageSize,
	}
	out, err := r.source.SearchItems(ctx, q)
	if err != nil {
		logger.Warn("performance search rejected", slog.String("error", err.Error()))
		return shs.Empty[[]CoverRecord]()
	}
	if out.Tag != shs.TagSuccess {
		logger.Debug("performance fallback found nothing",
			slog.String("outcome", out.Tag.String()),
			slog.Int("status", out.StatusCode))
		return shs.Empty[[]CoverRecord]()
	}

	records := normalize(out.Payload, artist.Name, true)
	logger.Debug("covers resolved from performances", slog.Int("records", len(records)))
	return shs.Success(records)
}

// Resolution pairs an artist with its resolve outcome.
type Resolution struct {
	Artist  shs.EntityRecord
	Outcome shs.Outcome[[]CoverRecord]
}

// ResolveMany resolves each artist independently, at most r.concurrency at a
// time. Results are in input order and only returned once all have finished.
// The first contract error cancels the remaining resolutions.
func (r *Resolver) ResolveMany(ctx context.Context, artists []shs.EntityRecord) ([]Resolution, error) {
	results := make([]Resolution, len(artists))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, a := range artists {
		g.Go(func() error {
			out, err := r.Resolve(gctx, a)
			if err != nil {
				return err
			}
			results[i] = Resolution{Artist: a, Outcome: out}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Merge concatenates the records of all successful resolutions.
func Merge(resolutions []Resolution) []CoverRecord {
	var merged []CoverRecord
	for _, res := range resolutions {
		if res.Outcome.OK() {
			merged = append(merged, res.Outcome.Payload...)
		}
	}
	return merged
}
