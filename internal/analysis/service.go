package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sydlexius/coverlens/internal/aggregate"
	"github.com/sydlexius/coverlens/internal/covers"
	"github.com/sydlexius/coverlens/internal/shs"
)

// EntityLookup fetches an entity by profile reference. *shs.Client satisfies it.
type EntityLookup interface {
	Entity(ctx context.Context, ref string) (shs.Outcome[shs.EntityRecord], error)
}

// CoverResolver resolves covers for an artist. *covers.Resolver satisfies it.
type CoverResolver interface {
	Resolve(ctx context.Context, artist shs.EntityRecord) (shs.Outcome[[]covers.CoverRecord], error)
	ResolveMany(ctx context.Context, artists []shs.EntityRecord) ([]covers.Resolution, error)
}

// Target identifies the artist to analyze. Name is looked up from the
// profile reference when empty.
type Target struct {
	Ref  string
	Name string
}

// Report is the result of analyzing one artist. Summary is only set when
// Outcome is a success.
type Report struct {
	Artist  shs.EntityRecord
	Outcome shs.Outcome[[]covers.CoverRecord]
	Summary *aggregate.Summary
}

// Notice returns the user-facing message for a non-success report.
func (r *Report) Notice() string {
	subject := "covers of " + r.Artist.Name
	if r.Artist.Name == "" {
		subject = "covers of " + r.Artist.ProfileRef
	}
	return r.Outcome.Notice(subject)
}

// Service runs the lookup, resolve and aggregate steps for a user action.
type Service struct {
	lookup   EntityLookup
	resolver CoverResolver
	logger   *slog.Logger
}

// NewService creates an analysis Service.
func NewService(lookup EntityLookup, resolver CoverResolver, logger *slog.Logger) *Service {
	return &Service{
		lookup:   lookup,
		resolver: resolver,
		logger:   logger.With(slog.String("component", "analysis")),
	}
}

// Analyze resolves and aggregates the covers of one artist. An unsuccessful
// name lookup ends the analysis with that lookup's outcome.
func (s *Service) Analyze(ctx context.Context, t Target) (*Report, error) {
	artist, out, err := s.artist(ctx, t)
	if err != nil {
		return nil, err
	}
	report := &Report{Artist: artist}
	if !out.OK() {
		report.Outcome = shs.Into[[]covers.CoverRecord](out)
		return report, nil
	}

	report.Outcome, err = s.resolver.Resolve(ctx, artist)
	if err != nil {
		return nil, err
	}
	if report.Outcome.OK() {
		sum := aggregate.Aggregate(report.Outcome.Payload)
		report.Summary = &sum
	}

	s.logger.Info("artist analyzed",
		slog.String("artist", artist.Name),
		slog.String("outcome", report.Outcome.Tag.String()),
		slog.Int("records", len(report.Outcome.Payload)))
	return report, nil
}

// Combined is the merged analysis of several artists.
type Combined struct {
	Reports []*Report
	Records []covers.CoverRecord
	Summary aggregate.Summary
}

// AnalyzeMany resolves every target independently and aggregates the
// records of those that succeeded. Targets whose name lookup fails are
// reported without being resolved.
func (s *Service) AnalyzeMany(ctx context.Context, targets []Target) (*Combined, error) {
	combined := &Combined{Reports: make([]*Report, len(targets))}

	var artists []shs.EntityRecord
	var slots []int
	for i, t := range targets {
		artist, out, err := s.artist(ctx, t)
		if err != nil {
			return nil, err
		}
		combined.Reports[i] = &Report{Artist: artist}
		if !out.OK() {
			combined.Reports[i].Outcome = shs.Into[[]covers.CoverRecord](out)
			continue
		}
		artists = append(artists, artist)
		slots = append(slots, i)
	}

	resolutions, err := s.resolver.ResolveMany(ctx, artists)
	if err != nil {
		return nil, err
	}
	for j, res := range resolutions {
		report := combined.Reports[slots[j]]
		report.Outcome = res.Outcome
		if res.Outcome.OK() {
			sum := aggregate.Aggregate(res.Outcome.Payload)
			report.Summary = &sum
		}
	}

	combined.Records = covers.Merge(resolutions)
	combined.Summary = aggregate.Aggregate(combined.Records)
	return combined, nil
}

// artist returns the entity record for t, looking up the name if needed.
func (s *Service) artist(ctx context.Context, t Target) (shs.EntityRecord, shs.Outcome[shs.EntityRecord], error) {
	if t.Ref == "" {
		return shs.EntityRecord{}, shs.Outcome[shs.EntityRecord]{}, &shs.ErrInvalidReference{Ref: t.Ref, Reason: "empty"}
	}
	if t.Name != "" {
		rec := shs.EntityRecord{Name: t.Name, ProfileRef: t.Ref}
		return rec, shs.Success(rec), nil
	}

	out, err := s.lookup.Entity(ctx, t.Ref)
	if err != nil {
		return shs.EntityRecord{}, out, fmt.Errorf("looking up artist: %w", err)
	}
	if !out.OK() {
		return shs.EntityRecord{ProfileRef: t.Ref}, out, nil
	}
	rec := out.Payload
	rec.ProfileRef = t.Ref
	return rec, out, nil
}
