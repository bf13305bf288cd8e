package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/couchcryptid/pna-map-generator/internal/mapview"
	"github.com/couchcryptid/pna-map-generator/internal/observability"
	"github.com/paulmach/orb/geojson"
)

// ReportPublisher ships a coverage report downstream.
type ReportPublisher interface {
	Publish(ctx context.Context, report domain.CoverageReport) error
}

// Input is the data a map is generated from.
type Input struct {
	SessionID  string
	Pharmacies []domain.NormalizedPharmacy
	Boundary   *geojson.FeatureCollection
}

// Generator builds coverage and isochrone maps and reports on each one.
type Generator struct {
	fetcher   *Fetcher
	palette   []string
	publisher ReportPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewGenerator creates a Generator. A nil provider disables isochrone maps and
// a nil publisher disables reporting.
func NewGenerator(provider domain.IsochroneProvider, palette []string, publisher ReportPublisher, logger *slog.Logger, metrics *observability.Metrics) *Generator {
	g := &Generator{
		palette:   palette,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
	if provider != nil {
		g.fetcher = NewFetcher(provider, logger, metrics)
		metrics.IsochroneEnabled.Set(1)
	} else {
		metrics.IsochroneEnabled.Set(0)
	}
	return g
}

// IsochronesEnabled reports whether an isochrone provider is configured.
func (g *Generator) IsochronesEnabled() bool {
	return g.fetcher != nil
}

// CoverageMap renders pharmacy markers and the boundary.
func (g *Generator) CoverageMap(ctx context.Context, in Input) (*mapview.Map, domain.CoverageReport, error) {
	start := time.Now()

	m, colors, err := g.baseMap(in)
	if err != nil {
		g.fail(domain.KindCoverage, err)
		return nil, domain.CoverageReport{}, err
	}

	report := g.newReport(in, domain.KindCoverage, colors)
	report.Open = len(in.Pharmacies)
	g.finish(ctx, report, start)
	return m, report, nil
}

// IsochroneMap renders the coverage map with reachability polygons for the
// pharmacies open in the scenario.
func (g *Generator) IsochroneMap(ctx context.Context, in Input, sc domain.Scenario) (*mapview.Map, domain.CoverageReport, error) {
	start := time.Now()

	if err := sc.Validate(); err != nil {
		return nil, domain.CoverageReport{}, err
	}
	if g.fetcher == nil {
		err := &domain.ExternalServiceError{Service: "isochrone", Err: domain.ErrIsochronesDisabled}
		g.fail(domain.KindIsochrone, err)
		return nil, domain.CoverageReport{}, err
	}

	m, colors, err := g.baseMap(in)
	if err != nil {
		g.fail(domain.KindIsochrone, err)
		return nil, domain.CoverageReport{}, err
	}

	modes, minutes := []domain.TravelMode{sc.Mode}, []int{sc.Minutes}
	result, stats, err := g.fetcher.Fetch(ctx, in.Pharmacies, sc.Day, modes, minutes)
	if err != nil {
		g.fail(domain.KindIsochrone, err)
		return nil, domain.CoverageReport{}, err
	}
	mapview.AddIsochroneLayers(m, modes, minutes, result, in.Boundary)

	report := g.newReport(in, domain.KindIsochrone, colors)
	report.Day = sc.Day
	report.Mode = string(sc.Mode)
	report.Minutes = sc.Minutes
	report.Open = countOpen(in.Pharmacies, sc.Day)
	report.Polygons = m.PolygonCount()
	report.FailedRequests = stats.Failed
	g.finish(ctx, report, start)

	if stats.Failed > 0 {
		g.logger.Warn("isochrone map rendered with missing contours",
			"session_id", in.SessionID,
			"failed", stats.Failed,
			"attempted", stats.Attempted,
		)
	}
	return m, report, nil
}

func (g *Generator) baseMap(in Input) (*mapview.Map, domain.RegionColorMap, error) {
	colors := domain.AssignColors(domain.DistinctRegions(in.Pharmacies), g.palette)
	m, err := mapview.BuildCoverageMap(in.Pharmacies, in.Boundary, colors)
	if err != nil {
		return nil, nil, err
	}
	return m, colors, nil
}

func (g *Generator) newReport(in Input, kind string, colors domain.RegionColorMap) domain.CoverageReport {
	return domain.CoverageReport{
		SessionID:   in.SessionID,
		Kind:        kind,
		Pharmacies:  len(in.Pharmacies),
		Regions:     len(colors),
		GeneratedAt: domain.Now(),
	}
}

func (g *Generator) finish(ctx context.Context, report domain.CoverageReport, start time.Time) {
	g.metrics.MapsRendered.WithLabelValues(report.Kind).Inc()
	g.metrics.GenerateDuration.WithLabelValues(report.Kind).Observe(time.Since(start).Seconds())
	g.logger.Info("map generated",
		"session_id", report.SessionID,
		"kind", report.Kind,
		"pharmacies", report.Pharmacies,
		"polygons", report.Polygons,
	)

	if g.publisher == nil {
		return
	}
	if err := g.publisher.Publish(ctx, report); err != nil {
		g.metrics.ReportsPublished.WithLabelValues("error").Inc()
		g.logger.Warn("publish coverage report failed", "session_id", report.SessionID, "error", err)
		return
	}
	g.metrics.ReportsPublished.WithLabelValues("success").Inc()
}

func (g *Generator) fail(kind string, err error) {
	reason := FailureReason(err)
	g.metrics.RenderFailures.WithLabelValues(reason).Inc()
	g.logger.Error("map generation failed", "kind", kind, "reason", reason, "error", err)
}

// FailureReason classifies err for metrics and user messages.
func FailureReason(err error) string {
	var (
		schemaErr *domain.SchemaError
		emptyErr  *domain.EmptyInputError
		extErr    *domain.ExternalServiceError
		geomErr   *domain.MalformedGeometryError
	)
	switch {
	case errors.As(err, &schemaErr):
		return "schema"
	case errors.As(err, &emptyErr):
		return "empty"
	case errors.As(err, &extErr):
		return "external"
	case errors.As(err, &geomErr):
		return "geometry"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

func countOpen(pharmacies []domain.NormalizedPharmacy, day domain.DayType) int {
	n := 0
	for _, p := range pharmacies {
		if p.StatusFor(day) == domain.StatusOpened {
			n++
		}
	}
	return n
}
