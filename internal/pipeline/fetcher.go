package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/couchcryptid/pna-map-generator/internal/observability"
	"github.com/paulmach/orb/geojson"
)

// FetchStats counts what a Fetch did.
type FetchStats struct {
	Attempted int // provider calls made
	Failed    int // provider calls that returned an error
	Skipped   int // placeholders for closed pharmacies
}

// Fetcher collects isochrones for every open pharmacy, one provider call at a
// time.
type Fetcher struct {
	provider domain.IsochroneProvider
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewFetcher creates a Fetcher backed by provider.
func NewFetcher(provider domain.IsochroneProvider, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	return &Fetcher{provider: provider, logger: logger, metrics: metrics}
}

// Fetch requests one contour per pharmacy, mode and duration. Pharmacies that
// are closed on day get an empty placeholder without a provider call. A
// failed call is logged and replaced by a placeholder so the rest of the batch
// still renders; if every call fails the result is returned together with a
// *domain.ExternalServiceError. Cancelling ctx aborts the batch.
func (f *Fetcher) Fetch(ctx context.Context, pharmacies []domain.NormalizedPharmacy, day domain.DayType, modes []domain.TravelMode, minutes []int) (domain.IsochroneResult, FetchStats, error) {
	var stats FetchStats
	var lastErr error
	result := make(domain.IsochroneResult, 0, len(pharmacies))

	for _, p := range pharmacies {
		open := p.StatusFor(day) == domain.StatusOpened
		contours := make(map[string]*geojson.FeatureCollection, len(modes)*len(minutes))

		for _, mode := range modes {
			for _, mins := range minutes {
				key := domain.ContourKey(mode, mins)
				if !open {
					contours[key] = domain.EmptyCollection()
					stats.Skipped++
					f.metrics.IsochroneRequests.WithLabelValues(string(mode), "skipped").Inc()
					continue
				}

				if err := ctx.Err(); err != nil {
					return nil, stats, err
				}

				stats.Attempted++
				fc, err := f.provider.Isochrone(ctx, domain.IsochroneRequest{
					Lon:     p.Longitude,
					Lat:     p.Latitude,
					Mode:    mode,
					Minutes: mins,
				})
				if err != nil {
					if ctx.Err() != nil {
						return nil, stats, ctx.Err()
					}
					stats.Failed++
					lastErr = err
					f.metrics.IsochroneRequests.WithLabelValues(string(mode), "error").Inc()
					f.logger.Warn("isochrone request failed, using empty placeholder",
						"code", p.Code,
						"key", key,
						"error", err,
					)
					contours[key] = domain.EmptyCollection()
					continue
				}
				if fc == nil {
					fc = domain.EmptyCollection()
				}
				f.metrics.IsochroneRequests.WithLabelValues(string(mode), "success").Inc()
				contours[key] = fc
			}
		}
		result = append(result, domain.PharmacyIsochrones{Pharmacy: p, Contours: contours})
	}

	if stats.Attempted > 0 && stats.Failed == stats.Attempted {
		var extErr *domain.ExternalServiceError
		if errors.As(lastErr, &extErr) {
			return result, stats, extErr
		}
		return result, stats, &domain.ExternalServiceError{Service: "isochrone", Err: lastErr}
	}
	return result, stats, nil
}
