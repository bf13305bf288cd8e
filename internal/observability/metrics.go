package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for map generation.
type Metrics struct {
	PharmaciesNormalized prometheus.Counter
	PostcodesUnmatched   prometheus.Counter
	SessionsActive       prometheus.Gauge

	// Map generation metrics.
	MapsRendered     *prometheus.CounterVec   // labels: kind={coverage,isochrone}
	RenderFailures   *prometheus.CounterVec   // labels: reason={schema,empty,external,geometry,canceled,internal}
	GenerateDuration *prometheus.HistogramVec // labels: kind

	// Isochrone metrics.
	IsochroneRequests    *prometheus.CounterVec   // labels: profile, outcome={success,error,skipped}
	IsochroneCache       *prometheus.CounterVec   // labels: result={hit,miss}
	IsochroneAPIDuration *prometheus.HistogramVec // labels: profile
	IsochroneEnabled     prometheus.Gauge

	// Report publishing metrics.
	ReportsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PharmaciesNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pna_map",
			Name:      "pharmacies_normalized_total",
			Help:      "Pharmacy records joined to a postcode and normalized.",
		}),
		PostcodesUnmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pna_map",
			Name:      "postcodes_unmatched_total",
			Help:      "Pharmacy records dropped because their postcode was not found.",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pna_map",
			Name:      "sessions_active",
			Help:      "Sessions currently held in memory.",
		}),
		MapsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pna_map",
			Name:      "maps_rendered_total",
			Help:      "Maps generated by kind.",
		}, []string{"kind"}),
		RenderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pna_map",
			Name:      "render_failures_total",
			Help:      "Failed map-generation actions by error class.",
		}, []string{"reason"}),
		GenerateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pna_map",
			Name:      "generate_duration_seconds",
			Help:      "Duration of a complete map generation.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"kind"}),
		IsochroneRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pna_map",
			Name:      "isochrone_requests_total",
			Help:      "Isochrone lookups by profile and outcome.",
		}, []string{"profile", "outcome"}),
		IsochroneCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pna_map",
			Name:      "isochrone_cache_total",
			Help:      "Isochrone cache lookups by result.",
		}, []string{"result"}),
		IsochroneAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pna_map",
			Name:      "isochrone_api_duration_seconds",
			Help:      "Mapbox Isochrone API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"profile"}),
		IsochroneEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pna_map",
			Name:      "isochrone_enabled",
			Help:      "1 when an isochrone provider is configured, 0 otherwise.",
		}),
		ReportsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pna_map",
			Name:      "reports_published_total",
			Help:      "Coverage reports published to Kafka by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.PharmaciesNormalized,
		m.PostcodesUnmatched,
		m.SessionsActive,
		m.MapsRendered,
		m.RenderFailures,
		m.GenerateDuration,
		m.IsochroneRequests,
		m.IsochroneCache,
		m.IsochroneAPIDuration,
		m.IsochroneEnabled,
		m.ReportsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PharmaciesNormalized: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "pna_map", Name: "pharmacies_normalized_total"}),
		PostcodesUnmatched:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "pna_map", Name: "postcodes_unmatched_total"}),
		SessionsActive:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "pna_map", Name: "sessions_active"}),
		MapsRendered:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "pna_map", Name: "maps_rendered_total"}, []string{"kind"}),
		RenderFailures:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "pna_map", Name: "render_failures_total"}, []string{"reason"}),
		GenerateDuration:     prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "pna_map", Name: "generate_duration_seconds"}, []string{"kind"}),
		IsochroneRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "pna_map", Name: "isochrone_requests_total"}, []string{"profile", "outcome"}),
		IsochroneCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "pna_map", Name: "isochrone_cache_total"}, []string{"result"}),
		IsochroneAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "pna_map", Name: "isochrone_api_duration_seconds"}, []string{"profile"}),
		IsochroneEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "pna_map", Name: "isochrone_enabled"}),
		ReportsPublished:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "pna_map", Name: "reports_published_total"}, []string{"outcome"}),
	}
}
