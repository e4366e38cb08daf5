package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collaborator label values.
const (
	CollaboratorGeocode = "geocode"
	CollaboratorWeather = "weather"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the widget.
type Metrics struct {
	QueryChanges       prometheus.Counter
	DebounceCancelled  prometheus.Counter
	CoordinatorRunning prometheus.Gauge

	// Collaborator metrics.
	GeocodeRequests *prometheus.CounterVec   // labels: outcome={success,empty,error}
	WeatherRequests *prometheus.CounterVec   // labels: outcome={success,no_data,error}
	StaleResponses  *prometheus.CounterVec   // labels: collaborator={geocode,weather}
	APIDuration     *prometheus.HistogramVec // labels: collaborator={geocode,weather}
	BreakerOpen     *prometheus.GaugeVec     // labels: collaborator={geocode,weather}

	// Reading feed metrics.
	ReadingsPublished prometheus.Counter
	PublishErrors     prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		QueryChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathernow",
			Name:      "query_changes_total",
			Help:      "Total search text changes received.",
		}),
		DebounceCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathernow",
			Name:      "debounce_cancelled_total",
			Help:      "Scheduled geocoding fetches cancelled by a newer query change.",
		}),
		CoordinatorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weathernow",
			Name:      "coordinator_running",
			Help:      "1 when the coordinator event loop is active, 0 otherwise.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weathernow",
			Name:      "geocode_requests_total",
			Help:      "Geocoding requests by outcome.",
		}, []string{"outcome"}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weathernow",
			Name:      "weather_requests_total",
			Help:      "Current weather requests by outcome.",
		}, []string{"outcome"}),
		StaleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weathernow",
			Name:      "stale_responses_total",
			Help:      "Completed responses discarded because a newer request superseded them.",
		}, []string{"collaborator"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weathernow",
			Name:      "api_duration_seconds",
			Help:      "Open-Meteo request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"collaborator"}),
		BreakerOpen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "weathernow",
			Name:      "breaker_open",
			Help:      "1 when the collaborator circuit breaker is open, 0 otherwise.",
		}, []string{"collaborator"}),
		ReadingsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathernow",
			Name:      "readings_published_total",
			Help:      "Weather readings written to the reading feed.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathernow",
			Name:      "publish_errors_total",
			Help:      "Failed reading feed writes.",
		}),
	}

	prometheus.MustRegister(
		m.QueryChanges,
		m.DebounceCancelled,
		m.CoordinatorRunning,
		m.GeocodeRequests,
		m.WeatherRequests,
		m.StaleResponses,
		m.APIDuration,
		m.BreakerOpen,
		m.ReadingsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		QueryChanges:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weathernow", Name: "query_changes_total"}),
		DebounceCancelled:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weathernow", Name: "debounce_cancelled_total"}),
		CoordinatorRunning: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "weathernow", Name: "coordinator_running"}),
		GeocodeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weathernow", Name: "geocode_requests_total"}, []string{"outcome"}),
		WeatherRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weathernow", Name: "weather_requests_total"}, []string{"outcome"}),
		StaleResponses:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weathernow", Name: "stale_responses_total"}, []string{"collaborator"}),
		APIDuration:        prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "weathernow", Name: "api_duration_seconds"}, []string{"collaborator"}),
		BreakerOpen:        prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "weathernow", Name: "breaker_open"}, []string{"collaborator"}),
		ReadingsPublished:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weathernow", Name: "readings_published_total"}),
		PublishErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weathernow", Name: "publish_errors_total"}),
	}
}
