package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "watersafe"

// Metrics holds the Prometheus collectors for the resolution pipeline and
// its HTTP surface.
type Metrics struct {
	StageRequests *prometheus.CounterVec   // labels: stage={geocode,spatial,classify}, outcome={success,error}
	StageDuration *prometheus.HistogramVec // labels: stage
	StageCache    *prometheus.CounterVec   // labels: stage, result={hit,miss}

	Verdicts            *prometheus.CounterVec // labels: tier
	ResolutionsInFlight prometheus.Gauge
	AmbiguousMatches    prometheus.Counter

	VerdictsPublished *prometheus.CounterVec // labels: outcome={success,error}
	HTTPRequests      *prometheus.CounterVec // labels: route, code
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates metrics registered with reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		StageRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_requests_total",
			Help:      "Pipeline stage executions by stage and outcome. Cache hits are not counted.",
		}, []string{"stage", "outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of uncached pipeline stage executions.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),
		StageCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_cache_total",
			Help:      "Stage cache lookups by stage and result.",
		}, []string{"stage", "result"}),
		Verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Completed resolutions by safety tier.",
		}, []string{"tier"}),
		ResolutionsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resolutions_in_flight",
			Help:      "Resolutions currently running.",
		}),
		AmbiguousMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ambiguous_utility_matches_total",
			Help:      "Spatial matches where more than one service area intersected the point.",
		}),
		VerdictsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_published_total",
			Help:      "Verdict events written to Kafka by outcome.",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests by route and status code.",
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.StageRequests,
		m.StageDuration,
		m.StageCache,
		m.Verdicts,
		m.ResolutionsInFlight,
		m.AmbiguousMatches,
		m.VerdictsPublished,
		m.HTTPRequests,
	}
}
