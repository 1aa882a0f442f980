package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the display service. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	SlideAdvances   *prometheus.CounterVec
	MediaFailures   *prometheus.CounterVec
	Fetches         *prometheus.CounterVec
	Hearts          *prometheus.CounterVec
	Screens         prometheus.Gauge
	RequestDuration *prometheus.HistogramVec
}

// New registers the metrics on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SlideAdvances: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nory",
				Subsystem: "slideshow",
				Name:      "advances_total",
				Help:      "Slide changes by cause",
			},
			[]string{"cause"},
		),
		MediaFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nory",
				Subsystem: "slideshow",
				Name:      "media_failures_total",
				Help:      "Media items skipped because they failed to play",
			},
			[]string{"type"},
		),
		Fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nory",
				Subsystem: "api",
				Name:      "fetches_total",
				Help:      "Backend fetches by resource and outcome",
			},
			[]string{"resource", "outcome"},
		),
		Hearts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nory",
				Subsystem: "slideshow",
				Name:      "hearts_total",
				Help:      "Heart reactions by outcome",
			},
			[]string{"outcome"},
		),
		Screens: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "nory",
				Subsystem: "realtime",
				Name:      "connected_screens",
				Help:      "Websocket clients currently receiving frames",
			},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "nory",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// Advance records a slide change
func (m *Metrics) Advance(cause string) {
	if m == nil {
		return
	}
	m.SlideAdvances.WithLabelValues(cause).Inc()
}

// MediaFailure records a skipped media item
func (m *Metrics) MediaFailure(mediaType string) {
	if m == nil {
		return
	}
	m.MediaFailures.WithLabelValues(mediaType).Inc()
}

// Fetch records the outcome of a backend fetch
func (m *Metrics) Fetch(resource, outcome string) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(resource, outcome).Inc()
}

// Heart records whether a heart was accepted or deduplicated
func (m *Metrics) Heart(accepted bool) {
	if m == nil {
		return
	}
	outcome := "duplicate"
	if accepted {
		outcome = "accepted"
	}
	m.Hearts.WithLabelValues(outcome).Inc()
}

// ScreenConnected adjusts the connected screen gauge
func (m *Metrics) ScreenConnected(delta float64) {
	if m == nil {
		return
	}
	m.Screens.Add(delta)
}

// ObserveRequest records an HTTP request
func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
