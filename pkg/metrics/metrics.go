package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	namespace = "biolinks"

	OutcomeSuccess      = "success"
	OutcomeError        = "error"
	OutcomeUnauthorized = "unauthorized"
)

// Recorder counts layer fetch outcomes. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry
	fetches  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layer_fetch_total",
			Help:      "Layer fetches by layer and outcome.",
		}, []string{"layer", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layer_fetch_duration_seconds",
			Help:      "Time spent fetching and transforming layer data.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"layer"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_requests_total",
			Help:      "Data endpoint requests by status code.",
		}, []string{"code"}),
	}

	registry.MustRegister(
		r.fetches,
		r.duration,
		r.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

func (r *Recorder) ObserveLayerFetch(layerID string, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(layerID, outcome).Inc()
	r.duration.WithLabelValues(layerID).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveRequest(code string) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(code).Inc()
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// LayerFetches returns the counter for one layer and outcome.
func (r *Recorder) LayerFetches(layerID string, outcome string) prometheus.Counter {
	return r.fetches.WithLabelValues(layerID, outcome)
}

func (r *Recorder) Requests(code string) prometheus.Counter {
	return r.requests.WithLabelValues(code)
}
