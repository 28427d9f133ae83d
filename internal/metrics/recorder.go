// Package metrics exposes operational counters for generation, mutations
// and remote pushes in the Prometheus text format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "destinos"

// Generation outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Recorder owns a private registry so tests and multiple servers in one
// process do not collide on the default registerer. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry    *prometheus.Registry
	generations *prometheus.CounterVec
	genLatency  prometheus.Histogram
	mutations   *prometheus.CounterVec
	pushes      *prometheus.CounterVec
	records     prometheus.Gauge
	degraded    prometheus.Gauge
}

// NewRecorder creates a Recorder with Go runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Destination generations by outcome.",
		}, []string{"outcome"}),
		genLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Wall time of a destination generation, retries included.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Completed mutations by operation and final sync state.",
		}, []string{"op", "state"}),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_push_total",
			Help:      "Remote mirror pushes by outcome.",
		}, []string{"outcome"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Destinations in the local store.",
		}),
		degraded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "local_only",
			Help:      "1 while the remote mirror is stale.",
		}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.generations,
		r.genLatency,
		r.mutations,
		r.pushes,
		r.records,
		r.degraded,
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Generation records one generation attempt for a destination.
func (r *Recorder) Generation(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.generations.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSkipped {
		r.genLatency.Observe(d.Seconds())
	}
}

// Mutation records a finished mutation and its final sync state.
func (r *Recorder) Mutation(op, state string) {
	if r == nil {
		return
	}
	r.mutations.WithLabelValues(op, state).Inc()
}

// Push records a remote push outcome.
func (r *Recorder) Push(ok bool) {
	if r == nil {
		return
	}
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
	}
	r.pushes.WithLabelValues(outcome).Inc()
}

// SetRecords sets the record count gauge.
func (r *Recorder) SetRecords(n int) {
	if r == nil {
		return
	}
	r.records.Set(float64(n))
}

// SetLocalOnly sets the degraded sync gauge.
func (r *Recorder) SetLocalOnly(v bool) {
	if r == nil {
		return
	}
	if v {
		r.degraded.Set(1)
	} else {
		r.degraded.Set(0)
	}
}

// Handler serves the registry on /metrics.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
