// Package observability exposes the pipeline's Prometheus metrics.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/service"
)

const namespace = "pdm"

// Metrics implements service.Metrics on top of a Prometheus registry.
type Metrics struct {
	PredictionsTotal        *prometheus.CounterVec
	PredictionErrorsTotal   *prometheus.CounterVec
	AttributionDegraded     prometheus.Counter
	SideEffectFailuresTotal *prometheus.CounterVec
	PipelineDuration        prometheus.Histogram
	HistoryExportsTotal     prometheus.Counter
}

var _ service.Metrics = (*Metrics)(nil)

// New registers every pipeline metric with reg. It panics on duplicate
// registration, so call it once per registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PredictionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Stored predictions by risk level.",
		}, []string{"risk"}),
		PredictionErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_errors_total",
			Help:      "Failed prediction requests by pipeline stage.",
		}, []string{"stage"}),
		AttributionDegraded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attribution_degraded_total",
			Help:      "Predictions returned without feature attribution.",
		}),
		SideEffectFailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_failures_total",
			Help:      "Failed best-effort deliveries by channel.",
		}, []string{"channel"}),
		PipelineDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Wall time of successful prediction requests.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		HistoryExportsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_exports_total",
			Help:      "CSV history exports served.",
		}),
	}
}

// NewRegistry returns a registry carrying the Go runtime and process
// collectors alongside the pipeline metrics.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, New(reg)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) ObservePrediction(risk model.RiskLevel, elapsed time.Duration) {
	m.PredictionsTotal.WithLabelValues(string(risk)).Inc()
	m.PipelineDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) IncError(stage string) {
	m.PredictionErrorsTotal.WithLabelValues(stage).Inc()
}

func (m *Metrics) IncAttributionDegraded() {
	m.AttributionDegraded.Inc()
}

func (m *Metrics) IncSideEffectFailure(channel string) {
	m.SideEffectFailuresTotal.WithLabelValues(channel).Inc()
}

func (m *Metrics) IncHistoryExport() {
	m.HistoryExportsTotal.Inc()
}
