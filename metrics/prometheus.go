package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus exports pipeline activity as Prometheus metrics.
type Prometheus struct {
	CallsTotal    *prometheus.CounterVec
	TokensTotal   *prometheus.CounterVec
	CallDuration  *prometheus.HistogramVec
	RunsTotal     *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	RoutesTotal   *prometheus.CounterVec
	DiffRatio     prometheus.Histogram
	PersistErrors prometheus.Counter
}

// NewPrometheus creates and registers the metrics with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		CallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maildraft_llm_calls_total",
				Help: "Total number of language-model calls",
			},
			[]string{"stage", "model", "status"},
		),
		TokensTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maildraft_llm_tokens_total",
				Help: "Total number of tokens exchanged with the language model",
			},
			[]string{"stage", "direction"},
		),
		CallDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "maildraft_llm_call_duration_seconds",
				Help:    "Duration of language-model calls in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"stage"},
		),
		RunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maildraft_runs_total",
				Help: "Total number of pipeline runs",
			},
			[]string{"context_mode", "status"},
		),
		RunDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "maildraft_run_duration_seconds",
				Help:    "Duration of pipeline runs in seconds",
				Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		RoutesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maildraft_regenerations_total",
				Help: "Total number of regenerations by workflow type",
			},
			[]string{"workflow_type"},
		),
		DiffRatio: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "maildraft_regeneration_diff_ratio",
				Help:    "Diff ratio between original and edited drafts",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),
		PersistErrors: f.NewCounter(
			prometheus.CounterOpts{
				Name: "maildraft_history_persist_errors_total",
				Help: "Total number of failed history writes",
			},
		),
	}
}

// ObserveCall records a language-model call.
func (p *Prometheus) ObserveCall(c Call) {
	status := "success"
	if c.Failed {
		status = "error"
	}
	p.CallsTotal.WithLabelValues(c.Stage, c.Model, status).Inc()
	p.TokensTotal.WithLabelValues(c.Stage, "input").Add(float64(c.InputTokens))
	p.TokensTotal.WithLabelValues(c.Stage, "output").Add(float64(c.OutputTokens))
	p.CallDuration.WithLabelValues(c.Stage).Observe(c.Latency.Seconds())
}

// ObserveRun records a finished pipeline run.
func (p *Prometheus) ObserveRun(contextMode, status string, d time.Duration) {
	p.RunsTotal.WithLabelValues(contextMode, status).Inc()
	p.RunDuration.Observe(d.Seconds())
}

// ObserveRoute records a regeneration decision.
func (p *Prometheus) ObserveRoute(workflowType string, diffRatio float64) {
	p.RoutesTotal.WithLabelValues(workflowType).Inc()
	p.DiffRatio.Observe(diffRatio)
}

// ObservePersistError counts a failed history write.
func (p *Prometheus) ObservePersistError() {
	p.PersistErrors.Inc()
}
