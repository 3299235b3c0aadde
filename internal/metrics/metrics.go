package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors exported by the monitor. A nil *Metrics is
// valid and records nothing, so components can be built without metrics.
type Metrics struct {
	PollCycles       prometheus.Counter
	ChannelsChecked  prometheus.Counter
	ItemsDetected    *prometheus.CounterVec
	SourceErrors     prometheus.Counter
	PipelineRuns     *prometheus.CounterVec
	StageFailures    *prometheus.CounterVec
	PipelineDuration prometheus.Histogram
	Notifications    *prometheus.CounterVec
}

// New registers all collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PollCycles: f.NewCounter(prometheus.CounterOpts{
			Name: "digest_poll_cycles_total",
			Help: "Completed poll cycles",
		}),
		ChannelsChecked: f.NewCounter(prometheus.CounterOpts{
			Name: "digest_channels_checked_total",
			Help: "Channel evaluations across all poll cycles",
		}),
		ItemsDetected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "digest_items_observed_total",
			Help: "Latest-item observations by dedup outcome",
		}, []string{"outcome"}),
		SourceErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "digest_source_errors_total",
			Help: "Failures listing a channel's latest item",
		}),
		PipelineRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "digest_pipeline_runs_total",
			Help: "Pipeline runs by result (full, partial, empty)",
		}, []string{"result"}),
		StageFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "digest_stage_failures_total",
			Help: "Pipeline stage failures by stage",
		}, []string{"stage"}),
		PipelineDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "digest_pipeline_duration_seconds",
			Help:    "Wall time of a pipeline run",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200, 2400},
		}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "digest_notifications_total",
			Help: "Notification attempts by status",
		}, []string{"status"}),
	}
}

func (m *Metrics) CycleCompleted(channels int) {
	if m == nil {
		return
	}
	m.PollCycles.Inc()
	m.ChannelsChecked.Add(float64(channels))
}

func (m *Metrics) Observed(outcome string) {
	if m == nil {
		return
	}
	m.ItemsDetected.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SourceError() {
	if m == nil {
		return
	}
	m.SourceErrors.Inc()
}

func (m *Metrics) PipelineFinished(result string, seconds float64) {
	if m == nil {
		return
	}
	m.PipelineRuns.WithLabelValues(result).Inc()
	m.PipelineDuration.Observe(seconds)
}

func (m *Metrics) StageFailed(stage string) {
	if m == nil {
		return
	}
	m.StageFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) Notified(ok bool) {
	if m == nil {
		return
	}
	status := "sent"
	if !ok {
		status = "failed"
	}
	m.Notifications.WithLabelValues(status).Inc()
}
