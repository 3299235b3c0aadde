package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	t.Run("should count cycles and outcomes", func(t *testing.T) {
		m := New(prometheus.NewRegistry())

		m.CycleCompleted(3)
		m.CycleCompleted(2)
		m.Observed("changed")
		m.SourceError()
		m.StageFailed("fetch")
		m.StageFailed("fetch")
		m.PipelineFinished("empty", 1.5)
		m.Notified(true)
		m.Notified(false)

		assert.Equal(t, 2.0, testutil.ToFloat64(m.PollCycles))
		assert.Equal(t, 5.0, testutil.ToFloat64(m.ChannelsChecked))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemsDetected.WithLabelValues("changed")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceErrors))
		assert.Equal(t, 2.0, testutil.ToFloat64(m.StageFailures.WithLabelValues("fetch")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRuns.WithLabelValues("empty")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("failed")))
	})

	t.Run("nil metrics should be a no-op", func(t *testing.T) {
		var m *Metrics
		assert.NotPanics(t, func() {
			m.CycleCompleted(1)
			m.Observed("first_seen")
			m.SourceError()
			m.StageFailed("extract")
			m.PipelineFinished("full", 2)
			m.Notified(true)
		})
	})
}
