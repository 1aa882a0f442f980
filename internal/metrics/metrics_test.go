package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Advance("timer")
	m.Advance("timer")
	m.MediaFailure("video")
	m.Fetch("photos", "ok")
	m.Heart(true)
	m.Heart(false)
	m.ScreenConnected(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SlideAdvances.WithLabelValues("timer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MediaFailures.WithLabelValues("video")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fetches.WithLabelValues("photos", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Hearts.WithLabelValues("duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Screens))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Advance("manual")
		m.MediaFailure("image")
		m.Fetch("event", "error")
		m.Heart(true)
		m.ScreenConnected(-1)
		m.ObserveRequest("GET", "/ping", "200", 0.01)
	})
}
