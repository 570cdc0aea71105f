package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sea-shanty-2/clustering/errors"
)

func newCounter(name string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "clustering",
		Subsystem: "test",
		Name:      name,
		Help:      "test counter",
	})
}

func TestRegisterAndUnregister(t *testing.T) {
	reg := NewMetricsRegistry()

	c := newCounter("ops_total")
	require.NoError(t, reg.RegisterCounter("engine", "ops_total", c))

	// Same key is rejected.
	err := reg.RegisterCounter("engine", "ops_total", newCounter("ops_total"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	assert.True(t, reg.Unregister("engine", "ops_total"))
	assert.False(t, reg.Unregister("engine", "ops_total"))

	// Re-registration succeeds after Unregister.
	require.NoError(t, reg.RegisterCounter("engine", "ops_total", newCounter("ops_total")))
}

func TestDuplicateCollectorAcrossComponents(t *testing.T) {
	reg := NewMetricsRegistry()

	require.NoError(t, reg.RegisterCounter("a", "dup_total", newCounter("dup_total")))

	// Different key, but Prometheus sees the same metric descriptor.
	err := reg.RegisterCounter("b", "dup_total", newCounter("dup_total"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegisterVecAndHistogram(t *testing.T) {
	reg := NewMetricsRegistry()

	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clustering",
		Subsystem: "test",
		Name:      "merged_total",
		Help:      "test counter vec",
	}, []string{"outcome"})
	require.NoError(t, reg.RegisterCounterVec("engine", "merged_total", vec))

	hist := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "clustering",
		Subsystem: "test",
		Name:      "pass_seconds",
		Help:      "test histogram",
	})
	require.NoError(t, reg.RegisterHistogram("engine", "pass_seconds", hist))

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "clustering",
		Subsystem: "test",
		Name:      "live",
		Help:      "test gauge",
	})
	require.NoError(t, reg.RegisterGauge("engine", "live", gauge))

	gathered, err := reg.PrometheusRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, gathered)
}
