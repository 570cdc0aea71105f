package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sea-shanty-2/clustering/metric"
)

// engineMetrics holds Prometheus metrics for engine operations.
type engineMetrics struct {
	// Stream ingestion
	pointsReceived prometheus.Counter
	pointsRemoved  prometheus.Counter

	// Merge outcomes, by outcome (absorbed/created)
	merges *prometheus.CounterVec

	// Micro-cluster set state
	microClusters  prometheus.Gauge
	clustersPruned prometheus.Counter

	// Macro-clustering
	macroDuration prometheus.Histogram
	macroGroups   prometheus.Gauge
}

// newEngineMetrics creates and registers engine metrics with the provided
// registry. A nil registry disables metrics.
func newEngineMetrics(registry *metric.MetricsRegistry) (*engineMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	m := &engineMetrics{
		pointsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clustering",
			Subsystem: "engine",
			Name:      "points_received_total",
			Help:      "Total number of points accepted for ingestion",
		}),
		pointsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clustering",
			Subsystem: "engine",
			Name:      "points_removed_total",
			Help:      "Total number of points evicted by identity",
		}),
		merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clustering",
			Subsystem: "engine",
			Name:      "merges_total",
			Help:      "Total number of merge operations by outcome",
		}, []string{"outcome"}), // outcome: absorbed, created
		microClusters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clustering",
			Subsystem: "engine",
			Name:      "microclusters",
			Help:      "Current number of live micro-clusters",
		}),
		clustersPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clustering",
			Subsystem: "engine",
			Name:      "microclusters_pruned_total",
			Help:      "Total number of micro-clusters removed by decay pruning",
		}),
		macroDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clustering",
			Subsystem: "engine",
			Name:      "macro_pass_duration_seconds",
			Help:      "Macro-clustering pass duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		macroGroups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clustering",
			Subsystem: "engine",
			Name:      "macro_groups",
			Help:      "Group count produced by the most recent macro-clustering pass",
		}),
	}

	const component = "engine"
	if err := registry.RegisterCounter(component, "points_received_total", m.pointsReceived); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "points_removed_total", m.pointsRemoved); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec(component, "merges_total", m.merges); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(component, "microclusters", m.microClusters); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "microclusters_pruned_total", m.clustersPruned); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogram(component, "macro_pass_duration_seconds", m.macroDuration); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(component, "macro_groups", m.macroGroups); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *engineMetrics) recordReceived(n int) {
	if m == nil {
		return
	}
	m.pointsReceived.Add(float64(n))
}

func (m *engineMetrics) recordMerge(outcome string, clusterCount int) {
	if m == nil {
		return
	}
	m.merges.WithLabelValues(outcome).Inc()
	m.microClusters.Set(float64(clusterCount))
}

func (m *engineMetrics) recordRemoved(n, clusterCount int) {
	if m == nil {
		return
	}
	m.pointsRemoved.Add(float64(n))
	m.microClusters.Set(float64(clusterCount))
}

func (m *engineMetrics) recordPruned(n, clusterCount int) {
	if m == nil {
		return
	}
	m.clustersPruned.Add(float64(n))
	m.microClusters.Set(float64(clusterCount))
}

func (m *engineMetrics) recordMacroPass(seconds float64, groups int) {
	if m == nil {
		return
	}
	m.macroDuration.Observe(seconds)
	m.macroGroups.Set(float64(groups))
}
