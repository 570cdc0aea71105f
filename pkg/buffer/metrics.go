package buffer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sea-shanty-2/clustering/metric"
)

// queueMetrics holds Prometheus metrics for queue operations.
type queueMetrics struct {
	enqueues prometheus.Counter
	dequeues prometheus.Counter
	grows    prometheus.Counter
	depth    prometheus.Gauge
	capacity prometheus.Gauge
}

// newQueueMetrics creates and registers queue metrics with the provided
// registry.
func newQueueMetrics(registry *metric.MetricsRegistry, prefix string) (*queueMetrics, error) {
	m := &queueMetrics{
		enqueues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "clustering",
			Subsystem:   "queue",
			Name:        "enqueues_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of queue enqueue operations",
		}),
		dequeues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "clustering",
			Subsystem:   "queue",
			Name:        "dequeues_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of queue dequeue operations",
		}),
		grows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "clustering",
			Subsystem:   "queue",
			Name:        "grows_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of ring capacity growth events",
		}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "clustering",
			Subsystem:   "queue",
			Name:        "depth",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Current number of queued items",
		}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "clustering",
			Subsystem:   "queue",
			Name:        "capacity",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Current ring capacity",
		}),
	}

	serviceName := "queue_" + prefix
	if err := registry.RegisterCounter(serviceName, "enqueues_total", m.enqueues); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(serviceName, "dequeues_total", m.dequeues); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(serviceName, "grows_total", m.grows); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(serviceName, "depth", m.depth); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(serviceName, "capacity", m.capacity); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *queueMetrics) recordEnqueue(depth int) {
	m.enqueues.Inc()
	m.depth.Set(float64(depth))
}

func (m *queueMetrics) recordDequeue(depth int) {
	m.dequeues.Inc()
	m.depth.Set(float64(depth))
}

func (m *queueMetrics) recordGrow(capacity int) {
	m.grows.Inc()
	m.capacity.Set(float64(capacity))
}

func (m *queueMetrics) updateDepth(depth int) {
	m.depth.Set(float64(depth))
}
