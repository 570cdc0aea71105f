package buffer

import (
	"github.com/sea-shanty-2/clustering/metric"
)

// Option configures queue behavior using the functional options pattern.
type Option[T any] func(*queueOptions)

// queueOptions holds internal configuration for queue instances.
// Stats are always collected; metrics are optional via WithMetrics.
type queueOptions struct {
	metricsReg    *metric.MetricsRegistry
	metricsPrefix string
}

// WithMetrics enables Prometheus metrics export for queue statistics.
// The prefix is used as the component label. A nil registry or empty
// prefix disables the option.
func WithMetrics[T any](registry *metric.MetricsRegistry, prefix string) Option[T] {
	return func(opts *queueOptions) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

func applyOptions[T any](options ...Option[T]) *queueOptions {
	opts := &queueOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
