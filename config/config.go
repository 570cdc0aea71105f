// Package config defines the clustering engine configuration: micro-cluster
// geometry, decay and pruning thresholds, macro-clustering density
// parameters, and queue sizing. Configuration is JSON-backed and validated
// before use.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sea-shanty-2/clustering/errors"
)

// Variant selects the micro-cluster flavor the engine maintains.
type Variant string

const (
	// VariantTimeless maintains plain micro-clusters without decay.
	VariantTimeless Variant = "timeless"
	// VariantTemporal maintains decay-weighted micro-clusters.
	VariantTemporal Variant = "temporal"
)

// Duration wraps time.Duration so JSON configs can use strings like "30s".
type Duration time.Duration

// UnmarshalJSON accepts either a duration string or nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(time.Duration(value))
	default:
		return fmt.Errorf("invalid duration value %v", v)
	}
	return nil
}

// MarshalJSON renders the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Engine holds all tunables for one engine instance.
type Engine struct {
	// Variant selects timeless or temporal micro-clusters.
	Variant Variant `json:"variant"`

	// MaxRadius bounds a micro-cluster's radius: a point merges into its
	// closest cluster only when the resulting radius stays within this
	// limit.
	MaxRadius float64 `json:"max_radius"`

	// Eps is the macro-clustering density reach: two micro-clusters are
	// directly connected when their centers are within Eps.
	Eps float64 `json:"eps"`

	// MinPoints is the number of other directly-connected micro-clusters
	// required for a micro-cluster to count as a core unit.
	MinPoints int `json:"min_points"`

	// DecayLambda is the base-2 decay rate per second for the temporal
	// variant.
	DecayLambda float64 `json:"decay_lambda"`

	// WeightThreshold classifies a temporal micro-cluster as
	// potential-core when its decayed weight meets it.
	WeightThreshold float64 `json:"weight_threshold"`

	// PruneThreshold is the minimal-existence weight; temporal clusters
	// decaying below it are removed.
	PruneThreshold float64 `json:"prune_threshold"`

	// PruneInterval is how often the prune pass runs.
	PruneInterval Duration `json:"prune_interval"`

	// QueueCapacity is the initial ingestion queue capacity. The queue
	// grows on demand; this only sizes the first allocation.
	QueueCapacity int `json:"queue_capacity"`
}

// Default returns the engine configuration used when callers do not
// override anything: temporal micro-clusters with a ~70 second half-life.
func Default() Engine {
	return Engine{
		Variant:         VariantTemporal,
		MaxRadius:       15,
		Eps:             30,
		MinPoints:       2,
		DecayLambda:     0.01,
		WeightThreshold: 2,
		PruneThreshold:  0.25,
		PruneInterval:   Duration(5 * time.Second),
		QueueCapacity:   256,
	}
}

// Validate checks the configuration for internal consistency. All
// violations wrap errors.ErrInvalidConfig.
func (c Engine) Validate() error {
	invalid := func(msg string) error {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Engine", "Validate", msg)
	}

	switch c.Variant {
	case VariantTimeless, VariantTemporal:
	default:
		return invalid(fmt.Sprintf("unknown variant %q", c.Variant))
	}
	if c.MaxRadius <= 0 {
		return invalid("max_radius must be positive")
	}
	if c.Eps <= 0 {
		return invalid("eps must be positive")
	}
	if c.MinPoints < 0 {
		return invalid("min_points must not be negative")
	}
	if c.QueueCapacity < 0 {
		return invalid("queue_capacity must not be negative")
	}

	if c.Variant == VariantTemporal {
		if c.DecayLambda <= 0 {
			return invalid("decay_lambda must be positive for the temporal variant")
		}
		if c.WeightThreshold <= 0 {
			return invalid("weight_threshold must be positive for the temporal variant")
		}
		if c.PruneThreshold < 0 {
			return invalid("prune_threshold must not be negative")
		}
		if c.PruneThreshold >= c.WeightThreshold {
			return invalid("prune_threshold must stay below weight_threshold")
		}
		if c.PruneInterval.Std() <= 0 {
			return invalid("prune_interval must be positive for the temporal variant")
		}
	}

	return nil
}

// Load reads and validates an engine configuration from a JSON file.
// Missing fields keep their Default() values.
func Load(path string) (Engine, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WrapInvalid(err, "Engine", "Load", "read config file")
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.WrapInvalid(err, "Engine", "Load", "parse config file")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
