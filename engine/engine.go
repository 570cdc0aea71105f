package engine

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sea-shanty-2/clustering/config"
	"github.com/sea-shanty-2/clustering/dbscan"
	"github.com/sea-shanty-2/clustering/errors"
	"github.com/sea-shanty-2/clustering/metric"
	"github.com/sea-shanty-2/clustering/microcluster"
	"github.com/sea-shanty-2/clustering/pkg/buffer"
	"github.com/sea-shanty-2/clustering/pkg/retry"
	"github.com/sea-shanty-2/clustering/point"
	"github.com/sea-shanty-2/clustering/shrinkage"
)

// StopFunc terminates the background maintenance task and joins it: it
// returns only after the task has observably stopped. It is idempotent.
type StopFunc func()

// Option configures an Engine.
type Option[P point.Point] func(*options)

type options struct {
	logger      *slog.Logger
	dist        point.DistanceFunc
	metricsReg  *metric.MetricsRegistry
	idleBackoff retry.Config
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger[P point.Point](logger *slog.Logger) Option[P] {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDistanceFunc sets the similarity function used for micro-cluster
// maintenance and macro-clustering. Defaults to point.Euclidean.
func WithDistanceFunc[P point.Point](dist point.DistanceFunc) Option[P] {
	return func(o *options) {
		if dist != nil {
			o.dist = dist
		}
	}
}

// WithMetricsRegistry enables Prometheus metrics for the engine and its
// ingestion queue.
func WithMetricsRegistry[P point.Point](registry *metric.MetricsRegistry) Option[P] {
	return func(o *options) {
		o.metricsReg = registry
	}
}

// Engine maintains the live micro-cluster summary of one point stream and
// derives cluster partitions from it on demand.
//
// Exactly one background maintenance task per instance merges queued
// points into the micro-cluster set; each merge is a single critical
// section, and snapshot readers (Cluster, MicroClusters) copy the set
// under the same lock, so they never observe a partially applied merge.
type Engine[P point.Point] struct {
	cfg     config.Engine
	dist    point.DistanceFunc
	logger  *slog.Logger
	queue   *buffer.Queue[P]
	metrics *engineMetrics

	idleBackoff retry.Config

	// mu guards the micro-cluster set. Held for the duration of one
	// merge, one removal, or one snapshot copy.
	mu       sync.Mutex
	clusters []microcluster.MicroCluster[P]

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool
}

// New creates an engine from a validated configuration.
func New[P point.Point](cfg config.Engine, opts ...Option[P]) (*Engine[P], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{
		logger:      slog.Default(),
		dist:        point.Euclidean,
		idleBackoff: retry.Idle(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	var queueOpts []buffer.Option[P]
	if o.metricsReg != nil {
		queueOpts = append(queueOpts, buffer.WithMetrics[P](o.metricsReg, "ingest"))
	}
	queue, err := buffer.New[P](cfg.QueueCapacity, queueOpts...)
	if err != nil {
		return nil, err
	}

	metrics, err := newEngineMetrics(o.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Engine[P]{
		cfg:         cfg,
		dist:        o.dist,
		logger:      o.logger.With("component", "engine"),
		queue:       queue,
		metrics:     metrics,
		idleBackoff: o.idleBackoff,
	}, nil
}

// Add enqueues one or many points for ingestion. Safe to call before or
// after Start; rejected once the engine has been stopped.
func (e *Engine[P]) Add(points ...P) error {
	e.lifecycleMu.Lock()
	stopped := e.stopped
	e.lifecycleMu.Unlock()
	if stopped {
		return errors.WrapInvalid(errors.ErrAlreadyStopped, "Engine", "Add", "engine stopped")
	}

	if len(points) == 0 {
		return nil
	}
	if err := e.queue.EnqueueBatch(points); err != nil {
		return err
	}
	e.metrics.recordReceived(len(points))
	return nil
}

// Remove evicts every point matching the identity from whichever
// micro-cluster currently holds it. Emptied micro-clusters are deleted.
func (e *Engine[P]) Remove(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := 0
	kept := e.clusters[:0]
	for _, c := range e.clusters {
		removed += c.Remove(id)
		if c.Len() > 0 {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(e.clusters); i++ {
		e.clusters[i] = nil
	}
	e.clusters = kept

	if removed > 0 {
		e.metrics.recordRemoved(removed, len(e.clusters))
	}
}

// Start begins the background maintenance task. It fails with a
// configuration error if the engine is already running or was torn down.
// The returned StopFunc signals termination and blocks until the
// background work has fully exited.
func (e *Engine[P]) Start(ctx context.Context) (StopFunc, error) {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()

	if e.stopped {
		return nil, errors.WrapInvalid(errors.ErrAlreadyStopped, "Engine", "Start", "engine stopped")
	}
	if e.started {
		return nil, errors.WrapInvalid(errors.ErrAlreadyStarted, "Engine", "Start", "maintenance already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return e.maintain(gctx)
	})
	if e.cfg.Variant == config.VariantTemporal {
		g.Go(func() error {
			return e.prunePeriodically(gctx)
		})
	}

	e.started = true
	e.logger.Info("maintenance started", "variant", string(e.cfg.Variant))

	var once sync.Once
	stop := func() {
		once.Do(func() {
			e.lifecycleMu.Lock()
			e.stopped = true
			e.lifecycleMu.Unlock()

			cancel()
			_ = g.Wait()
			_ = e.queue.Close()
			e.logger.Info("maintenance stopped",
				"queued", e.queue.Len(),
				"microclusters", e.MicroClusterCount())
		})
	}
	return stop, nil
}

// maintain is the background merge loop: dequeue one point, merge it into
// the micro-cluster set, repeat. Termination is checked between merges; a
// point already dequeued completes its merge first.
func (e *Engine[P]) maintain(ctx context.Context) error {
	idle := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		p, ok := e.queue.TryDequeue()
		if !ok {
			timer := time.NewTimer(e.idleBackoff.Delay(idle))
			idle++
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
			continue
		}
		idle = 0
		e.merge(p)
	}
}

// merge absorbs one point: try the single closest micro-cluster under the
// radius bound, otherwise open a new singleton cluster. One critical
// section with respect to snapshot reads.
func (e *Engine[P]) merge(p P) {
	now := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Rank by distance from cluster center to the point; equidistant
	// clusters resolve to the first encountered.
	var closest microcluster.MicroCluster[P]
	best := math.MaxFloat64
	for _, c := range e.clusters {
		if d := e.dist(c.Center(now), p.Vec()); d < best {
			best = d
			closest = c
		}
	}

	if closest != nil {
		closest.Insert(p)
		if closest.Radius(now) <= e.cfg.MaxRadius {
			e.metrics.recordMerge("absorbed", len(e.clusters))
			return
		}
		// Undo: the point does not fit within the radius bound.
		closest.Remove(p.ID())
	}

	c := e.newCluster()
	c.Insert(p)
	e.clusters = append(e.clusters, c)
	e.metrics.recordMerge("created", len(e.clusters))
}

func (e *Engine[P]) newCluster() microcluster.MicroCluster[P] {
	if e.cfg.Variant == config.VariantTemporal {
		return microcluster.NewTemporal[P](e.dist, e.cfg.DecayLambda)
	}
	return microcluster.NewTimeless[P](e.dist)
}

// prunePeriodically removes temporal micro-clusters whose weight decayed
// below the minimal-existence threshold.
func (e *Engine[P]) prunePeriodically(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.PruneInterval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if pruned := e.prune(time.Now()); pruned > 0 {
				e.logger.Debug("pruned decayed micro-clusters", "count", pruned)
			}
		}
	}
}

func (e *Engine[P]) prune(now time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.clusters[:0]
	pruned := 0
	for _, c := range e.clusters {
		if c.Weight(now) < e.cfg.PruneThreshold {
			pruned++
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(e.clusters); i++ {
		e.clusters[i] = nil
	}
	e.clusters = kept

	if pruned > 0 {
		e.metrics.recordPruned(pruned, len(e.clusters))
	}
	return pruned
}

// Cluster derives the current macro-cluster partition: a density
// reachability pass over the micro-cluster snapshot. Each returned group
// is the flattened membership of the micro-clusters assigned to it; units
// reachable from no core unit are noise and omitted. The micro-cluster
// set is not mutated.
func (e *Engine[P]) Cluster() [][]P {
	start := time.Now()
	snaps := e.MicroClusters()

	units := make([]dbscan.Unit[[]P], 0, len(snaps))
	for _, s := range snaps {
		units = append(units, dbscan.Unit[[]P]{Center: s.Center, Payload: s.Points})
	}

	grouped := dbscan.Cluster(units, e.cfg.Eps, e.cfg.MinPoints, e.dist)

	out := make([][]P, 0, len(grouped))
	for _, group := range grouped {
		var flat []P
		for _, members := range group {
			flat = append(flat, members...)
		}
		out = append(out, flat)
	}

	e.metrics.recordMacroPass(time.Since(start).Seconds(), len(out))
	return out
}

// MicroClusters returns a read-only snapshot of the current micro-cluster
// set for diagnostics and visualization. Memberships are copies; mutating
// them does not affect the engine.
func (e *Engine[P]) MicroClusters() []microcluster.Snapshot[P] {
	now := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	snaps := make([]microcluster.Snapshot[P], 0, len(e.clusters))
	for _, c := range e.clusters {
		weight := c.Weight(now)
		snaps = append(snaps, microcluster.Snapshot[P]{
			ID:            c.ID(),
			Kind:          c.Kind(),
			Center:        c.Center(now),
			Radius:        c.Radius(now),
			Weight:        weight,
			PotentialCore: c.Kind() == microcluster.Temporal && weight >= e.cfg.WeightThreshold,
			Points:        c.Points(),
		})
	}
	return snaps
}

// MicroClusterCount returns the number of live micro-clusters.
func (e *Engine[P]) MicroClusterCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.clusters)
}

// QueueLen returns the number of points waiting to be merged.
func (e *Engine[P]) QueueLen() int {
	return e.queue.Len()
}

// Refine sub-partitions points already identified as one macro-cluster
// into at most subClusters finer groups, using at most iterations
// refinement rounds. A nil dist falls back to the engine's distance
// function.
func (e *Engine[P]) Refine(points []P, subClusters, iterations int, dist point.DistanceFunc) [][]P {
	if dist == nil {
		dist = e.dist
	}
	return shrinkage.New[P](subClusters, iterations, dist).Cluster(points)
}
