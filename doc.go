// Package clustering provides an online density-based clustering engine for
// unbounded point streams.
//
// # Architecture
//
// The engine maintains a compact, decaying summary of the stream
// (micro-clusters) in a background maintenance task, then derives
// user-facing clusters on demand via a density-reachability pass over that
// summary, optionally refined by a secondary shrinkage partitioning step.
//
// The pipeline has three stages:
//
//   - Micro-cluster maintenance: incremental, decay-aware summarization of
//     the incoming stream under concurrent mutation (engine package).
//   - Macro-clustering: density-based grouping of the micro-cluster
//     summaries into final clusters (dbscan package).
//   - Shrinkage refinement: iterative sub-partitioning of an identified
//     cluster into finer groups, bounded by iteration and size budgets
//     (shrinkage package).
//
// Data flows from producers through a concurrent ingestion queue
// (pkg/buffer) into the maintenance loop, which merges each point into the
// live micro-cluster set under a single critical section. Macro-clustering
// reads an immutable snapshot of that set, so callers never observe a
// partially applied merge.
//
// # Boundaries
//
// The module is a library: HTTP exposure of clustering results, data-source
// readers, visualization, and process supervision belong to consumers.
// Points enter through the engine's Add interface and are opaque except for
// the point.Point capability contract (identity plus coordinates). The
// engine does not persist state across restarts and is local to one
// process.
package clustering
