// Package engine hosts the maintenance engine at the center of the
// clustering pipeline: it absorbs queued stream points into a live
// micro-cluster set from a single background task, and serves consistent
// snapshot reads for macro-clustering and diagnostics.
//
// # Lifecycle
//
// An engine is constructed from a validated config.Engine, started once,
// and stopped once:
//
//	eng, err := engine.New[testutil.Streamer](config.Default())
//	if err != nil { ... }
//	stop, err := eng.Start(ctx)
//	if err != nil { ... }
//	defer stop() // cancels and joins the background work
//
// Start fails on a running or torn-down engine. The StopFunc blocks until
// the maintenance task has observably exited; no point is merged after it
// returns, and a point already dequeued completes its merge first.
//
// # Consistency
//
// The micro-cluster set is guarded by a single mutex held for the
// duration of one merge and one snapshot copy. Cluster and MicroClusters
// therefore always observe the result of zero or more completed merges,
// never a point inserted but not yet validated against the radius bound.
package engine
