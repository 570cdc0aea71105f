// Package microcluster implements the compact summaries the engine
// maintains for groups of nearby stream points.
//
// Two variants exist as an explicit tagged case, exposing Center, Radius
// and Weight uniformly so callers never need to downcast:
//
//   - Timeless: plain membership; center is the arithmetic mean, weight is
//     the member count.
//   - Temporal: each member's contribution decays as 2^(-lambda*age), so
//     center, radius and weight are functions of the query time and are
//     recomputed on every call, never cached.
//
// A micro-cluster with zero members is meaningless; the maintenance engine
// removes empties from its set.
package microcluster

import (
	"time"

	"github.com/sea-shanty-2/clustering/point"
)

// Kind tags the micro-cluster variant.
type Kind int

const (
	// Timeless clusters ignore the query time entirely.
	Timeless Kind = iota
	// Temporal clusters weight members by base-2 exponential decay.
	Temporal
)

// String returns a human-readable representation of the variant.
func (k Kind) String() string {
	switch k {
	case Timeless:
		return "timeless"
	case Temporal:
		return "temporal"
	default:
		return "unknown"
	}
}

// MicroCluster is the uniform contract over both variants. All derived
// quantities take the query time t; the timeless variant ignores it.
type MicroCluster[P point.Point] interface {
	// ID returns the cluster's unique identifier.
	ID() string

	// Kind returns the variant tag.
	Kind() Kind

	// Insert adds a point to the membership. It never fails.
	Insert(p P)

	// Remove deletes all members matching the identity and returns how
	// many were removed. No-op (returns 0) if absent.
	Remove(id string) int

	// Center returns the cluster centroid at time t, or nil when empty.
	Center(t time.Time) []float64

	// Radius returns the maximum distance from the centroid to any
	// member at time t. Zero when empty.
	Radius(t time.Time) float64

	// Weight returns the cluster's density mass at time t.
	Weight(t time.Time) float64

	// Len returns the current member count.
	Len() int

	// Points returns a copy of the membership.
	Points() []P
}

// Snapshot is a read-only view of one micro-cluster, taken by the engine
// for diagnostics and macro-clustering.
type Snapshot[P point.Point] struct {
	ID            string
	Kind          Kind
	Center        []float64
	Radius        float64
	Weight        float64
	PotentialCore bool
	Points        []P
}
