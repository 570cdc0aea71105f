// Package shrinkage refines an already-identified cluster into finer
// sub-groups via iterative exemplar shrinking: assign points to their
// nearest exemplar, recompute exemplars as assignment centroids, and fold
// under-supported exemplars away until the assignment stabilizes or the
// iteration budget runs out.
package shrinkage

import (
	"github.com/sea-shanty-2/clustering/point"
)

// DefaultMinSupport is the assignment count below which an exemplar is
// folded into its nearest surviving neighbor. The default only removes
// exemplars that attract no points at all.
const DefaultMinSupport = 1

// Option configures a Refiner.
type Option[P point.Point] func(*Refiner[P])

// WithMinSupport overrides the shrink trigger: exemplars with fewer
// assigned points are folded away each iteration. Values below 1 are
// ignored.
func WithMinSupport[P point.Point](n int) Option[P] {
	return func(r *Refiner[P]) {
		if n >= 1 {
			r.minSupport = n
		}
	}
}

// Refiner sub-partitions a point set under a sub-cluster budget and an
// iteration budget.
type Refiner[P point.Point] struct {
	maxClusters   int
	maxIterations int
	minSupport    int
	dist          point.DistanceFunc
}

// New creates a refiner. maxClusters bounds the number of sub-groups to
// consider (capped at the input size per call); maxIterations bounds the
// refinement loop.
func New[P point.Point](maxClusters, maxIterations int, dist point.DistanceFunc, opts ...Option[P]) *Refiner[P] {
	r := &Refiner[P]{
		maxClusters:   maxClusters,
		maxIterations: maxIterations,
		minSupport:    DefaultMinSupport,
		dist:          dist,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Cluster partitions points into at most min(maxClusters, len(points))
// non-empty groups. Empty input returns an empty sequence. Group order is
// stable for a fixed input.
func (r *Refiner[P]) Cluster(points []P) [][]P {
	if len(points) == 0 || r.maxClusters <= 0 {
		return nil
	}

	// Never create more exemplars than points.
	k := r.maxClusters
	if k > len(points) {
		k = len(points)
	}

	// Seed exemplars evenly spaced across the input.
	exemplars := make([][]float64, 0, k)
	for i := 0; i < k; i++ {
		seed := points[i*len(points)/k].Vec()
		exemplars = append(exemplars, append([]float64(nil), seed...))
	}

	assignment := r.assign(points, exemplars)
	for iter := 0; iter < r.maxIterations; iter++ {
		exemplars = r.recompute(points, assignment, exemplars)
		exemplars = r.shrink(points, assignment, exemplars)

		next := r.assign(points, exemplars)
		if equalAssignment(assignment, next) {
			break
		}
		assignment = next
	}

	return r.groups(points, assignment, len(exemplars))
}

// assign maps every point to its nearest exemplar. Equidistant exemplars
// resolve to the first encountered.
func (r *Refiner[P]) assign(points []P, exemplars [][]float64) []int {
	assignment := make([]int, len(points))
	for i, p := range points {
		best := 0
		bestDist := r.dist(exemplars[0], p.Vec())
		for e := 1; e < len(exemplars); e++ {
			if d := r.dist(exemplars[e], p.Vec()); d < bestDist {
				best = e
				bestDist = d
			}
		}
		assignment[i] = best
	}
	return assignment
}

// recompute replaces each exemplar with the centroid of its assigned
// points. Exemplars with no assignments keep their position until shrink
// folds them away.
func (r *Refiner[P]) recompute(points []P, assignment []int, exemplars [][]float64) [][]float64 {
	buckets := make([][][]float64, len(exemplars))
	for i, p := range points {
		buckets[assignment[i]] = append(buckets[assignment[i]], p.Vec())
	}
	for e := range exemplars {
		if mean := point.Mean(buckets[e]); mean != nil {
			exemplars[e] = mean
		}
	}
	return exemplars
}

// shrink removes exemplars whose support fell below minSupport, folding
// their members toward the nearest surviving exemplar on the next
// assignment pass. At least one exemplar always survives.
func (r *Refiner[P]) shrink(points []P, assignment []int, exemplars [][]float64) [][]float64 {
	support := make([]int, len(exemplars))
	for _, e := range assignment {
		support[e]++
	}

	surviving := exemplars[:0]
	for e := range exemplars {
		if support[e] >= r.minSupport {
			surviving = append(surviving, exemplars[e])
		}
	}
	if len(surviving) == 0 {
		// Keep the best-supported exemplar rather than none.
		best := 0
		for e := 1; e < len(support); e++ {
			if support[e] > support[best] {
				best = e
			}
		}
		surviving = append(surviving, exemplars[best])
	}
	return surviving
}

// groups materializes the non-empty assignment groups in exemplar order.
func (r *Refiner[P]) groups(points []P, assignment []int, exemplarCount int) [][]P {
	byExemplar := make([][]P, exemplarCount)
	for i, p := range points {
		byExemplar[assignment[i]] = append(byExemplar[assignment[i]], p)
	}

	out := make([][]P, 0, exemplarCount)
	for _, group := range byExemplar {
		if len(group) > 0 {
			out = append(out, group)
		}
	}
	return out
}

func equalAssignment(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
