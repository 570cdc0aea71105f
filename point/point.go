// Package point defines the capability contract stream elements must
// satisfy to enter the clustering engine, plus the distance functions used
// to compare them.
//
// The engine is opaque to everything else about a point: identity is used
// for removal and deduplication, coordinates feed centroid and distance
// computation, and the arrival time (temporal points only) drives decay
// weighting.
package point

import (
	"math"
	"time"
)

// Point is the minimal contract any stream element must expose.
// The identity must be immutable for the lifetime of the point inside the
// engine.
type Point interface {
	// ID returns a stable unique key used for removal and deduplication.
	ID() string

	// Vec returns the point's coordinates. The slice must not be mutated
	// after the point has been handed to the engine.
	Vec() []float64
}

// Temporal is a Point that also carries an arrival time, used by the
// decay-weighted micro-cluster variant.
type Temporal interface {
	Point

	// ArrivalTime returns when the point entered the stream.
	ArrivalTime() time.Time
}

// DistanceFunc computes a nonnegative, symmetric distance between two
// coordinate vectors. The triangle inequality is not required; the density
// algorithms tolerate quasi-metrics.
type DistanceFunc func(a, b []float64) float64

// Euclidean returns the euclidean distance between two vectors.
// Vectors of different lengths are compared over their common prefix.
func Euclidean(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine distance (1 - cosine similarity) between two
// vectors. Zero vectors are at distance 1 from everything, including each
// other, since they carry no direction.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Mean returns the arithmetic mean of the given vectors. Returns nil for
// empty input. All vectors are assumed to share the dimensionality of the
// first.
func Mean(vecs [][]float64) []float64 {
	if len(vecs) == 0 {
		return nil
	}
	mean := make([]float64, len(vecs[0]))
	for _, v := range vecs {
		for i := range mean {
			if i < len(v) {
				mean[i] += v[i]
			}
		}
	}
	for i := range mean {
		mean[i] /= float64(len(vecs))
	}
	return mean
}

// WeightedMean returns the mean of the given vectors weighted by the
// parallel weights slice. Returns nil for empty input or when the total
// weight is zero.
func WeightedMean(vecs [][]float64, weights []float64) []float64 {
	if len(vecs) == 0 || len(vecs) != len(weights) {
		return nil
	}
	var total float64
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return nil
	}
	mean := make([]float64, len(vecs[0]))
	for j, v := range vecs {
		for i := range mean {
			if i < len(v) {
				mean[i] += v[i] * weights[j]
			}
		}
	}
	for i := range mean {
		mean[i] /= total
	}
	return mean
}
