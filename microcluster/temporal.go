package microcluster

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/sea-shanty-2/clustering/point"
)

// Iface hint:
var _ MicroCluster[point.Point] = (*TemporalCluster[point.Point])(nil)

// entry pairs a member with its arrival time so decay can be evaluated at
// any query time.
type entry[P point.Point] struct {
	p       P
	arrival time.Time
}

// TemporalCluster summarizes a set of nearby points under base-2
// exponential decay: a member that arrived at time a contributes weight
// 2^(-lambda*(t-a)) at query time t. All derived quantities are evaluated
// lazily at the query time and never cached, since decay makes them
// continuously time-dependent.
type TemporalCluster[P point.Point] struct {
	id      string
	dist    point.DistanceFunc
	lambda  float64 // decay rate per second
	entries []entry[P]
}

// NewTemporal creates an empty decay-weighted micro-cluster. lambda is the
// decay rate per second.
func NewTemporal[P point.Point](dist point.DistanceFunc, lambda float64) *TemporalCluster[P] {
	return &TemporalCluster[P]{
		id:     uuid.NewString(),
		dist:   dist,
		lambda: lambda,
	}
}

// ID returns the cluster's unique identifier.
func (c *TemporalCluster[P]) ID() string { return c.id }

// Kind returns Temporal.
func (c *TemporalCluster[P]) Kind() Kind { return Temporal }

// Insert adds a point to the membership. Points implementing
// point.Temporal contribute from their arrival time; anything else decays
// from the moment of insertion.
func (c *TemporalCluster[P]) Insert(p P) {
	arrival := time.Now()
	if tp, ok := any(p).(point.Temporal); ok {
		arrival = tp.ArrivalTime()
	}
	c.entries = append(c.entries, entry[P]{p: p, arrival: arrival})
}

// Remove deletes all members matching the identity.
func (c *TemporalCluster[P]) Remove(id string) int {
	kept := c.entries[:0]
	removed := 0
	for _, e := range c.entries {
		if e.p.ID() == id {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(c.entries); i++ {
		c.entries[i] = entry[P]{}
	}
	c.entries = kept
	return removed
}

// memberWeight returns the decayed contribution of one member at time t.
// Members that arrive after t contribute their full weight.
func (c *TemporalCluster[P]) memberWeight(e entry[P], t time.Time) float64 {
	age := t.Sub(e.arrival).Seconds()
	if age <= 0 {
		return 1
	}
	return math.Exp2(-c.lambda * age)
}

// Center returns the weight-weighted mean of the membership at time t.
func (c *TemporalCluster[P]) Center(t time.Time) []float64 {
	if len(c.entries) == 0 {
		return nil
	}
	vecs := make([][]float64, len(c.entries))
	weights := make([]float64, len(c.entries))
	for i, e := range c.entries {
		vecs[i] = e.p.Vec()
		weights[i] = c.memberWeight(e, t)
	}
	if mean := point.WeightedMean(vecs, weights); mean != nil {
		return mean
	}
	// Fully decayed membership still has a location.
	return point.Mean(vecs)
}

// Radius returns the maximum distance from the centroid at time t to any
// member.
func (c *TemporalCluster[P]) Radius(t time.Time) float64 {
	center := c.Center(t)
	if center == nil {
		return 0
	}
	var max float64
	for _, e := range c.entries {
		if d := c.dist(center, e.p.Vec()); d > max {
			max = d
		}
	}
	return max
}

// Weight returns the sum of member weights at time t.
func (c *TemporalCluster[P]) Weight(t time.Time) float64 {
	var sum float64
	for _, e := range c.entries {
		sum += c.memberWeight(e, t)
	}
	return sum
}

// Len returns the current member count.
func (c *TemporalCluster[P]) Len() int { return len(c.entries) }

// Points returns a copy of the membership.
func (c *TemporalCluster[P]) Points() []P {
	out := make([]P, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.p
	}
	return out
}
