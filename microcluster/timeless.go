package microcluster

import (
	"time"

	"github.com/google/uuid"

	"github.com/sea-shanty-2/clustering/point"
)

// Iface hint:
var _ MicroCluster[point.Point] = (*TimelessCluster[point.Point])(nil)

// TimelessCluster summarizes a set of nearby points without any notion of
// decay. The distance function is shared with the engine, not owned.
type TimelessCluster[P point.Point] struct {
	id      string
	dist    point.DistanceFunc
	members []P
}

// NewTimeless creates an empty timeless micro-cluster.
func NewTimeless[P point.Point](dist point.DistanceFunc) *TimelessCluster[P] {
	return &TimelessCluster[P]{
		id:   uuid.NewString(),
		dist: dist,
	}
}

// ID returns the cluster's unique identifier.
func (c *TimelessCluster[P]) ID() string { return c.id }

// Kind returns Timeless.
func (c *TimelessCluster[P]) Kind() Kind { return Timeless }

// Insert adds a point to the membership.
func (c *TimelessCluster[P]) Insert(p P) {
	c.members = append(c.members, p)
}

// Remove deletes all members matching the identity.
func (c *TimelessCluster[P]) Remove(id string) int {
	kept := c.members[:0]
	removed := 0
	for _, m := range c.members {
		if m.ID() == id {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	// Clear the tail for GC.
	for i := len(kept); i < len(c.members); i++ {
		var zero P
		c.members[i] = zero
	}
	c.members = kept
	return removed
}

// Center returns the arithmetic mean of the membership. The query time is
// ignored for this variant.
func (c *TimelessCluster[P]) Center(_ time.Time) []float64 {
	if len(c.members) == 0 {
		return nil
	}
	vecs := make([][]float64, len(c.members))
	for i, m := range c.members {
		vecs[i] = m.Vec()
	}
	return point.Mean(vecs)
}

// Radius returns the maximum distance from the centroid to any member,
// not the maximum pairwise member distance.
func (c *TimelessCluster[P]) Radius(t time.Time) float64 {
	center := c.Center(t)
	if center == nil {
		return 0
	}
	var max float64
	for _, m := range c.members {
		if d := c.dist(center, m.Vec()); d > max {
			max = d
		}
	}
	return max
}

// Weight is the member count for the timeless variant.
func (c *TimelessCluster[P]) Weight(_ time.Time) float64 {
	return float64(len(c.members))
}

// Len returns the current member count.
func (c *TimelessCluster[P]) Len() int { return len(c.members) }

// Points returns a copy of the membership.
func (c *TimelessCluster[P]) Points() []P {
	out := make([]P, len(c.members))
	copy(out, c.members)
	return out
}

// Merge returns a new cluster whose membership is the union of both
// inputs. Neither input is mutated.
func (c *TimelessCluster[P]) Merge(other *TimelessCluster[P]) *TimelessCluster[P] {
	merged := NewTimeless[P](c.dist)
	merged.members = make([]P, 0, len(c.members)+len(other.members))
	merged.members = append(merged.members, c.members...)
	merged.members = append(merged.members, other.members...)
	return merged
}
