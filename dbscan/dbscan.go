// Package dbscan implements the density-reachability pass that groups
// micro-cluster summaries into the externally visible cluster partition.
//
// Clustering operates on units (a center vector plus an opaque payload),
// so density is measured in micro-clusters rather than raw points. Units
// unreachable from any core unit are noise and are omitted from the
// output, not emitted as singleton groups.
package dbscan

import (
	"github.com/sea-shanty-2/clustering/point"
)

// Unit is one clustering unit: a summary center plus the payload carried
// into the output groups.
type Unit[T any] struct {
	Center  []float64
	Payload T
}

// Cluster partitions units by density reachability.
//
// Two units are directly connected when dist between their centers is at
// most eps. A unit is core when at least minPoints other units are
// directly connected to it. Groups are the transitive closure of
// connectivity seeded from core units; non-core units reachable from a
// core join its group; everything else is noise.
//
// The result is deterministic for a fixed input: groups and their members
// follow unit enumeration order. Empty input yields an empty partition.
func Cluster[T any](units []Unit[T], eps float64, minPoints int, dist point.DistanceFunc) [][]T {
	if len(units) == 0 {
		return nil
	}

	// Pairwise direct-connectivity. Quadratic, but the unit count is the
	// micro-cluster count, not the stream size.
	neighbors := make([][]int, len(units))
	for i := range units {
		for j := i + 1; j < len(units); j++ {
			if dist(units[i].Center, units[j].Center) <= eps {
				neighbors[i] = append(neighbors[i], j)
				neighbors[j] = append(neighbors[j], i)
			}
		}
	}

	core := make([]bool, len(units))
	for i := range units {
		core[i] = len(neighbors[i]) >= minPoints
	}

	const unassigned = -1
	assignment := make([]int, len(units))
	for i := range assignment {
		assignment[i] = unassigned
	}

	var groups [][]T
	for i := range units {
		if !core[i] || assignment[i] != unassigned {
			continue
		}

		// Expand a new group from this core unit. Only core units
		// propagate reachability; border units join but do not expand.
		groupID := len(groups)
		var members []T

		frontier := []int{i}
		assignment[i] = groupID
		for len(frontier) > 0 {
			u := frontier[0]
			frontier = frontier[1:]
			members = append(members, units[u].Payload)

			if !core[u] {
				continue
			}
			for _, n := range neighbors[u] {
				if assignment[n] == unassigned {
					assignment[n] = groupID
					frontier = append(frontier, n)
				}
			}
		}

		groups = append(groups, members)
	}

	return groups
}
