// Package frontier locates frontier cells — free cells on the boundary of
// unexplored space — in a classified occupancy grid. Two interchangeable
// strategies are provided; callers cluster and rank the results externally.
package frontier

import "github.com/banshee-data/occugrid/internal/grid"

// Set is an unordered collection of frontier cells.
type Set map[grid.Cell]struct{}

// Contains reports membership.
func (s Set) Contains(c grid.Cell) bool {
	_, ok := s[c]
	return ok
}

// Equal reports whether two sets hold the same cells.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for c := range s {
		if !other.Contains(c) {
			return false
		}
	}
	return true
}

// neighbors4 is the 4-connected neighborhood used by both the frontier
// predicate and wavefront expansion.
var neighbors4 = [4]grid.Cell{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

// IsFrontier reports whether a cell is a frontier: classified Free with at
// least one 4-connected neighbor that is Unknown. Cells absent from the
// classified map count as Unknown.
func IsFrontier(occ map[grid.Cell]grid.State, c grid.Cell) bool {
	if occ[c] != grid.Free {
		return false
	}
	for _, d := range neighbors4 {
		n := grid.Cell{X: c.X + d.X, Y: c.Y + d.Y}
		if _, observed := occ[n]; !observed {
			return true
		}
		if occ[n] == grid.Unknown {
			return true
		}
	}
	return false
}

// Detector is a frontier detection strategy over a classified grid.
type Detector interface {
	Detect(occ map[grid.Cell]grid.State) Set
}

// NaiveActiveArea tests only the cells touched by the most recent scan.
// O(|last scan|), but misses frontiers not re-observed this scan.
type NaiveActiveArea struct {
	LastScan []grid.Cell
}

// Detect returns the frontier cells among the last scan's touched cells.
func (n NaiveActiveArea) Detect(occ map[grid.Cell]grid.State) Set {
	frontiers := make(Set)
	for _, c := range n.LastScan {
		if IsFrontier(occ, c) {
			frontiers[c] = struct{}{}
		}
	}
	return frontiers
}

// ExpandingWavefront runs a breadth-first search from the robot's cell,
// expanding only through Free cells, and records every visited cell that
// satisfies the frontier predicate. Each cell is enqueued at most once, so
// the search terminates after visiting the Free region reachable from the
// robot without scanning the rest of the grid.
type ExpandingWavefront struct {
	Robot grid.Cell
}

// Detect returns the full connected frontier set reachable from the robot.
func (w ExpandingWavefront) Detect(occ map[grid.Cell]grid.State) Set {
	frontiers := make(Set)
	visited := map[grid.Cell]struct{}{w.Robot: {}}
	queue := []grid.Cell{w.Robot}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		if IsFrontier(occ, c) {
			frontiers[c] = struct{}{}
		}

		for _, d := range neighbors4 {
			n := grid.Cell{X: c.X + d.X, Y: c.Y + d.Y}
			if _, seen := visited[n]; seen {
				continue
			}
			if occ[n] != grid.Free {
				continue
			}
			visited[n] = struct{}{}
			queue = append(queue, n)
		}
	}
	return frontiers
}
