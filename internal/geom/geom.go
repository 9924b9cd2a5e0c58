// Package geom holds the point-cloud geometry used by the occupancy mapper:
// the world-frame point type, per-point sanitisation, and floor alignment.
package geom

import "math"

// Point is a single return in the sensor/world frame, metres.
type Point struct {
	X, Y, Z float64
}

// Finite reports whether all three coordinates are finite numbers.
// Points failing this test must never reach the grid store.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// Sanitize removes points with non-finite coordinates, compacting in place
// (same backing array, new slice header). Returns the clean slice and the
// number of points dropped.
func Sanitize(cloud []Point) ([]Point, int) {
	writeIdx := 0
	for readIdx := 0; readIdx < len(cloud); readIdx++ {
		if !cloud[readIdx].Finite() {
			continue
		}
		cloud[writeIdx] = cloud[readIdx]
		writeIdx++
	}
	return cloud[:writeIdx], len(cloud) - writeIdx
}

// FilterHeight returns the points with |Z| below threshold. The input slice
// is not modified; hits share no storage with the input.
func FilterHeight(cloud []Point, threshold float64) []Point {
	hits := make([]Point, 0, len(cloud))
	for _, p := range cloud {
		if math.Abs(p.Z) < threshold {
			hits = append(hits, p)
		}
	}
	return hits
}
