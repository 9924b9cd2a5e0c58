package grid

// Ray enumerates the cells a straight beam crosses between two cell indices,
// start and end inclusive, using an integer Bresenham walk. The sequence is
// 8-connected, visits each endpoint exactly once, and has exactly
// max(|Δx|,|Δy|)+1 cells. A Ray is lazy and restartable: Next yields one
// cell per call and Reset rewinds to the start without reallocating.
type Ray struct {
	start, end Cell
	dx, dy     int32 // absolute deltas
	sx, sy     int32 // per-axis step signs

	cur  Cell
	err  int32
	done bool
}

// CastRay prepares a ray from start to end. The degenerate case start == end
// yields a single cell.
func CastRay(start, end Cell) *Ray {
	r := &Ray{start: start, end: end}
	r.dx = abs32(end.X - start.X)
	r.dy = abs32(end.Y - start.Y)
	r.sx = sign32(end.X - start.X)
	r.sy = sign32(end.Y - start.Y)
	r.Reset()
	return r
}

// Len returns the total number of cells the ray will yield.
func (r *Ray) Len() int {
	if r.dx > r.dy {
		return int(r.dx) + 1
	}
	return int(r.dy) + 1
}

// Reset rewinds the ray to its starting cell.
func (r *Ray) Reset() {
	r.cur = r.start
	r.done = false
	// The error term opens at half the dominant delta and is decremented by
	// the minor delta each step; going negative triggers a minor-axis step
	// and an error correction of one dominant delta.
	if r.dx >= r.dy {
		r.err = r.dx / 2
	} else {
		r.err = r.dy / 2
	}
}

// Next returns the next cell on the ray. ok is false once the end cell has
// been consumed.
func (r *Ray) Next() (c Cell, ok bool) {
	if r.done {
		return Cell{}, false
	}
	c = r.cur
	if c == r.end {
		r.done = true
		return c, true
	}
	if r.dx >= r.dy {
		r.err -= r.dy
		if r.err < 0 {
			r.cur.Y += r.sy
			r.err += r.dx
		}
		r.cur.X += r.sx
	} else {
		r.err -= r.dx
		if r.err < 0 {
			r.cur.X += r.sx
			r.err += r.dy
		}
		r.cur.Y += r.sy
	}
	return c, true
}

// End returns the ray's final cell (the beam endpoint).
func (r *Ray) End() Cell { return r.end }

// Collect materialises the remaining cells into a slice. Mostly useful in
// tests; fusion consumes rays incrementally.
func (r *Ray) Collect() []Cell {
	cells := make([]Cell, 0, r.Len())
	for {
		c, ok := r.Next()
		if !ok {
			return cells
		}
		cells = append(cells, c)
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func sign32(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
