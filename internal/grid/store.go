package grid

// Log-odds fusion defaults. These are consumed as parameters, not
// hardcoded into the store; config may override any of them.
const (
	DefaultLoOcc  = 0.85  // occupied-evidence increment
	DefaultLoFree = -0.40 // free-space decrement
	DefaultLoMin  = -5.0  // lower clamp bound
	DefaultLoMax  = 5.0   // upper clamp bound
)

// FusionParams are the log-odds update constants for one store.
type FusionParams struct {
	LoOcc  float64
	LoFree float64
	LoMin  float64
	LoMax  float64
}

// DefaultFusionParams returns the standard increments and clamp bounds.
func DefaultFusionParams() FusionParams {
	return FusionParams{
		LoOcc:  DefaultLoOcc,
		LoFree: DefaultLoFree,
		LoMin:  DefaultLoMin,
		LoMax:  DefaultLoMax,
	}
}

// Box is the inclusive cell-index bounding box of all stored cells.
type Box struct {
	MinX, MaxX int32
	MinY, MaxY int32
}

// Width returns the box extent in cells along X.
func (b Box) Width() int { return int(b.MaxX-b.MinX) + 1 }

// Height returns the box extent in cells along Y.
func (b Box) Height() int { return int(b.MaxY-b.MinY) + 1 }

// Store is the sparse log-odds map. It is created empty, grows only by
// insertion, and every stored value lies in [LoMin, LoMax]. Not safe for
// concurrent mutation; the owning mapper serialises access.
type Store struct {
	params FusionParams
	cells  map[packedKey]float64
}

// NewStore creates an empty store with the given fusion parameters.
func NewStore(params FusionParams) *Store {
	return &Store{
		params: params,
		cells:  make(map[packedKey]float64),
	}
}

// Params returns the store's fusion parameters.
func (s *Store) Params() FusionParams { return s.params }

// Len returns the number of observed cells.
func (s *Store) Len() int { return len(s.cells) }

// LogOdds returns the stored log-odds for a cell, or 0 (the unobserved
// prior) when the cell has never been seen.
func (s *Store) LogOdds(c Cell) float64 {
	return s.cells[c.key()]
}

// AddOccupied applies one ray-endpoint observation to a cell: prior plus
// LoOcc, clamped into [LoMin, LoMax].
func (s *Store) AddOccupied(c Cell) {
	s.add(c, s.params.LoOcc)
}

// AddFree applies one ray-traversal observation to a cell: prior plus
// LoFree, clamped into [LoMin, LoMax].
func (s *Store) AddFree(c Cell) {
	s.add(c, s.params.LoFree)
}

func (s *Store) add(c Cell, delta float64) {
	lo := s.cells[c.key()] + delta
	if lo < s.params.LoMin {
		lo = s.params.LoMin
	} else if lo > s.params.LoMax {
		lo = s.params.LoMax
	}
	s.cells[c.key()] = lo
}

// Each calls fn for every stored cell in unspecified order.
func (s *Store) Each(fn func(Cell, float64)) {
	for k, lo := range s.cells {
		fn(k.cell(), lo)
	}
}

// BoundingBox recomputes the inclusive bounds over all stored cells. It is
// never cached, so the result is always consistent with the store at call
// time. An empty store reports the zero box.
func (s *Store) BoundingBox() Box {
	if len(s.cells) == 0 {
		return Box{}
	}
	first := true
	var b Box
	for k := range s.cells {
		c := k.cell()
		if first {
			b = Box{MinX: c.X, MaxX: c.X, MinY: c.Y, MaxY: c.Y}
			first = false
			continue
		}
		if c.X < b.MinX {
			b.MinX = c.X
		}
		if c.X > b.MaxX {
			b.MaxX = c.X
		}
		if c.Y < b.MinY {
			b.MinY = c.Y
		}
		if c.Y > b.MaxY {
			b.MaxY = c.Y
		}
	}
	return b
}
