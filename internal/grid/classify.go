package grid

import "math"

// State is the ternary occupancy classification of a cell. It is derived
// from log-odds on query and never stored.
type State uint8

const (
	Unknown State = iota
	Free
	Occupied
)

func (s State) String() string {
	switch s {
	case Occupied:
		return "occupied"
	case Free:
		return "free"
	case Unknown:
		return "unknown"
	}
	return "invalid"
}

// Default probability thresholds for classification.
const (
	DefaultOccupiedThreshold = 0.65
	DefaultFreeThreshold     = 0.35
)

// Thresholds are the probability cut points for classification.
type Thresholds struct {
	Occupied float64 // p above this is Occupied
	Free     float64 // p below this is Free
}

// DefaultThresholds returns the standard 0.65/0.35 cut points.
func DefaultThresholds() Thresholds {
	return Thresholds{Occupied: DefaultOccupiedThreshold, Free: DefaultFreeThreshold}
}

// Classify maps a log-odds value to an occupancy state via the logistic
// p = 1 − 1/(1 + e^lo). Total and deterministic for any finite lo, which the
// store's clamp invariant guarantees.
func Classify(lo float64, th Thresholds) State {
	p := 1 - 1/(1+math.Exp(lo))
	switch {
	case p > th.Occupied:
		return Occupied
	case p < th.Free:
		return Free
	}
	return Unknown
}

// Classified returns the ternary view of every observed cell. Cells absent
// from the result are unobserved and implicitly Unknown.
func (s *Store) Classified(th Thresholds) map[Cell]State {
	occ := make(map[Cell]State, len(s.cells))
	for k, lo := range s.cells {
		occ[k.cell()] = Classify(lo, th)
	}
	return occ
}
