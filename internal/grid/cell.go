// Package grid implements the sparse 2D occupancy grid: cell indexing,
// integer ray casting, log-odds fusion, and ternary classification.
//
// A grid store is exclusively owned by one mapper instance; nothing in this
// package is a process-wide singleton. Callers that share a store across
// goroutines must serialise access externally.
package grid

import "math"

// Cell is a discrete grid index. The domain is unbounded (signed 32-bit per
// axis, which at 5cm resolution covers ±10⁵ km).
type Cell struct {
	X, Y int32
}

// packedKey is the map key for the sparse store: the two cell coordinates
// concatenated into one 64-bit word for compact, cache-friendly lookup.
type packedKey uint64

func (c Cell) key() packedKey {
	return packedKey(uint32(c.X))<<32 | packedKey(uint32(c.Y))
}

func (k packedKey) cell() Cell {
	return Cell{X: int32(uint32(k >> 32)), Y: int32(uint32(k))}
}

// Indexer converts continuous world coordinates to cell indices for a fixed
// resolution and origin. Construction is validated by config; Resolution is
// assumed positive here.
type Indexer struct {
	Resolution float64 // metres per cell
	OriginX    float64 // world X of cell (0,0)'s lower-left corner
	OriginY    float64 // world Y of cell (0,0)'s lower-left corner
}

// CellAt maps a world coordinate to its cell. Cells tile the plane in
// half-open intervals [origin+i·res, origin+(i+1)·res): the conversion
// floors toward negative infinity, so a coordinate exactly on a cell edge
// belongs to the higher cell and negative coordinates index negatively
// (-0.01m at 0.05m resolution is cell -1, not cell 0).
func (ix Indexer) CellAt(x, y float64) Cell {
	return Cell{
		X: int32(math.Floor((x - ix.OriginX) / ix.Resolution)),
		Y: int32(math.Floor((y - ix.OriginY) / ix.Resolution)),
	}
}

// WorldAt returns the world coordinate of the cell's lower-left corner.
// Inverse of CellAt up to cell resolution.
func (ix Indexer) WorldAt(c Cell) (x, y float64) {
	return ix.OriginX + float64(c.X)*ix.Resolution, ix.OriginY + float64(c.Y)*ix.Resolution
}
