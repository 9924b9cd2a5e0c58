// Package mapper owns one occupancy mapping pipeline: floor alignment,
// height filtering, ray-cast log-odds fusion, and the query surface used by
// navigation and visualisation.
package mapper

import (
	"fmt"
	"sync"

	"github.com/banshee-data/occugrid/internal/config"
	"github.com/banshee-data/occugrid/internal/frontier"
	"github.com/banshee-data/occugrid/internal/geom"
	"github.com/banshee-data/occugrid/internal/grid"
	"github.com/banshee-data/occugrid/internal/monitoring"
)

// Params configure one Mapper instance.
type Params struct {
	Resolution      float64 // metres per cell
	OriginX         float64
	OriginY         float64
	Fusion          grid.FusionParams
	Thresholds      grid.Thresholds
	FloorZMax       float64 // |z| band for floor plane candidates
	HeightThreshold float64 // |z| band for projection into the map
}

// DefaultParams returns the standard mapping parameters (5cm cells, origin
// at the world origin).
func DefaultParams() Params {
	return Params{
		Resolution:      0.05,
		Fusion:          grid.DefaultFusionParams(),
		Thresholds:      grid.DefaultThresholds(),
		FloorZMax:       geom.DefaultFloorZMax,
		HeightThreshold: 1.0,
	}
}

// ParamsFromConfig builds Params from a validated tuning config.
func ParamsFromConfig(cfg *config.TuningConfig) Params {
	return Params{
		Resolution: cfg.GetResolution(),
		OriginX:    cfg.GetOriginX(),
		OriginY:    cfg.GetOriginY(),
		Fusion: grid.FusionParams{
			LoOcc:  cfg.GetLoOcc(),
			LoFree: cfg.GetLoFree(),
			LoMin:  cfg.GetLoMin(),
			LoMax:  cfg.GetLoMax(),
		},
		Thresholds: grid.Thresholds{
			Occupied: cfg.GetOccupiedThreshold(),
			Free:     cfg.GetFreeThreshold(),
		},
		FloorZMax:       cfg.GetFloorZMax(),
		HeightThreshold: cfg.GetHeightThreshold(),
	}
}

// UpdateResult summarises one fused scan.
type UpdateResult struct {
	PointsIn     int // points supplied by the caller
	SkippedCount int // points rejected for non-finite coordinates
	Hits         int // points surviving the height filter
	CellsTouched int // distinct cells this scan read or wrote
}

// Stats are cumulative mapper counters since construction.
type Stats struct {
	Updates       int64
	PointsIn      int64
	SkippedCount  int64
	ObservedCells int
}

// Mapper fuses streamed point clouds into a sparse occupancy grid. Each
// Mapper exclusively owns its log-odds store; updates and queries are
// serialised by an internal mutex so queries never observe a half-applied
// scan. Multiple mappers (per robot, per test) coexist without shared state.
type Mapper struct {
	mu      sync.Mutex
	params  Params
	indexer grid.Indexer
	store   *grid.Store

	lastScan []grid.Cell // distinct cells touched by the most recent scan

	updates      int64
	pointsIn     int64
	skippedTotal int64
}

// New constructs a Mapper. Misconfiguration fails fast here rather than at
// update time.
func New(p Params) (*Mapper, error) {
	if p.Resolution <= 0 {
		return nil, fmt.Errorf("mapper: resolution must be positive, got %f", p.Resolution)
	}
	if p.Fusion.LoMin >= p.Fusion.LoMax {
		return nil, fmt.Errorf("mapper: log-odds clamp bounds inverted (%f >= %f)", p.Fusion.LoMin, p.Fusion.LoMax)
	}
	return &Mapper{
		params:  p,
		indexer: grid.Indexer{Resolution: p.Resolution, OriginX: p.OriginX, OriginY: p.OriginY},
		store:   grid.NewStore(p.Fusion),
	}, nil
}

// Params returns the mapper's configuration.
func (m *Mapper) Params() Params { return m.params }

// Update fuses one 3D point cloud observed from the given sensor position.
// The cloud is floor-aligned, height-filtered, and each surviving point
// carves free space along the sensor-to-hit ray and occupied evidence at
// the hit cell. Non-finite points are skipped and counted, never stored.
// An empty cloud is a no-op, not an error. The caller's slice is never
// modified or retained.
//
// Update mutates the grid in place and must not run concurrently with
// itself or with queries; the mapper's lock enforces this.
func (m *Mapper) Update(cloud []geom.Point, sensorX, sensorY float64) UpdateResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := UpdateResult{PointsIn: len(cloud)}

	// Sanitize compacts in place; work on a copy so the caller's slice
	// stays untouched.
	buf := make([]geom.Point, len(cloud))
	copy(buf, cloud)
	clean, skipped := geom.Sanitize(buf)
	result.SkippedCount = skipped
	m.pointsIn += int64(result.PointsIn)
	m.skippedTotal += int64(skipped)
	if skipped > 0 {
		monitoring.Logf("mapper: skipped %d non-finite points this scan", skipped)
	}

	if len(clean) == 0 {
		return result
	}
	m.updates++

	aligned := geom.AlignFloor(clean, m.params.FloorZMax)
	hits := geom.FilterHeight(aligned, m.params.HeightThreshold)
	result.Hits = len(hits)

	sensorCell := m.indexer.CellAt(sensorX, sensorY)
	touched := make(map[grid.Cell]struct{})

	for _, h := range hits {
		hitCell := m.indexer.CellAt(h.X, h.Y)
		ray := grid.CastRay(sensorCell, hitCell)
		for {
			c, ok := ray.Next()
			if !ok {
				break
			}
			if c == hitCell {
				m.store.AddOccupied(c)
			} else {
				m.store.AddFree(c)
			}
			touched[c] = struct{}{}
		}
	}

	m.lastScan = m.lastScan[:0]
	for c := range touched {
		m.lastScan = append(m.lastScan, c)
	}
	result.CellsTouched = len(touched)

	monitoring.Tracef("update: points=%d hits=%d touched=%d cells=%d",
		result.PointsIn, result.Hits, result.CellsTouched, m.store.Len())
	return result
}

// Classified returns the ternary occupancy view of every observed cell,
// computed against a stable grid state.
func (m *Mapper) Classified() map[grid.Cell]grid.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Classified(m.params.Thresholds)
}

// BoundingBox returns the inclusive cell bounds of all observed cells.
func (m *Mapper) BoundingBox() grid.Box {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.BoundingBox()
}

// Export returns the dense classified view for rendering.
func (m *Mapper) Export() grid.DenseView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Export(m.params.Thresholds)
}

// LogOdds returns the raw stored log-odds for a cell (0 when unobserved).
func (m *Mapper) LogOdds(c grid.Cell) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.LogOdds(c)
}

// CellAt exposes the mapper's world-to-cell conversion.
func (m *Mapper) CellAt(x, y float64) grid.Cell {
	return m.indexer.CellAt(x, y)
}

// ActiveAreaFrontiers runs the naive active-area strategy over the cells
// touched by the most recent scan.
func (m *Mapper) ActiveAreaFrontiers() frontier.Set {
	m.mu.Lock()
	defer m.mu.Unlock()
	occ := m.store.Classified(m.params.Thresholds)
	return frontier.NaiveActiveArea{LastScan: m.lastScan}.Detect(occ)
}

// WavefrontFrontiers runs the expanding-wavefront strategy from the robot's
// current cell.
func (m *Mapper) WavefrontFrontiers(robot grid.Cell) frontier.Set {
	m.mu.Lock()
	defer m.mu.Unlock()
	occ := m.store.Classified(m.params.Thresholds)
	return frontier.ExpandingWavefront{Robot: robot}.Detect(occ)
}

// LastScanCells returns a copy of the cells touched by the most recent scan.
func (m *Mapper) LastScanCells() []grid.Cell {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]grid.Cell, len(m.lastScan))
	copy(out, m.lastScan)
	return out
}

// Stats returns cumulative counters.
func (m *Mapper) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Updates:       m.updates,
		PointsIn:      m.pointsIn,
		SkippedCount:  m.skippedTotal,
		ObservedCells: m.store.Len(),
	}
}
