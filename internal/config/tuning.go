// Package config loads and validates mapper tuning parameters. The JSON
// schema matches the /api/map/params endpoint so the same file drives both
// startup configuration and runtime updates.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TuningConfig represents the root configuration for mapping parameters.
// All fields are optional; the Get* accessors supply defaults for fields
// omitted from the JSON, so partial configs are safe.
type TuningConfig struct {
	// Grid geometry
	Resolution *float64 `json:"resolution,omitempty"` // metres per cell
	OriginX    *float64 `json:"origin_x,omitempty"`   // world X of cell (0,0)
	OriginY    *float64 `json:"origin_y,omitempty"`   // world Y of cell (0,0)

	// Log-odds fusion
	LoOcc  *float64 `json:"lo_occ,omitempty"`  // occupied increment
	LoFree *float64 `json:"lo_free,omitempty"` // free decrement
	LoMin  *float64 `json:"lo_min,omitempty"`  // lower clamp
	LoMax  *float64 `json:"lo_max,omitempty"`  // upper clamp

	// Classification thresholds
	OccupiedThreshold *float64 `json:"occupied_threshold,omitempty"`
	FreeThreshold     *float64 `json:"free_threshold,omitempty"`

	// Point-cloud preprocessing
	FloorZMax       *float64 `json:"floor_z_max,omitempty"`      // |z| band for floor candidates
	HeightThreshold *float64 `json:"height_threshold,omitempty"` // |z| band for map projection
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The path must
// have a .json extension and the file must be under 1MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration values. Misconfiguration is fatal at load
// time: a mapper must never be constructed with an unusable resolution or
// inverted clamp/threshold ranges.
func (c *TuningConfig) Validate() error {
	if c.Resolution != nil && *c.Resolution <= 0 {
		return fmt.Errorf("resolution must be positive, got %f", *c.Resolution)
	}
	if c.LoMin != nil && c.LoMax != nil && *c.LoMin >= *c.LoMax {
		return fmt.Errorf("lo_min (%f) must be below lo_max (%f)", *c.LoMin, *c.LoMax)
	}
	if c.OccupiedThreshold != nil {
		if *c.OccupiedThreshold <= 0 || *c.OccupiedThreshold >= 1 {
			return fmt.Errorf("occupied_threshold must be in (0,1), got %f", *c.OccupiedThreshold)
		}
	}
	if c.FreeThreshold != nil {
		if *c.FreeThreshold <= 0 || *c.FreeThreshold >= 1 {
			return fmt.Errorf("free_threshold must be in (0,1), got %f", *c.FreeThreshold)
		}
	}
	if c.OccupiedThreshold != nil && c.FreeThreshold != nil && *c.FreeThreshold >= *c.OccupiedThreshold {
		return fmt.Errorf("free_threshold (%f) must be below occupied_threshold (%f)",
			*c.FreeThreshold, *c.OccupiedThreshold)
	}
	if c.FloorZMax != nil && *c.FloorZMax <= 0 {
		return fmt.Errorf("floor_z_max must be positive, got %f", *c.FloorZMax)
	}
	if c.HeightThreshold != nil && *c.HeightThreshold <= 0 {
		return fmt.Errorf("height_threshold must be positive, got %f", *c.HeightThreshold)
	}
	return nil
}

// GetResolution returns the grid resolution in metres or the default.
func (c *TuningConfig) GetResolution() float64 {
	if c.Resolution == nil {
		return 0.05
	}
	return *c.Resolution
}

// GetOriginX returns the world X of cell (0,0) or the default.
func (c *TuningConfig) GetOriginX() float64 {
	if c.OriginX == nil {
		return 0.0
	}
	return *c.OriginX
}

// GetOriginY returns the world Y of cell (0,0) or the default.
func (c *TuningConfig) GetOriginY() float64 {
	if c.OriginY == nil {
		return 0.0
	}
	return *c.OriginY
}

// GetLoOcc returns the occupied log-odds increment or the default.
func (c *TuningConfig) GetLoOcc() float64 {
	if c.LoOcc == nil {
		return 0.85
	}
	return *c.LoOcc
}

// GetLoFree returns the free log-odds decrement or the default.
func (c *TuningConfig) GetLoFree() float64 {
	if c.LoFree == nil {
		return -0.40
	}
	return *c.LoFree
}

// GetLoMin returns the lower clamp bound or the default.
func (c *TuningConfig) GetLoMin() float64 {
	if c.LoMin == nil {
		return -5.0
	}
	return *c.LoMin
}

// GetLoMax returns the upper clamp bound or the default.
func (c *TuningConfig) GetLoMax() float64 {
	if c.LoMax == nil {
		return 5.0
	}
	return *c.LoMax
}

// GetOccupiedThreshold returns the occupied probability cut or the default.
func (c *TuningConfig) GetOccupiedThreshold() float64 {
	if c.OccupiedThreshold == nil {
		return 0.65
	}
	return *c.OccupiedThreshold
}

// GetFreeThreshold returns the free probability cut or the default.
func (c *TuningConfig) GetFreeThreshold() float64 {
	if c.FreeThreshold == nil {
		return 0.35
	}
	return *c.FreeThreshold
}

// GetFloorZMax returns the floor candidate band or the default.
func (c *TuningConfig) GetFloorZMax() float64 {
	if c.FloorZMax == nil {
		return 0.1
	}
	return *c.FloorZMax
}

// GetHeightThreshold returns the projection height band or the default.
func (c *TuningConfig) GetHeightThreshold() float64 {
	if c.HeightThreshold == nil {
		return 1.0
	}
	return *c.HeightThreshold
}
