package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if got := cfg.GetResolution(); got != 0.05 {
		t.Errorf("GetResolution() = %f, want 0.05", got)
	}
	if got := cfg.GetOriginX(); got != 0 {
		t.Errorf("GetOriginX() = %f, want 0", got)
	}
	if got := cfg.GetLoOcc(); got != 0.85 {
		t.Errorf("GetLoOcc() = %f, want 0.85", got)
	}
	if got := cfg.GetLoFree(); got != -0.40 {
		t.Errorf("GetLoFree() = %f, want -0.40", got)
	}
	if got := cfg.GetLoMin(); got != -5.0 {
		t.Errorf("GetLoMin() = %f, want -5.0", got)
	}
	if got := cfg.GetLoMax(); got != 5.0 {
		t.Errorf("GetLoMax() = %f, want 5.0", got)
	}
	if got := cfg.GetOccupiedThreshold(); got != 0.65 {
		t.Errorf("GetOccupiedThreshold() = %f, want 0.65", got)
	}
	if got := cfg.GetFreeThreshold(); got != 0.35 {
		t.Errorf("GetFreeThreshold() = %f, want 0.35", got)
	}
	if got := cfg.GetFloorZMax(); got != 0.1 {
		t.Errorf("GetFloorZMax() = %f, want 0.1", got)
	}
	if got := cfg.GetHeightThreshold(); got != 1.0 {
		t.Errorf("GetHeightThreshold() = %f, want 1.0", got)
	}
}

func TestEmptyConfigValidates(t *testing.T) {
	if err := EmptyTuningConfig().Validate(); err != nil {
		t.Errorf("empty config should validate, got %v", err)
	}
}

func TestLoadTuningConfig(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{
		"resolution": 0.1,
		"origin_x": -2.5,
		"lo_occ": 0.9,
		"occupied_threshold": 0.7
	}`)

	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig failed: %v", err)
	}

	if got := cfg.GetResolution(); got != 0.1 {
		t.Errorf("GetResolution() = %f, want 0.1", got)
	}
	if got := cfg.GetOriginX(); got != -2.5 {
		t.Errorf("GetOriginX() = %f, want -2.5", got)
	}
	if got := cfg.GetLoOcc(); got != 0.9 {
		t.Errorf("GetLoOcc() = %f, want 0.9", got)
	}
	if got := cfg.GetOccupiedThreshold(); got != 0.7 {
		t.Errorf("GetOccupiedThreshold() = %f, want 0.7", got)
	}
	// Unset fields fall back to defaults.
	if got := cfg.GetFreeThreshold(); got != 0.35 {
		t.Errorf("GetFreeThreshold() = %f, want default 0.35", got)
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	path := writeConfig(t, "tuning.yaml", "resolution: 0.1")
	if _, err := LoadTuningConfig(path); err == nil {
		t.Error("Expected error for non-.json extension")
	}
}

func TestLoadTuningConfigMissingFile(t *testing.T) {
	if _, err := LoadTuningConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadTuningConfigBadJSON(t *testing.T) {
	path := writeConfig(t, "bad.json", "{not valid json")
	if _, err := LoadTuningConfig(path); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestLoadTuningConfigValidates(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{"resolution": -0.05}`)
	if _, err := LoadTuningConfig(path); err == nil {
		t.Error("Expected load to reject a non-positive resolution")
	}
}

func TestValidate(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		cfg     TuningConfig
		wantErr string
	}{
		{"valid full", TuningConfig{
			Resolution:        f(0.05),
			LoMin:             f(-5),
			LoMax:             f(5),
			OccupiedThreshold: f(0.65),
			FreeThreshold:     f(0.35),
			FloorZMax:         f(0.1),
			HeightThreshold:   f(1.0),
		}, ""},
		{"zero resolution", TuningConfig{Resolution: f(0)}, "resolution"},
		{"negative resolution", TuningConfig{Resolution: f(-0.05)}, "resolution"},
		{"inverted clamp", TuningConfig{LoMin: f(5), LoMax: f(-5)}, "lo_min"},
		{"equal clamp", TuningConfig{LoMin: f(1), LoMax: f(1)}, "lo_min"},
		{"occupied threshold too high", TuningConfig{OccupiedThreshold: f(1.0)}, "occupied_threshold"},
		{"free threshold too low", TuningConfig{FreeThreshold: f(0)}, "free_threshold"},
		{"crossed thresholds", TuningConfig{OccupiedThreshold: f(0.3), FreeThreshold: f(0.6)}, "free_threshold"},
		{"negative floor band", TuningConfig{FloorZMax: f(-0.1)}, "floor_z_max"},
		{"zero height band", TuningConfig{HeightThreshold: f(0)}, "height_threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
