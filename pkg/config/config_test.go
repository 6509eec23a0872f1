package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/solarracing/strategy-core/internal/race"
)

const minimalYAML = `
race:
  type: FSGP
  start_date: "2024-07-16"
  days:
    - driving: {start_s: 32400, end_s: 61200}
      charging: {start_s: 25200, end_s: 68400}
`

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Engine.TickS != 1 {
		t.Errorf("default tick = %d, want 1", cfg.Engine.TickS)
	}
	if cfg.Vehicle.Battery.Model != "basic" {
		t.Errorf("default battery model = %q, want basic", cfg.Vehicle.Battery.Model)
	}
	if cfg.Vehicle.Battery.Params.CapacityAh != 48.75 {
		t.Errorf("default battery capacity = %f, want 48.75", cfg.Vehicle.Battery.Params.CapacityAh)
	}
	if cfg.Optimizer.MaxSpeedKmh != 60 {
		t.Errorf("default max speed = %f, want 60", cfg.Optimizer.MaxSpeedKmh)
	}
	if cfg.Optimizer.PopulationSize == 0 {
		t.Errorf("optimizer defaults were not applied")
	}
}

func TestParseOverrides(t *testing.T) {
	doc := minimalYAML + `
engine:
  tick_s: 60
  granularity: 2
vehicle:
  motor:
    model: basic
    params:
      vehicle_mass_kg: 300
optimizer:
  population_size: 40
  objective: time
  max_speed_kmh: 75
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Engine.TickS != 60 || cfg.Engine.Granularity != 2 {
		t.Errorf("engine overrides not applied: %+v", cfg.Engine)
	}
	if cfg.Vehicle.Motor.Params.VehicleMassKg != 300 {
		t.Errorf("vehicle override not applied")
	}
	if cfg.Optimizer.PopulationSize != 40 || cfg.Optimizer.Objective != "time" {
		t.Errorf("optimizer overrides not applied: %+v", cfg.Optimizer)
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "unknown race type",
			doc: `
race:
  type: WSC
  start_date: "2024-07-16"
  days:
    - driving: {start_s: 0, end_s: 3600}
`,
		},
		{
			name: "no days",
			doc: `
race:
  type: FSGP
  start_date: "2024-07-16"
  days: []
`,
		},
		{
			name: "malformed start date",
			doc: `
race:
  type: FSGP
  start_date: "16/07/2024"
  days:
    - driving: {start_s: 0, end_s: 3600}
`,
		},
		{
			name: "granularity does not divide an hour",
			doc: minimalYAML + `
engine:
  granularity: 7
`,
		},
		{
			name: "unknown objective",
			doc: minimalYAML + `
optimizer:
  objective: laps
`,
		},
		{
			name: "inverted speed bounds",
			doc: minimalYAML + `
optimizer:
  min_speed_kmh: 70
  max_speed_kmh: 60
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Errorf("Parse() accepted invalid document")
			}
		})
	}
}

func TestCalendar(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	cal, err := cfg.Calendar()
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	if cal.Type() != race.FSGP {
		t.Errorf("calendar type = %q, want FSGP", cal.Type())
	}
	if cal.Days() != 1 {
		t.Errorf("calendar days = %d, want 1", cal.Days())
	}
	if !cal.DrivingMask(0)[32400] {
		t.Errorf("driving mask closed at window start")
	}
}

func TestLoadRoute(t *testing.T) {
	doc := `
nodes:
  - {lat: 39.05, lon: -95.67, distance_m: 0, elevation_m: 300, speed_limit_kmh: 60, tz_offset_s: -18000}
  - {lat: 39.06, lon: -95.67, distance_m: 100, elevation_m: 305, speed_limit_kmh: 60, tz_offset_s: -18000}
  - {lat: 39.07, lon: -95.67, distance_m: 200, elevation_m: 300, speed_limit_kmh: 40, tz_offset_s: -18000}
`
	path := writeTemp(t, "route.yaml", doc)
	rt, err := LoadRoute(path)
	if err != nil {
		t.Fatalf("LoadRoute() error = %v", err)
	}
	if rt.LengthM() != 200 {
		t.Errorf("route length = %f, want 200", rt.LengthM())
	}
	// gradients omitted from the file are derived from elevations
	if rt.Gradient(0) != 0.05 {
		t.Errorf("derived gradient = %f, want 0.05", rt.Gradient(0))
	}
}

func TestLoadForecast(t *testing.T) {
	doc := `
records:
  - {timestamp: 1721088000, ghi: 0, wind_speed_ms: 2, wind_direction_deg: 180, cloud_cover: 0.2}
  - {timestamp: 1721091600, ghi: 450, wind_speed_ms: 3, wind_direction_deg: 170, cloud_cover: 0.1}
`
	path := writeTemp(t, "forecast.yaml", doc)
	fc, err := LoadForecast(path)
	if err != nil {
		t.Fatalf("LoadForecast() error = %v", err)
	}
	if fc.Len() != 2 {
		t.Errorf("forecast length = %d, want 2", fc.Len())
	}
	if fc.Record(1).GHI != 450 {
		t.Errorf("record GHI = %f, want 450", fc.Record(1).GHI)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("Load() succeeded on a missing file")
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}
