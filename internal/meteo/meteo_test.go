package meteo

import (
	"errors"
	"math"
	"testing"
)

func testRecords() []Record {
	return []Record{
		{Timestamp: 1000, GHI: 400, WindSpeedMs: 2, WindDirectionDeg: 90, CloudCover: 0.1, TemperatureC: 24},
		{Timestamp: 2000, GHI: 500, WindSpeedMs: 3, WindDirectionDeg: 180, CloudCover: 0.2, TemperatureC: 26},
		{Timestamp: 3000, GHI: 450, WindSpeedMs: 1, WindDirectionDeg: 270, CloudCover: 0.0, TemperatureC: 27},
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]Record) []Record
		wantErr bool
	}{
		{
			name:   "valid series",
			mutate: func(r []Record) []Record { return r },
		},
		{
			name:    "empty series",
			mutate:  func(r []Record) []Record { return nil },
			wantErr: true,
		},
		{
			name: "duplicate timestamp",
			mutate: func(r []Record) []Record {
				r[1].Timestamp = r[0].Timestamp
				return r
			},
			wantErr: true,
		},
		{
			name: "cloud cover above one",
			mutate: func(r []Record) []Record {
				r[2].CloudCover = 1.5
				return r
			},
			wantErr: true,
		},
		{
			name: "negative wind speed",
			mutate: func(r []Record) []Record {
				r[0].WindSpeedMs = -1
				return r
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.mutate(testRecords()))
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckCoverage(t *testing.T) {
	f, err := New(testRecords())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := f.CheckCoverage(1000, 3000); err != nil {
		t.Errorf("full coverage rejected: %v", err)
	}
	if err := f.CheckCoverage(500, 2000); !errors.Is(err, ErrCoverageGap) {
		t.Errorf("early start: error = %v, want ErrCoverageGap", err)
	}
	if err := f.CheckCoverage(1500, 4000); !errors.Is(err, ErrCoverageGap) {
		t.Errorf("late end: error = %v, want ErrCoverageGap", err)
	}
}

func TestResolverMonotonic(t *testing.T) {
	f, err := New(testRecords())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res := f.Resolver()
	queries := []struct {
		ts   int64
		want int
	}{
		{1000, 0},
		{1999, 0},
		{2000, 1},
		{2500, 1},
		{3000, 2},
		{9999, 2},
	}
	for _, q := range queries {
		if got := res.Next(q.ts); got != q.want {
			t.Errorf("Next(%d) = %d, want %d", q.ts, got, q.want)
		}
	}
}

func TestDirectionalWindSpeed(t *testing.T) {
	tests := []struct {
		name    string
		speed   float64
		windDir float64
		bearing float64
		want    float64
	}{
		{"pure headwind", 5, 90, 90, 5},
		{"pure tailwind", 5, 270, 90, -5},
		{"crosswind contributes nothing", 5, 0, 90, 0},
		{"oblique wind", 10, 60, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DirectionalWindSpeed(tt.speed, tt.windDir, tt.bearing)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DirectionalWindSpeed() = %f, want %f", got, tt.want)
			}
		})
	}
}
