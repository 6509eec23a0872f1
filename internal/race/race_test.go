package race

import (
	"testing"
	"time"
)

func testStart() time.Time {
	return time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		raceType Type
		days     []Day
		wantErr  bool
	}{
		{
			name:     "valid single day",
			raceType: FSGP,
			days: []Day{{
				Driving:  Window{Start: 9 * 3600, End: 17 * 3600},
				Charging: Window{Start: 7 * 3600, End: 19 * 3600},
			}},
		},
		{
			name:     "unknown race type",
			raceType: Type("WSC"),
			days:     []Day{{}},
			wantErr:  true,
		},
		{
			name:     "no days",
			raceType: ASC,
			days:     nil,
			wantErr:  true,
		},
		{
			name:     "window past midnight",
			raceType: ASC,
			days: []Day{{
				Driving: Window{Start: 9 * 3600, End: 25 * 3600},
			}},
			wantErr: true,
		},
		{
			name:     "inverted window",
			raceType: ASC,
			days: []Day{{
				Driving: Window{Start: 17 * 3600, End: 9 * 3600},
			}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.raceType, testStart(), tt.days)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMasks(t *testing.T) {
	cal, err := New(FSGP, testStart(), []Day{{
		Driving:  Window{Start: 9 * 3600, End: 17 * 3600},
		Charging: Window{Start: 7 * 3600, End: 19 * 3600},
	}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	driving := cal.DrivingMask(0)
	if len(driving) != 86400 {
		t.Fatalf("driving mask length = %d, want 86400", len(driving))
	}
	checks := []struct {
		second int
		want   bool
	}{
		{8*3600 + 1800, false},
		{9 * 3600, true},
		{16*3600 + 3599, true},
		{17 * 3600, false},
	}
	for _, c := range checks {
		if driving[c.second] != c.want {
			t.Errorf("driving[%d] = %v, want %v", c.second, driving[c.second], c.want)
		}
	}

	charging := cal.ChargingMask(0)
	if !charging[8*3600] || charging[19*3600] {
		t.Errorf("charging window edges wrong")
	}
}

func TestMaskOffset(t *testing.T) {
	cal, err := New(FSGP, testStart(), []Day{{
		Driving: Window{Start: 9 * 3600, End: 17 * 3600},
	}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	offset := 9 * 3600
	mask := cal.DrivingMask(offset)
	if !mask[0] {
		t.Errorf("mask[0] at offset %d = false, want true", offset)
	}
	if len(mask) != 86400-offset {
		t.Errorf("mask length = %d, want %d", len(mask), 86400-offset)
	}
}

func TestReduceGranularity(t *testing.T) {
	tests := []struct {
		name        string
		mask        []bool
		granularity int
		want        []bool
		wantErr     bool
	}{
		{
			name:        "one false poisons the block",
			mask:        repeat(true, 3600, func(m []bool) { m[100] = false }),
			granularity: 1,
			want:        []bool{false},
		},
		{
			name:        "fully permitted hour",
			mask:        repeat(true, 3600, nil),
			granularity: 1,
			want:        []bool{true},
		},
		{
			name:        "trailing partial block",
			mask:        repeat(true, 5400, nil),
			granularity: 1,
			want:        []bool{true, true},
		},
		{
			name:        "granularity must divide an hour",
			mask:        repeat(true, 3600, nil),
			granularity: 7,
			wantErr:     true,
		},
		{
			name:        "granularity below one",
			mask:        repeat(true, 3600, nil),
			granularity: 0,
			wantErr:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReduceGranularity(tt.mask, tt.granularity)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReduceGranularity() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("reduced length = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("reduced[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func repeat(v bool, n int, mutate func([]bool)) []bool {
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = v
	}
	if mutate != nil {
		mutate(mask)
	}
	return mask
}

func TestDrivingTimeDivisions(t *testing.T) {
	cal, err := New(FSGP, testStart(), []Day{{
		Driving: Window{Start: 10 * 3600, End: 13 * 3600},
	}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := cal.DrivingTimeDivisions(0, 1)
	if err != nil {
		t.Fatalf("DrivingTimeDivisions() error = %v", err)
	}
	if got != 3 {
		t.Errorf("divisions = %d, want 3", got)
	}

	// doubling granularity doubles the permitted interval count
	got, err = cal.DrivingTimeDivisions(0, 2)
	if err != nil {
		t.Fatalf("DrivingTimeDivisions() error = %v", err)
	}
	if got != 6 {
		t.Errorf("divisions at granularity 2 = %d, want 6", got)
	}
}

func TestZeroDrivingWindows(t *testing.T) {
	cal, err := New(FSGP, testStart(), []Day{{
		Charging: Window{Start: 7 * 3600, End: 19 * 3600},
	}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got, err := cal.DrivingTimeDivisions(0, 1)
	if err != nil {
		t.Fatalf("DrivingTimeDivisions() error = %v", err)
	}
	if got != 0 {
		t.Errorf("divisions = %d, want 0", got)
	}
}
