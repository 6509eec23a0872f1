// Package race models the timing rules of a competition: the per-day windows
// in which the vehicle is allowed to drive and to array-charge, and the
// granularity-reduced intervals that the speed schedule is optimized over.
package race

import (
	"fmt"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// Type identifies the competition ruleset a calendar was built from.
type Type string

const (
	// ASC is a cross-country road race over a fixed route
	ASC Type = "ASC"
	// FSGP is a closed-track race measured in laps
	FSGP Type = "FSGP"
)

// Window is a daily time range in seconds since midnight, half-open [Start, End).
type Window struct {
	Start int
	End   int
}

// Contains reports whether the time of day t (seconds since midnight) is inside the window.
func (w Window) Contains(t int) bool {
	return w.Start <= t && t < w.End
}

// Day holds the driving and charging windows for one race day.
type Day struct {
	Driving  Window
	Charging Window
}

// Calendar is the immutable timing configuration of a race. It owns
// per-second boolean masks for the full race duration, built once at
// construction the way the engine expects to index them.
type Calendar struct {
	raceType Type
	start    time.Time
	days     []Day

	driving  []bool
	charging []bool
}

// New builds a Calendar from per-day windows. The race duration is
// len(days) whole days starting at midnight of the start date.
func New(raceType Type, start time.Time, days []Day) (*Calendar, error) {
	if raceType != ASC && raceType != FSGP {
		return nil, fmt.Errorf("unsupported race type %q", raceType)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("race must have at least one day")
	}
	for i, d := range days {
		for _, w := range []Window{d.Driving, d.Charging} {
			if w.Start < 0 || w.End > secondsPerDay || w.Start > w.End {
				return nil, fmt.Errorf("day %d: window [%d, %d) out of range", i, w.Start, w.End)
			}
		}
	}

	c := &Calendar{
		raceType: raceType,
		start:    start,
		days:     days,
	}
	c.driving = c.makeTimeBoolean(func(d Day) Window { return d.Driving })
	c.charging = c.makeTimeBoolean(func(d Day) Window { return d.Charging })
	return c, nil
}

// makeTimeBoolean expands the daily windows into one per-second mask
// covering the whole race duration.
func (c *Calendar) makeTimeBoolean(window func(Day) Window) []bool {
	mask := make([]bool, c.Duration())
	for tick := range mask {
		day := tick / secondsPerDay
		timeOfDay := tick % secondsPerDay
		mask[tick] = window(c.days[day]).Contains(timeOfDay)
	}
	return mask
}

// Type returns the competition ruleset of the calendar.
func (c *Calendar) Type() Type {
	return c.raceType
}

// Start returns the race start date.
func (c *Calendar) Start() time.Time {
	return c.start
}

// Duration returns the race duration in seconds.
func (c *Calendar) Duration() int {
	return len(c.days) * secondsPerDay
}

// Days returns the number of race days.
func (c *Calendar) Days() int {
	return len(c.days)
}

// DrivingMask returns the per-second driving-permitted mask from startOffset
// (seconds since race start) to the end of the race. The returned slice
// aliases the calendar's mask and must not be mutated.
func (c *Calendar) DrivingMask(startOffset int) []bool {
	return c.driving[startOffset:]
}

// ChargingMask returns the per-second charging-permitted mask from startOffset.
// The returned slice aliases the calendar's mask and must not be mutated.
func (c *Calendar) ChargingMask(startOffset int) []bool {
	return c.charging[startOffset:]
}

// ReduceGranularity agglomerates a per-second mask into coarse intervals of
// 3600/granularity seconds each. An interval is permitted only if every
// second inside it is permitted; a trailing partial block is treated the
// same way over its remaining seconds.
func ReduceGranularity(mask []bool, granularity int) ([]bool, error) {
	blockSize, err := blockSeconds(granularity)
	if err != nil {
		return nil, err
	}

	reduced := make([]bool, 0, (len(mask)+blockSize-1)/blockSize)
	for i := 0; i < len(mask); i += blockSize {
		j := i + blockSize
		if j > len(mask) {
			j = len(mask)
		}
		permitted := true
		for _, v := range mask[i:j] {
			if !v {
				permitted = false
				break
			}
		}
		reduced = append(reduced, permitted)
	}
	return reduced, nil
}

// DrivingTimeDivisions returns the number of granularity-reduced intervals in
// which driving is permitted, counted from startOffset. This is the required
// speed-vector length for an optimization over this calendar.
func (c *Calendar) DrivingTimeDivisions(startOffset, granularity int) (int, error) {
	reduced, err := ReduceGranularity(c.DrivingMask(startOffset), granularity)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, permitted := range reduced {
		if permitted {
			count++
		}
	}
	return count, nil
}

func blockSeconds(granularity int) (int, error) {
	if granularity < 1 {
		return 0, fmt.Errorf("granularity must be at least 1, got %d", granularity)
	}
	if secondsPerHour%granularity != 0 {
		return 0, fmt.Errorf("granularity %d must divide an hour evenly", granularity)
	}
	return secondsPerHour / granularity, nil
}

const secondsPerHour = 3600
