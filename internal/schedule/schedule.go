// Package schedule turns a coarse per-interval speed vector into the
// per-tick speed profile the engine simulates: expansion onto permitted
// driving intervals, acceleration and deceleration smoothing, and legal
// speed-limit constraint along the route.
package schedule

import (
	"errors"
	"fmt"
	"math"
)

// ErrSpeedVectorLength is returned when the speed vector length does not
// match the number of permitted driving intervals.
var ErrSpeedVectorLength = errors.New("speed vector length does not match driving intervals")

// ExpandSpeeds maps a coarse speed vector onto the granularity-reduced
// driving mask and expands it to one speed per tick. Each permitted interval
// consumes one vector entry; forbidden intervals hold 0 km/h. The result has
// one entry per tick over len(reducedDriving)*blockSeconds/tickS ticks,
// truncated to durationTicks when that is shorter.
func ExpandSpeeds(speedsKmh []float64, reducedDriving []bool, blockSeconds, tickS, durationTicks int) ([]float64, error) {
	if tickS < 1 {
		return nil, fmt.Errorf("tick must be at least 1 second, got %d", tickS)
	}
	if blockSeconds < tickS {
		return nil, fmt.Errorf("interval of %d seconds is shorter than tick of %d seconds", blockSeconds, tickS)
	}

	permitted := 0
	for _, ok := range reducedDriving {
		if ok {
			permitted++
		}
	}
	if len(speedsKmh) != permitted {
		return nil, fmt.Errorf("%w: vector has %d entries, calendar permits %d intervals",
			ErrSpeedVectorLength, len(speedsKmh), permitted)
	}

	ticksPerBlock := blockSeconds / tickS
	expanded := make([]float64, 0, len(reducedDriving)*ticksPerBlock)
	next := 0
	for _, ok := range reducedDriving {
		speed := 0.0
		if ok {
			speed = speedsKmh[next]
			next++
		}
		for t := 0; t < ticksPerBlock; t++ {
			expanded = append(expanded, speed)
		}
	}
	if durationTicks >= 0 && len(expanded) > durationTicks {
		expanded = expanded[:durationTicks]
	}
	return expanded, nil
}

// ApplyAcceleration caps per-tick speed increases in place. maxDeltaKmh is
// the largest allowed increase between consecutive ticks; the first entry is
// capped against a standing start. A non-positive maxDeltaKmh disables the
// pass.
func ApplyAcceleration(speedsKmh []float64, maxDeltaKmh float64) []float64 {
	if maxDeltaKmh <= 0 {
		return speedsKmh
	}
	for i := range speedsKmh {
		if i == 0 {
			if speedsKmh[0] > maxDeltaKmh {
				speedsKmh[0] = maxDeltaKmh
			}
		} else if speedsKmh[i]-speedsKmh[i-1] > maxDeltaKmh {
			speedsKmh[i] = speedsKmh[i-1] + maxDeltaKmh
		}
	}
	return speedsKmh
}

// ApplyDeceleration caps per-tick speed decreases in place by walking
// backwards from the second-to-last entry: a tick may not exceed the next
// tick's speed by more than maxDeltaKmh. The first and last entries are left
// as targets. A non-positive maxDeltaKmh disables the pass.
func ApplyDeceleration(speedsKmh []float64, maxDeltaKmh float64) []float64 {
	if maxDeltaKmh <= 0 {
		return speedsKmh
	}
	for i := len(speedsKmh) - 2; i > 0; i-- {
		if speedsKmh[i]-speedsKmh[i+1] > maxDeltaKmh {
			speedsKmh[i] = speedsKmh[i+1] + maxDeltaKmh
		}
	}
	return speedsKmh
}

// ConstrainSpeeds clamps each tick's speed to the legal limit at the
// vehicle's position when the tick starts. limitProfileKmh is the speed
// limit sampled at every whole metre of the route; positions past the end of
// the profile use the last limit. Position advances by the constrained
// speed, so an earlier clamp shifts the limits every later tick sees.
func ConstrainSpeeds(limitProfileKmh, speedsKmh []float64, tickS int) []float64 {
	constrained := make([]float64, len(speedsKmh))
	distanceM := 0.0
	for i, speed := range speedsKmh {
		idx := int(math.Floor(distanceM))
		if idx > len(limitProfileKmh)-1 {
			idx = len(limitProfileKmh) - 1
		}
		limit := limitProfileKmh[idx]
		if speed > limit {
			speed = limit
		}
		constrained[i] = speed
		distanceM += speed / 3.6 * float64(tickS)
	}
	return constrained
}
