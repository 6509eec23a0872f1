package engine

import (
	"errors"
	"fmt"

	"github.com/solarracing/strategy-core/pkg/utils"
)

// ErrResultsNotReady is returned when results are queried before a run has
// completed.
var ErrResultsNotReady = errors.New("results queried before the run completed")

// ErrUnknownResultKey is returned for a result key the engine does not
// record.
var ErrUnknownResultKey = errors.New("unknown result key")

// Result keys accepted by Results. Array keys yield []float64 (or []int for
// index and time-zone keys, []int64 for timestamps); scalar keys yield
// float64.
const (
	KeySpeedKmh             = "speed_kmh"
	KeyDistances            = "distances"
	KeyStateOfCharge        = "state_of_charge"
	KeyRawSOC               = "raw_soc"
	KeyVoltages             = "voltages"
	KeyDeltaEnergy          = "delta_energy"
	KeySolarIrradiances     = "solar_irradiances"
	KeyWindSpeeds           = "wind_speeds"
	KeyCloudCovers          = "cloud_covers"
	KeyGradients            = "gradients"
	KeyElevations           = "elevations"
	KeyClosestRouteIndices  = "closest_route_indices"
	KeyClosestMeteoIndices  = "closest_weather_indices"
	KeyTimeZones            = "time_zones"
	KeyTimestamps           = "timestamps"
	KeyMotorConsumedEnergy  = "motor_consumed_energy"
	KeyArrayProducedEnergy  = "array_produced_energy"
	KeyRegenProducedEnergy  = "regen_produced_energy"
	KeyLVSConsumedEnergy    = "lvs_consumed_energy"
	KeyConsumedEnergy       = "consumed_energy"
	KeyProducedEnergy       = "produced_energy"
	KeyTimeTaken            = "time_taken"
	KeyTimeInMotion         = "time_in_motion"
	KeyDistanceTravelled    = "distance_travelled"
	KeyRouteLength          = "route_length"
	KeyMaxRouteDistance     = "max_route_distance"
	KeyFinalSOC             = "final_soc"
)

// Results returns the recorded value for each requested key, in request
// order. It fails on any unknown key and when the simulation has not run.
func (s *Simulation) Results(keys ...string) ([]any, error) {
	if !s.completed {
		return nil, ErrResultsNotReady
	}
	out := make([]any, 0, len(keys))
	for _, key := range keys {
		value, err := s.result(key)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

func (s *Simulation) result(key string) (any, error) {
	switch key {
	case KeySpeedKmh:
		return s.speedsKmh, nil
	case KeyDistances:
		return s.distances, nil
	case KeyStateOfCharge:
		return s.soc, nil
	case KeyRawSOC:
		return s.rawSOC, nil
	case KeyVoltages:
		return s.voltages, nil
	case KeyDeltaEnergy:
		return s.deltaEnergyJ, nil
	case KeySolarIrradiances:
		return s.irradiances, nil
	case KeyWindSpeeds:
		return s.windSpeeds, nil
	case KeyCloudCovers:
		return s.cloudCovers, nil
	case KeyGradients:
		return s.gradients, nil
	case KeyElevations:
		return s.elevations, nil
	case KeyClosestRouteIndices:
		return s.routeIndices, nil
	case KeyClosestMeteoIndices:
		return s.weatherIndices, nil
	case KeyTimeZones:
		return s.timeZones, nil
	case KeyTimestamps:
		return s.timestamps, nil
	case KeyMotorConsumedEnergy:
		return s.motorConsumedJ, nil
	case KeyArrayProducedEnergy:
		return s.arrayProducedJ, nil
	case KeyRegenProducedEnergy:
		return s.regenProducedJ, nil
	case KeyLVSConsumedEnergy:
		return s.lvsConsumedJ, nil
	case KeyConsumedEnergy:
		return sumArrays(s.motorConsumedJ, s.lvsConsumedJ), nil
	case KeyProducedEnergy:
		return sumArrays(s.arrayProducedJ, s.regenProducedJ), nil
	case KeyTimeTaken:
		return s.timeTakenS, nil
	case KeyTimeInMotion:
		return s.timeInMotionS, nil
	case KeyDistanceTravelled:
		return s.distanceM, nil
	case KeyRouteLength:
		return s.model.route.LengthM(), nil
	case KeyMaxRouteDistance:
		return s.maxDistanceM, nil
	case KeyFinalSOC:
		return s.FinalSOC(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownResultKey, key)
	}
}

// TotalConsumedWh returns the total energy drawn over the run in watt-hours.
func (s *Simulation) TotalConsumedWh() float64 {
	return utils.JoulesToWh(utils.Sum(s.motorConsumedJ) + utils.Sum(s.lvsConsumedJ))
}

// TotalProducedWh returns the total energy produced over the run in
// watt-hours.
func (s *Simulation) TotalProducedWh() float64 {
	return utils.JoulesToWh(utils.Sum(s.arrayProducedJ) + utils.Sum(s.regenProducedJ))
}

func sumArrays(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}
