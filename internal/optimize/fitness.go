package optimize

import (
	"fmt"

	"github.com/solarracing/strategy-core/internal/engine"
)

// ObjectiveKind names what the fitness adapter rewards.
type ObjectiveKind string

const (
	// ObjectiveDistance maximizes the distance travelled over the horizon.
	ObjectiveDistance ObjectiveKind = "distance"
	// ObjectiveTime maximizes negated completion time.
	ObjectiveTime ObjectiveKind = "time"
	// ObjectiveDistanceAndTime maximizes the composite
	// (horizon/time)·(distance/routeLength), zero for runs that exhausted
	// the pack.
	ObjectiveDistanceAndTime ObjectiveKind = "distance_and_time"
)

// Fitness adapts a simulation model into an objective the optimizer can
// maximize. The adapter owns all sign conventions; the optimizer never
// minimizes.
func Fitness(model *engine.Model, kind ObjectiveKind) (Objective, error) {
	switch kind {
	case ObjectiveDistance, ObjectiveTime, ObjectiveDistanceAndTime:
	default:
		return nil, fmt.Errorf("unsupported objective %q", kind)
	}

	horizonS := float64(model.TickCount() * model.Options().TickS)
	return func(vector []float64) (float64, error) {
		sim, err := model.Run(vector)
		if err != nil {
			return 0, err
		}
		switch kind {
		case ObjectiveDistance:
			return sim.DistanceTravelledM(), nil
		case ObjectiveTime:
			return -sim.TimeTakenS(), nil
		default:
			if !sim.WasSuccessful() {
				return 0, nil
			}
			return (horizonS / sim.TimeTakenS()) * (sim.DistanceTravelledM() / model.RouteLengthM()), nil
		}
	}, nil
}

// ScheduleBounds builds the uniform speed bounds for a model's speed vector.
func ScheduleBounds(model *engine.Model, minSpeedKmh, maxSpeedKmh float64) (Bounds, error) {
	return UniformBounds(minSpeedKmh, maxSpeedKmh, model.DrivingTimeDivisions())
}
