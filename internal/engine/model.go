// Package engine runs the discrete-time simulation of a race: it expands a
// coarse speed schedule to per-tick speeds, walks the route tick by tick
// against the weather forecast and the vehicle component models, and records
// the full per-tick trajectory for result queries.
package engine

import (
	"fmt"
	"time"

	"github.com/solarracing/strategy-core/internal/meteo"
	"github.com/solarracing/strategy-core/internal/race"
	"github.com/solarracing/strategy-core/internal/route"
	"github.com/solarracing/strategy-core/internal/solar"
	"github.com/solarracing/strategy-core/internal/vehicle"
)

// ExhaustionPolicy selects what the tick loop does once the pack's raw
// stored energy goes negative.
type ExhaustionPolicy string

const (
	// ExhaustContinue keeps simulating with negative stored energy so the
	// full trajectory stays visible to the optimizer.
	ExhaustContinue ExhaustionPolicy = "continue"
	// ExhaustFreeze zeroes all motion after the tick on which the pack first
	// goes empty; the exhausting tick keeps the speed that emptied it.
	ExhaustFreeze ExhaustionPolicy = "freeze"
)

// Options are the engine knobs that are not part of the physical inputs.
type Options struct {
	// TickS is the tick duration in seconds.
	TickS int `yaml:"tick_s"`
	// StartOffsetS is the simulation start in seconds since race start.
	StartOffsetS int `yaml:"start_offset_s"`
	// Granularity is the number of optimization intervals per hour.
	Granularity int `yaml:"granularity"`
	// MaxAccelerationKmh caps the per-tick speed increase; 0 disables.
	MaxAccelerationKmh float64 `yaml:"max_acceleration_kmh"`
	// MaxDecelerationKmh caps the per-tick speed decrease; 0 disables.
	MaxDecelerationKmh float64 `yaml:"max_deceleration_kmh"`
	// OnExhaustion selects the tick-loop behaviour after pack exhaustion.
	OnExhaustion ExhaustionPolicy `yaml:"on_exhaustion"`
}

// DefaultOptions returns one-second ticks, hourly intervals and the
// continue-on-exhaustion policy.
func DefaultOptions() Options {
	return Options{
		TickS:              1,
		Granularity:        1,
		MaxDecelerationKmh: 6,
		OnExhaustion:       ExhaustContinue,
	}
}

// Recorder receives run telemetry. Implementations must be safe for
// concurrent use; parallel fitness evaluations share one recorder.
type Recorder interface {
	ObserveRun(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRun(time.Duration) {}

// Model holds the immutable inputs of a simulation: race calendar, route,
// forecast, vehicle and engine options. One Model is shared by every run of
// an optimization; runs differ only in the speed vector.
type Model struct {
	calendar *race.Calendar
	route    *route.Route
	forecast *meteo.Forecast
	vehicle  *vehicle.Vehicle
	calc     *solar.Calculator
	opts     Options
	recorder Recorder

	startUnix      int64
	tickCount      int
	blockSeconds   int
	reducedDriving []bool
	driving        []bool
	charging       []bool
}

// ModelOption customizes a Model beyond its physical inputs.
type ModelOption func(*Model)

// WithRecorder attaches a telemetry recorder to every run of the model.
func WithRecorder(r Recorder) ModelOption {
	return func(m *Model) { m.recorder = r }
}

// NewModel validates the inputs and builds a Model. The forecast must cover
// the whole simulation horizon.
func NewModel(cal *race.Calendar, rt *route.Route, fc *meteo.Forecast, veh *vehicle.Vehicle, opts Options, modelOpts ...ModelOption) (*Model, error) {
	if opts.TickS < 1 {
		return nil, fmt.Errorf("tick must be at least 1 second, got %d", opts.TickS)
	}
	if opts.StartOffsetS < 0 || opts.StartOffsetS >= cal.Duration() {
		return nil, fmt.Errorf("start offset %d outside race duration %d", opts.StartOffsetS, cal.Duration())
	}
	if opts.OnExhaustion == "" {
		opts.OnExhaustion = ExhaustContinue
	}
	if opts.OnExhaustion != ExhaustContinue && opts.OnExhaustion != ExhaustFreeze {
		return nil, fmt.Errorf("unsupported exhaustion policy %q", opts.OnExhaustion)
	}

	driving := cal.DrivingMask(opts.StartOffsetS)
	reduced, err := race.ReduceGranularity(driving, opts.Granularity)
	if err != nil {
		return nil, fmt.Errorf("reducing driving mask: %w", err)
	}
	if (3600/opts.Granularity)%opts.TickS != 0 {
		return nil, fmt.Errorf("tick of %d seconds does not divide the %d second optimization interval",
			opts.TickS, 3600/opts.Granularity)
	}

	horizonS := cal.Duration() - opts.StartOffsetS
	if horizonS < opts.TickS {
		return nil, fmt.Errorf("horizon of %d seconds is shorter than one %d second tick", horizonS, opts.TickS)
	}
	startUnix := cal.Start().Unix() + int64(opts.StartOffsetS)
	if err := fc.CheckCoverage(startUnix, startUnix+int64(horizonS)); err != nil {
		return nil, err
	}

	m := &Model{
		calendar:       cal,
		route:          rt,
		forecast:       fc,
		vehicle:        veh,
		calc:           solar.NewCalculator(),
		opts:           opts,
		recorder:       nopRecorder{},
		startUnix:      startUnix,
		tickCount:      horizonS / opts.TickS,
		blockSeconds:   3600 / opts.Granularity,
		reducedDriving: reduced,
		driving:        driving,
		charging:       cal.ChargingMask(opts.StartOffsetS),
	}
	for _, o := range modelOpts {
		o(m)
	}
	return m, nil
}

// Options returns the engine options the model was built with.
func (m *Model) Options() Options {
	return m.opts
}

// TickCount returns the number of ticks in the simulation horizon.
func (m *Model) TickCount() int {
	return m.tickCount
}

// StartUnix returns the unix time of the first tick.
func (m *Model) StartUnix() int64 {
	return m.startUnix
}

// RouteLengthM returns the total route length in metres.
func (m *Model) RouteLengthM() float64 {
	return m.route.LengthM()
}

// DrivingTimeDivisions returns the required speed-vector length: the number
// of granularity-reduced intervals in which driving is permitted.
func (m *Model) DrivingTimeDivisions() int {
	count := 0
	for _, permitted := range m.reducedDriving {
		if permitted {
			count++
		}
	}
	return count
}
