// Package vehicle models the powertrain of a solar race vehicle as
// independent energy components: a battery pack, a drivetrain motor, a solar
// array, a low-voltage system and regenerative braking. Each component maps
// physical conditions to energy flows; the engine owns the tick loop that
// drives them.
package vehicle

import (
	"errors"
	"fmt"
)

// ErrUnknownModel is returned when a component spec names a model tag this
// build does not provide.
var ErrUnknownModel = errors.New("unknown component model")

// Conditions captures the physical state a component model sees during one
// tick. Components read the fields they care about and ignore the rest.
type Conditions struct {
	// SpeedMs is the vehicle speed over the tick in m/s.
	SpeedMs float64
	// PrevSpeedMs is the speed over the previous tick in m/s.
	PrevSpeedMs float64
	// Gradient is the road gradient (rise over run) at the vehicle position.
	Gradient float64
	// WindSpeedMs is the headwind component in m/s, negative for tailwind.
	WindSpeedMs float64
	// GHI is the global horizontal irradiance in W/m^2 after cloud attenuation.
	GHI float64
	// TickS is the tick duration in seconds.
	TickS float64
}

// Producer is a component that feeds energy into the pack.
type Producer interface {
	ProducedEnergy(Conditions) float64
}

// Consumer is a component that draws energy from the pack.
type Consumer interface {
	ConsumedEnergy(Conditions) float64
}

// Storage is a component that turns the per-tick energy deltas of a run into
// a pack state trajectory.
type Storage interface {
	UpdateArray(deltaEnergyWh []float64) *BatteryState
}

// ModelBasic is the reference first-order model for every component.
const ModelBasic = "basic"

// Spec selects and configures the component models of a vehicle. The Model
// tag picks the implementation; the params of other models are ignored.
type Spec struct {
	Battery struct {
		Model  string        `yaml:"model"`
		Params BatteryParams `yaml:"params"`
	} `yaml:"battery"`
	Motor struct {
		Model  string      `yaml:"model"`
		Params MotorParams `yaml:"params"`
	} `yaml:"motor"`
	Array struct {
		Model  string      `yaml:"model"`
		Params ArrayParams `yaml:"params"`
	} `yaml:"array"`
	LVS struct {
		Model  string    `yaml:"model"`
		Params LVSParams `yaml:"params"`
	} `yaml:"lvs"`
	Regen struct {
		Model  string      `yaml:"model"`
		Params RegenParams `yaml:"params"`
	} `yaml:"regen"`
}

// DefaultSpec returns a Spec selecting the basic model for every component
// with the reference parameters.
func DefaultSpec() Spec {
	var s Spec
	s.Battery.Model = ModelBasic
	s.Battery.Params = DefaultBatteryParams()
	s.Motor.Model = ModelBasic
	s.Motor.Params = DefaultMotorParams()
	s.Array.Model = ModelBasic
	s.Array.Params = DefaultArrayParams()
	s.LVS.Model = ModelBasic
	s.LVS.Params = DefaultLVSParams()
	s.Regen.Model = ModelBasic
	s.Regen.Params = DefaultRegenParams()
	return s
}

// Vehicle bundles the component models a simulation run draws energy flows
// from. All components are immutable and safe for concurrent use.
type Vehicle struct {
	Battery *Battery
	Motor   *Motor
	Array   *Array
	LVS     *LVS
	Regen   *Regen
}

// New builds a Vehicle from a Spec, dispatching each component on its model
// tag.
func New(spec Spec) (*Vehicle, error) {
	v := &Vehicle{}
	var err error

	switch spec.Battery.Model {
	case ModelBasic:
		v.Battery, err = NewBattery(spec.Battery.Params)
	default:
		err = fmt.Errorf("battery: %w: %q", ErrUnknownModel, spec.Battery.Model)
	}
	if err != nil {
		return nil, err
	}

	switch spec.Motor.Model {
	case ModelBasic:
		v.Motor, err = NewMotor(spec.Motor.Params)
	default:
		err = fmt.Errorf("motor: %w: %q", ErrUnknownModel, spec.Motor.Model)
	}
	if err != nil {
		return nil, err
	}

	switch spec.Array.Model {
	case ModelBasic:
		v.Array, err = NewArray(spec.Array.Params)
	default:
		err = fmt.Errorf("array: %w: %q", ErrUnknownModel, spec.Array.Model)
	}
	if err != nil {
		return nil, err
	}

	switch spec.LVS.Model {
	case ModelBasic:
		v.LVS, err = NewLVS(spec.LVS.Params)
	default:
		err = fmt.Errorf("lvs: %w: %q", ErrUnknownModel, spec.LVS.Model)
	}
	if err != nil {
		return nil, err
	}

	switch spec.Regen.Model {
	case ModelBasic:
		v.Regen, err = NewRegen(spec.Regen.Params)
	default:
		err = fmt.Errorf("regen: %w: %q", ErrUnknownModel, spec.Regen.Model)
	}
	if err != nil {
		return nil, err
	}

	return v, nil
}
