package vehicle

import "fmt"

// RegenParams configures the regenerative braking model.
type RegenParams struct {
	// VehicleMassKg is the total vehicle mass including driver.
	VehicleMassKg float64 `yaml:"vehicle_mass_kg"`
	// Efficiency is the fraction of braking kinetic energy recovered.
	Efficiency float64 `yaml:"efficiency"`
	// MaxPowerW caps the recovered power; zero means uncapped.
	MaxPowerW float64 `yaml:"max_power_w"`
}

// DefaultRegenParams returns the reference regen parameters.
func DefaultRegenParams() RegenParams {
	return RegenParams{
		VehicleMassKg: 250,
		Efficiency:    0.5,
		MaxPowerW:     0,
	}
}

// Regen models regenerative braking: a fixed fraction of the kinetic energy
// shed during deceleration comes back into the pack.
type Regen struct {
	params RegenParams
}

// NewRegen validates the parameters and builds a Regen.
func NewRegen(params RegenParams) (*Regen, error) {
	if params.VehicleMassKg <= 0 {
		return nil, fmt.Errorf("vehicle mass must be positive, got %f kg", params.VehicleMassKg)
	}
	if params.Efficiency < 0 || params.Efficiency > 1 {
		return nil, fmt.Errorf("regen efficiency %f outside [0, 1]", params.Efficiency)
	}
	if params.MaxPowerW < 0 {
		return nil, fmt.Errorf("regen max power cannot be negative, got %f W", params.MaxPowerW)
	}
	return &Regen{params: params}, nil
}

// Params returns the regen configuration.
func (r *Regen) Params() RegenParams {
	return r.params
}

// ProducedEnergy returns the energy in joules recovered over a tick in which
// the speed dropped from PrevSpeedMs to SpeedMs. Acceleration and steady
// speed recover nothing.
func (r *Regen) ProducedEnergy(c Conditions) float64 {
	if c.SpeedMs >= c.PrevSpeedMs {
		return 0
	}
	deltaKE := 0.5 * r.params.VehicleMassKg * (c.PrevSpeedMs*c.PrevSpeedMs - c.SpeedMs*c.SpeedMs)
	recovered := deltaKE * r.params.Efficiency
	if r.params.MaxPowerW > 0 && c.TickS > 0 {
		limit := r.params.MaxPowerW * c.TickS
		if recovered > limit {
			recovered = limit
		}
	}
	return recovered
}
