package vehicle

import "fmt"

// ArrayParams configures the solar array production model.
type ArrayParams struct {
	// AreaM2 is the active cell area in m^2.
	AreaM2 float64 `yaml:"area_m2"`
	// Efficiency is the cell conversion efficiency in (0, 1].
	Efficiency float64 `yaml:"efficiency"`
}

// DefaultArrayParams returns the reference array parameters.
func DefaultArrayParams() ArrayParams {
	return ArrayParams{
		AreaM2:     4.0,
		Efficiency: 0.2,
	}
}

// Array models solar energy production as a flat panel under horizontal
// irradiance.
type Array struct {
	params ArrayParams
}

// NewArray validates the parameters and builds an Array.
func NewArray(params ArrayParams) (*Array, error) {
	if params.AreaM2 <= 0 {
		return nil, fmt.Errorf("array area must be positive, got %f m^2", params.AreaM2)
	}
	if params.Efficiency <= 0 || params.Efficiency > 1 {
		return nil, fmt.Errorf("array efficiency %f outside (0, 1]", params.Efficiency)
	}
	return &Array{params: params}, nil
}

// Params returns the array configuration.
func (a *Array) Params() ArrayParams {
	return a.params
}

// ProducedEnergy returns the energy in joules produced over the tick under
// the tick's global horizontal irradiance in W/m^2.
func (a *Array) ProducedEnergy(c Conditions) float64 {
	if c.GHI <= 0 {
		return 0
	}
	return c.GHI * a.params.Efficiency * a.params.AreaM2 * c.TickS
}
