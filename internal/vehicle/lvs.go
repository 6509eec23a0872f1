package vehicle

import "fmt"

// LVSParams configures the low-voltage system load model.
type LVSParams struct {
	// Voltage is the LVS bus voltage in volts.
	Voltage float64 `yaml:"voltage"`
	// Current is the steady LVS current draw in amps.
	Current float64 `yaml:"current"`
}

// DefaultLVSParams returns the reference low-voltage load.
func DefaultLVSParams() LVSParams {
	return LVSParams{
		Voltage: 12.0,
		Current: 1.0,
	}
}

// LVS models the constant low-voltage load of telemetry, lights and driver
// electronics.
type LVS struct {
	params LVSParams
}

// NewLVS validates the parameters and builds an LVS.
func NewLVS(params LVSParams) (*LVS, error) {
	if params.Voltage < 0 || params.Current < 0 {
		return nil, fmt.Errorf("lvs voltage and current cannot be negative")
	}
	return &LVS{params: params}, nil
}

// Params returns the LVS configuration.
func (l *LVS) Params() LVSParams {
	return l.params
}

// ConsumedEnergy returns the energy in joules drawn over the tick.
func (l *LVS) ConsumedEnergy(c Conditions) float64 {
	return l.params.Voltage * l.params.Current * c.TickS
}
