package vehicle

import (
	"fmt"
	"math"
)

// BatteryParams configures the lithium-ion pack model.
type BatteryParams struct {
	// CapacityAh is the pack charge capacity in amp-hours.
	CapacityAh float64 `yaml:"capacity_ah"`
	// MaxEnergyWh is the pack energy capacity in watt-hours.
	MaxEnergyWh float64 `yaml:"max_energy_wh"`
	// MaxVoltage is the pack voltage at full charge in volts.
	MaxVoltage float64 `yaml:"max_voltage"`
	// VoltageSlope is the voltage drop per amp-hour discharged.
	VoltageSlope float64 `yaml:"voltage_slope"`
	// InitialSOC is the state of charge at the start of the run, in [0, 1].
	InitialSOC float64 `yaml:"initial_soc"`
}

// DefaultBatteryParams returns the reference pack: 48.75 Ah, 4467 Wh.
func DefaultBatteryParams() BatteryParams {
	return BatteryParams{
		CapacityAh:   48.75,
		MaxEnergyWh:  4467,
		MaxVoltage:   117.6,
		VoltageSlope: 0.488,
		InitialSOC:   1.0,
	}
}

// Battery models the main pack with a linear voltage-vs-discharge curve.
// State of charge is recovered from stored energy by inverting the energy
// integral of that curve.
type Battery struct {
	params BatteryParams
}

// NewBattery validates the parameters and builds a Battery.
func NewBattery(params BatteryParams) (*Battery, error) {
	if params.CapacityAh <= 0 {
		return nil, fmt.Errorf("battery capacity must be positive, got %f Ah", params.CapacityAh)
	}
	if params.MaxEnergyWh <= 0 {
		return nil, fmt.Errorf("battery max energy must be positive, got %f Wh", params.MaxEnergyWh)
	}
	if params.MaxVoltage <= 0 || params.VoltageSlope <= 0 {
		return nil, fmt.Errorf("battery voltage curve must have positive max voltage and slope")
	}
	if params.InitialSOC < 0 || params.InitialSOC > 1 {
		return nil, fmt.Errorf("initial SOC %f outside [0, 1]", params.InitialSOC)
	}
	return &Battery{params: params}, nil
}

// Params returns the battery configuration.
func (b *Battery) Params() BatteryParams {
	return b.params
}

// InitialEnergyWh returns the stored energy at the start of the run.
func (b *Battery) InitialEnergyWh() float64 {
	return b.params.MaxEnergyWh * b.params.InitialSOC
}

// BatteryState holds the per-tick pack trajectory produced by UpdateArray.
type BatteryState struct {
	// SOC is the clamped state of charge per tick, in [0, 1].
	SOC []float64
	// RawSOC is the state of charge without clamping. Values below zero or
	// above one show how far the energy balance over- or under-shot the pack.
	RawSOC []float64
	// Voltage is the pack voltage per tick in volts.
	Voltage []float64
	// StoredWh is the clamped stored energy per tick in watt-hours.
	StoredWh []float64
}

// UpdateArray integrates per-tick energy deltas (watt-hours, positive into
// the pack) from the initial stored energy and returns the resulting pack
// trajectory.
func (b *Battery) UpdateArray(deltaEnergyWh []float64) *BatteryState {
	n := len(deltaEnergyWh)
	state := &BatteryState{
		SOC:      make([]float64, n),
		RawSOC:   make([]float64, n),
		Voltage:  make([]float64, n),
		StoredWh: make([]float64, n),
	}

	raw := b.InitialEnergyWh()
	for i, delta := range deltaEnergyWh {
		raw += delta
		state.RawSOC[i] = raw / b.params.MaxEnergyWh

		stored := raw
		if stored < 0 {
			stored = 0
		} else if stored > b.params.MaxEnergyWh {
			stored = b.params.MaxEnergyWh
		}
		state.StoredWh[i] = stored

		dc := b.dischargedCapacityAh(b.params.MaxEnergyWh - stored)
		state.SOC[i] = 1 - dc/b.params.CapacityAh
		state.Voltage[i] = b.params.MaxVoltage - b.params.VoltageSlope*dc
	}
	return state
}

// dischargedCapacityAh inverts the voltage curve's energy integral to find
// the amp-hours discharged for a given energy removed from a full pack.
func (b *Battery) dischargedCapacityAh(energyRemovedWh float64) float64 {
	if energyRemovedWh <= 0 {
		return 0
	}
	vMax := b.params.MaxVoltage
	slope := b.params.VoltageSlope
	discriminant := vMax*vMax - 4*slope*energyRemovedWh
	if discriminant < 0 {
		// The pack cannot physically hold this deficit; report it empty.
		return b.params.CapacityAh
	}
	return (vMax - math.Sqrt(discriminant)) / (2 * slope)
}
