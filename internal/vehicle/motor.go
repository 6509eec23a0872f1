package vehicle

import (
	"fmt"
	"math"
)

const gravity = 9.81

// MotorParams configures the drivetrain consumption model.
type MotorParams struct {
	// VehicleMassKg is the total vehicle mass including driver.
	VehicleMassKg float64 `yaml:"vehicle_mass_kg"`
	// RollingResistance is the tire rolling resistance coefficient.
	RollingResistance float64 `yaml:"rolling_resistance"`
	// TireRadiusM is the drive tire radius in metres.
	TireRadiusM float64 `yaml:"tire_radius_m"`
	// AirDensity is the ambient air density in kg/m^3.
	AirDensity float64 `yaml:"air_density"`
	// FrontalAreaM2 is the vehicle frontal area in m^2.
	FrontalAreaM2 float64 `yaml:"frontal_area_m2"`
	// DragCoefficient is the aerodynamic drag coefficient.
	DragCoefficient float64 `yaml:"drag_coefficient"`
	// MotorEfficiency is the electromechanical efficiency of the motor.
	MotorEfficiency float64 `yaml:"motor_efficiency"`
	// ControllerEfficiency is the efficiency of the motor controller.
	ControllerEfficiency float64 `yaml:"controller_efficiency"`
}

// DefaultMotorParams returns the reference drivetrain parameters.
func DefaultMotorParams() MotorParams {
	return MotorParams{
		VehicleMassKg:        250,
		RollingResistance:    0.0055,
		TireRadiusM:          0.2032,
		AirDensity:           1.225,
		FrontalAreaM2:        0.952,
		DragCoefficient:      0.223,
		MotorEfficiency:      0.9,
		ControllerEfficiency: 0.98,
	}
}

// Motor models drivetrain energy consumption from a steady-state force
// balance: rolling friction, the gravity component along the road incline
// and aerodynamic drag against the air-relative speed.
type Motor struct {
	params MotorParams
}

// NewMotor validates the parameters and builds a Motor.
func NewMotor(params MotorParams) (*Motor, error) {
	if params.VehicleMassKg <= 0 {
		return nil, fmt.Errorf("vehicle mass must be positive, got %f kg", params.VehicleMassKg)
	}
	if params.TireRadiusM <= 0 {
		return nil, fmt.Errorf("tire radius must be positive, got %f m", params.TireRadiusM)
	}
	if params.MotorEfficiency <= 0 || params.MotorEfficiency > 1 {
		return nil, fmt.Errorf("motor efficiency %f outside (0, 1]", params.MotorEfficiency)
	}
	if params.ControllerEfficiency <= 0 || params.ControllerEfficiency > 1 {
		return nil, fmt.Errorf("controller efficiency %f outside (0, 1]", params.ControllerEfficiency)
	}
	return &Motor{params: params}, nil
}

// Params returns the motor configuration.
func (m *Motor) Params() MotorParams {
	return m.params
}

// ConsumedEnergy returns the electrical energy in joules the drivetrain
// draws to hold the tick's speed over the tick duration on the given
// gradient, with WindSpeedMs being the headwind component (negative for
// tailwind).
func (m *Motor) ConsumedEnergy(c Conditions) float64 {
	if c.SpeedMs <= 0 {
		return 0
	}
	p := m.params

	incline := math.Atan(c.Gradient)
	friction := p.VehicleMassKg * gravity * p.RollingResistance * math.Cos(incline)
	slope := p.VehicleMassKg * gravity * math.Sin(incline)

	airSpeed := c.SpeedMs + c.WindSpeedMs
	drag := 0.5 * p.AirDensity * airSpeed * math.Abs(airSpeed) * p.DragCoefficient * p.FrontalAreaM2

	angularSpeed := c.SpeedMs / p.TireRadiusM
	outputPower := (friction + slope + drag) * angularSpeed * p.TireRadiusM
	inputPower := outputPower / (p.MotorEfficiency * p.ControllerEfficiency)
	if inputPower < 0 {
		// A steep enough descent drives the motor; the drivetrain model
		// draws nothing and the regen model books the recovery.
		inputPower = 0
	}
	return inputPower * c.TickS
}
