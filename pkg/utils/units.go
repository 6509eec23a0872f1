package utils

// Unit conversions used at the engine's boundaries: speeds are km/h on the
// outside and m/s inside energy calculations; energies are joules inside and
// watt-hours at the battery model boundary.

const (
	// SecondsPerHour converts between per-hour and per-second quantities
	SecondsPerHour = 3600.0
	// JoulesPerWattHour converts joules to watt-hours
	JoulesPerWattHour = 3600.0
)

// KmhToMs converts a speed in km/h to m/s
func KmhToMs(kmh float64) float64 {
	return kmh / 3.6
}

// MsToKmh converts a speed in m/s to km/h
func MsToKmh(ms float64) float64 {
	return ms * 3.6
}

// JoulesToWh converts an energy in joules to watt-hours
func JoulesToWh(joules float64) float64 {
	return joules / JoulesPerWattHour
}

// WhToJoules converts an energy in watt-hours to joules
func WhToJoules(wh float64) float64 {
	return wh * JoulesPerWattHour
}
