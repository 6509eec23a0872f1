// Package meteo holds the weather forecast consumed by a simulation run:
// time-ordered records of irradiance, wind, cloud cover and temperature,
// with monotonic index resolution by timestamp and the directional wind
// decomposition the motor model needs.
package meteo

import (
	"errors"
	"fmt"
	"math"
)

// ErrCoverageGap is returned when a forecast does not span the full time
// range a simulation run needs.
var ErrCoverageGap = errors.New("forecast does not cover the requested time range")

// Record is one forecast sample at a point in time.
type Record struct {
	// Timestamp is the sample time in unix seconds.
	Timestamp int64
	// GHI is the global horizontal irradiance in W/m^2, if the provider
	// supplies measured irradiance directly.
	GHI float64
	// WindSpeedMs is the wind speed in m/s.
	WindSpeedMs float64
	// WindDirectionDeg is the direction the wind blows from, in degrees
	// clockwise from north.
	WindDirectionDeg float64
	// CloudCover is the cloud cover fraction in [0, 1].
	CloudCover float64
	// TemperatureC is the air temperature in degrees Celsius.
	TemperatureC float64
}

// Forecast is an immutable time-ordered sequence of weather records.
type Forecast struct {
	records []Record
}

// New validates the record sequence and builds a Forecast. Timestamps must
// be strictly increasing and cloud cover must stay within [0, 1].
func New(records []Record) (*Forecast, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("forecast needs at least one record")
	}
	for i, rec := range records {
		if i > 0 && rec.Timestamp <= records[i-1].Timestamp {
			return nil, fmt.Errorf("record %d: timestamp %d does not increase", i, rec.Timestamp)
		}
		if rec.CloudCover < 0 || rec.CloudCover > 1 {
			return nil, fmt.Errorf("record %d: cloud cover %f outside [0, 1]", i, rec.CloudCover)
		}
		if rec.WindSpeedMs < 0 {
			return nil, fmt.Errorf("record %d: wind speed cannot be negative", i)
		}
	}

	held := make([]Record, len(records))
	copy(held, records)
	return &Forecast{records: held}, nil
}

// Len returns the number of records.
func (f *Forecast) Len() int {
	return len(f.records)
}

// Record returns the record at index i.
func (f *Forecast) Record(i int) Record {
	return f.records[i]
}

// Start returns the timestamp of the first record.
func (f *Forecast) Start() int64 {
	return f.records[0].Timestamp
}

// End returns the timestamp of the last record.
func (f *Forecast) End() int64 {
	return f.records[len(f.records)-1].Timestamp
}

// CheckCoverage verifies the forecast spans [start, end] in unix seconds.
func (f *Forecast) CheckCoverage(start, end int64) error {
	if f.Start() > start || f.End() < end {
		return fmt.Errorf("%w: have [%d, %d], need [%d, %d]",
			ErrCoverageGap, f.Start(), f.End(), start, end)
	}
	return nil
}

// IndexResolver maps a non-decreasing sequence of timestamps to the closest
// preceding forecast record. The moving pointer keeps the total cost of a
// full tick loop linear in the record count.
type IndexResolver struct {
	records []Record
	idx     int
}

// Resolver returns a fresh IndexResolver positioned at the first record.
// Each simulation run owns its own resolver.
func (f *Forecast) Resolver() *IndexResolver {
	return &IndexResolver{records: f.records}
}

// Next returns the record index for the given unix timestamp. Timestamps
// passed to successive calls must be non-decreasing.
func (ir *IndexResolver) Next(timestamp int64) int {
	for ir.idx < len(ir.records)-1 && timestamp >= ir.records[ir.idx+1].Timestamp {
		ir.idx++
	}
	return ir.idx
}

// DirectionalWindSpeed projects a wind vector onto the vehicle's direction of
// travel. A positive result is a headwind component, a negative result a
// tailwind.
func DirectionalWindSpeed(windSpeedMs, windDirectionDeg, vehicleBearingDeg float64) float64 {
	return windSpeedMs * math.Cos((windDirectionDeg-vehicleBearingDeg)*math.Pi/180)
}
