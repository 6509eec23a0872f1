// Package solar computes clear-sky solar irradiance from orbital geometry:
// apparent solar time, sun position for an observer, and the direct, diffuse
// and global horizontal irradiance components, attenuated by cloud cover.
package solar

import (
	"math"
	"time"
)

// solarConstant is the extraterrestrial solar irradiance in W/m^2.
const solarConstant = 1353.0

// atmosphericScaleCoeff scales the altitude correction in the direct normal
// irradiance model.
const atmosphericScaleCoeff = 0.14

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// DayOfYear returns the ordinal day (1..366) of the given unix time in the
// local zone offset by tzOffsetSeconds from UTC.
func DayOfYear(unixTime int64, tzOffsetSeconds int) int {
	t := time.Unix(unixTime, 0).In(time.FixedZone("", tzOffsetSeconds))
	return t.YearDay()
}

// LocalTimeHours returns the local clock time as fractional hours since
// midnight for the given unix time and zone offset.
func LocalTimeHours(unixTime int64, tzOffsetSeconds int) float64 {
	t := time.Unix(unixTime, 0).In(time.FixedZone("", tzOffsetSeconds))
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

// EquationOfTime returns the equation-of-time correction in minutes for the
// given day of year.
func EquationOfTime(dayOfYear int) float64 {
	b := radians(360.0 / 364.0 * float64(dayOfYear-81))
	return 9.87*math.Sin(2*b) - 7.83*math.Cos(b) - 1.5*math.Sin(b)
}

// Declination returns the solar declination angle in degrees for the given
// day of year.
func Declination(dayOfYear int) float64 {
	return -23.45 * math.Cos(radians(360.0/365.0*float64(dayOfYear+10)))
}

// ApparentSolarTime corrects local clock time to apparent (sundial) time in
// fractional hours, using the longitude's offset from the local standard
// meridian and the equation of time.
func ApparentSolarTime(localTimeHours, longitudeDeg float64, tzOffsetSeconds int, dayOfYear int) float64 {
	lstm := 15.0 * float64(tzOffsetSeconds) / 3600.0
	correctionMinutes := EquationOfTime(dayOfYear) + 4.0*(longitudeDeg-lstm)
	return localTimeHours + correctionMinutes/60.0
}

// HourAngle returns the solar hour angle in degrees: zero at solar noon,
// negative in the morning, 15 degrees per hour.
func HourAngle(apparentSolarTime float64) float64 {
	return 15.0 * (apparentSolarTime - 12.0)
}

// Elevation returns the sun's elevation angle above the horizon in degrees.
func Elevation(latitudeDeg, declinationDeg, hourAngleDeg float64) float64 {
	lat := radians(latitudeDeg)
	dec := radians(declinationDeg)
	hra := radians(hourAngleDeg)
	return degrees(math.Asin(math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(hra)))
}

// Zenith returns the sun's zenith angle in degrees.
func Zenith(elevationDeg float64) float64 {
	return 90.0 - elevationDeg
}

// Azimuth returns the sun's azimuth angle in degrees clockwise from north.
func Azimuth(latitudeDeg, declinationDeg, hourAngleDeg float64) float64 {
	lat := radians(latitudeDeg)
	dec := radians(declinationDeg)
	hra := radians(hourAngleDeg)

	elevation := radians(Elevation(latitudeDeg, declinationDeg, hourAngleDeg))
	cosElev := math.Cos(elevation)
	if cosElev == 0 {
		return 0
	}
	arg := (math.Sin(dec)*math.Cos(lat) - math.Cos(dec)*math.Sin(lat)*math.Cos(hra)) / cosElev
	if arg > 1 {
		arg = 1
	} else if arg < -1 {
		arg = -1
	}
	azimuth := degrees(math.Acos(arg))
	if hourAngleDeg > 0 {
		azimuth = 360.0 - azimuth
	}
	return azimuth
}

// SunriseSunset returns sunrise and sunset as apparent solar time in
// fractional hours. ok is false when the sun never crosses the horizon on
// that day (polar day or polar night).
func SunriseSunset(latitudeDeg, declinationDeg float64) (sunrise, sunset float64, ok bool) {
	arg := -math.Tan(radians(latitudeDeg)) * math.Tan(radians(declinationDeg))
	if arg < -1 || arg > 1 {
		return 0, 0, false
	}
	halfDay := degrees(math.Acos(arg)) / 15.0
	return 12.0 - halfDay, 12.0 + halfDay, true
}

// DNI returns the clear-sky direct normal irradiance in W/m^2 for the given
// zenith angle and observer altitude. The sun below the horizon yields zero.
func DNI(zenithDeg, altitudeM float64) float64 {
	if zenithDeg >= 90 || zenithDeg <= -90 {
		return 0
	}
	airMass := 1.0 / math.Cos(radians(zenithDeg))
	altKm := altitudeM / 1000.0
	return solarConstant * ((1.0-atmosphericScaleCoeff*altKm)*math.Pow(0.7, math.Pow(airMass, 0.678)) +
		atmosphericScaleCoeff*altKm)
}

// DHI returns the diffuse horizontal irradiance, modelled as a fixed fraction
// of the direct normal component.
func DHI(dni float64) float64 {
	return 0.1 * dni
}

// Calculator computes irradiance for observers along a route. It holds no
// state and is safe for concurrent use.
type Calculator struct{}

// NewCalculator returns a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// GHI returns the global horizontal irradiance in W/m^2 at the given
// position and unix time, before cloud attenuation.
func (c *Calculator) GHI(latitudeDeg, longitudeDeg float64, tzOffsetSeconds int, unixTime int64, altitudeM float64) float64 {
	day := DayOfYear(unixTime, tzOffsetSeconds)
	local := LocalTimeHours(unixTime, tzOffsetSeconds)
	ast := ApparentSolarTime(local, longitudeDeg, tzOffsetSeconds, day)
	hra := HourAngle(ast)
	declination := Declination(day)
	elevation := Elevation(latitudeDeg, declination, hra)
	zenith := Zenith(elevation)

	dni := DNI(zenith, altitudeM)
	ghi := dni*math.Cos(radians(zenith)) + DHI(dni)
	if ghi < 0 {
		return 0
	}
	return ghi
}

// CloudAttenuatedGHI applies a linear cloud-cover attenuation to a clear-sky
// GHI value. Cover is a fraction in [0, 1].
func (c *Calculator) CloudAttenuatedGHI(ghi, cloudCover float64) float64 {
	return ghi * (1.0 - cloudCover)
}
