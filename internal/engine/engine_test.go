package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/solarracing/strategy-core/internal/meteo"
	"github.com/solarracing/strategy-core/internal/race"
	"github.com/solarracing/strategy-core/internal/route"
	"github.com/solarracing/strategy-core/internal/schedule"
	"github.com/solarracing/strategy-core/internal/vehicle"
)

func testCalendar(t *testing.T) *race.Calendar {
	t.Helper()
	cal, err := race.New(race.FSGP, time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC), []race.Day{{
		Driving:  race.Window{Start: 9 * 3600, End: 17 * 3600},
		Charging: race.Window{Start: 7 * 3600, End: 19 * 3600},
	}})
	if err != nil {
		t.Fatalf("race.New() error = %v", err)
	}
	return cal
}

func testRoute(t *testing.T, lengthM float64) *route.Route {
	t.Helper()
	nodes := []route.Node{
		{Latitude: 39.05, Longitude: -95.67, CumulativeDistanceM: 0, ElevationM: 300, SpeedLimitKmh: 60},
		{Latitude: 39.06, Longitude: -95.67, CumulativeDistanceM: lengthM / 2, ElevationM: 301, SpeedLimitKmh: 60},
		{Latitude: 39.07, Longitude: -95.67, CumulativeDistanceM: lengthM, ElevationM: 300, SpeedLimitKmh: 60},
	}
	r, err := route.New(nodes)
	if err != nil {
		t.Fatalf("route.New() error = %v", err)
	}
	return r
}

func testForecast(t *testing.T, start int64) *meteo.Forecast {
	t.Helper()
	records := make([]meteo.Record, 0, 26)
	for h := 0; h <= 25; h++ {
		records = append(records, meteo.Record{
			Timestamp:   start + int64(h-1)*3600,
			GHI:         500,
			WindSpeedMs: 0,
			CloudCover:  0,
		})
	}
	fc, err := meteo.New(records)
	if err != nil {
		t.Fatalf("meteo.New() error = %v", err)
	}
	return fc
}

func testVehicle(t *testing.T) *vehicle.Vehicle {
	t.Helper()
	veh, err := vehicle.New(vehicle.DefaultSpec())
	if err != nil {
		t.Fatalf("vehicle.New() error = %v", err)
	}
	return veh
}

func testModel(t *testing.T, lengthM float64, opts Options) *Model {
	t.Helper()
	cal := testCalendar(t)
	m, err := NewModel(cal, testRoute(t, lengthM), testForecast(t, cal.Start().Unix()), testVehicle(t), opts)
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	return m
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.TickS = 60
	return opts
}

func TestNewModelValidation(t *testing.T) {
	cal := testCalendar(t)

	t.Run("coverage gap", func(t *testing.T) {
		short, err := meteo.New([]meteo.Record{
			{Timestamp: cal.Start().Unix()},
			{Timestamp: cal.Start().Unix() + 3600},
		})
		if err != nil {
			t.Fatalf("meteo.New() error = %v", err)
		}
		_, err = NewModel(cal, testRoute(t, 1000), short, testVehicle(t), testOptions())
		if !errors.Is(err, meteo.ErrCoverageGap) {
			t.Errorf("error = %v, want ErrCoverageGap", err)
		}
	})

	t.Run("bad tick", func(t *testing.T) {
		opts := testOptions()
		opts.TickS = 0
		_, err := NewModel(cal, testRoute(t, 1000), testForecast(t, cal.Start().Unix()), testVehicle(t), opts)
		if err == nil {
			t.Errorf("zero tick accepted")
		}
	})

	t.Run("tick does not divide the interval", func(t *testing.T) {
		opts := testOptions()
		opts.TickS = 7
		_, err := NewModel(cal, testRoute(t, 1000), testForecast(t, cal.Start().Unix()), testVehicle(t), opts)
		if err == nil {
			t.Errorf("non-dividing tick accepted")
		}
	})

	t.Run("horizon shorter than one tick", func(t *testing.T) {
		opts := testOptions()
		opts.StartOffsetS = cal.Duration() - 1
		_, err := NewModel(cal, testRoute(t, 1000), testForecast(t, cal.Start().Unix()), testVehicle(t), opts)
		if err == nil {
			t.Errorf("zero-tick horizon accepted")
		}
	})

	t.Run("bad exhaustion policy", func(t *testing.T) {
		opts := testOptions()
		opts.OnExhaustion = ExhaustionPolicy("abort")
		_, err := NewModel(cal, testRoute(t, 1000), testForecast(t, cal.Start().Unix()), testVehicle(t), opts)
		if err == nil {
			t.Errorf("unknown exhaustion policy accepted")
		}
	})
}

func TestRunSpeedVectorLength(t *testing.T) {
	m := testModel(t, 100000, testOptions())
	if got := m.DrivingTimeDivisions(); got != 8 {
		t.Fatalf("DrivingTimeDivisions() = %d, want 8", got)
	}
	_, err := m.Run([]float64{30, 30})
	if !errors.Is(err, schedule.ErrSpeedVectorLength) {
		t.Errorf("error = %v, want ErrSpeedVectorLength", err)
	}
}

func TestRunAllZeroVector(t *testing.T) {
	m := testModel(t, 100000, testOptions())
	speeds := make([]float64, m.DrivingTimeDivisions())

	sim, err := m.Run(speeds)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sim.DistanceTravelledM() != 0 {
		t.Errorf("distance = %f, want 0", sim.DistanceTravelledM())
	}
	results, err := sim.Results(KeyMotorConsumedEnergy)
	if err != nil {
		t.Fatalf("Results() error = %v", err)
	}
	for i, e := range results[0].([]float64) {
		if e != 0 {
			t.Fatalf("tick %d: motor energy = %f, want 0", i, e)
		}
	}
	if sim.TimeTakenS() != float64(m.TickCount()*m.Options().TickS) {
		t.Errorf("incomplete run should take the full horizon")
	}
}

func TestRunMonotonicDistance(t *testing.T) {
	m := testModel(t, 100000, testOptions())
	speeds := make([]float64, m.DrivingTimeDivisions())
	for i := range speeds {
		speeds[i] = 30
	}

	sim, err := m.Run(speeds)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	results, err := sim.Results(KeyDistances, KeyClosestRouteIndices, KeyClosestMeteoIndices)
	if err != nil {
		t.Fatalf("Results() error = %v", err)
	}
	distances := results[0].([]float64)
	routeIdx := results[1].([]int)
	meteoIdx := results[2].([]int)
	for i := 1; i < len(distances); i++ {
		if distances[i] < distances[i-1] {
			t.Fatalf("distance decreased at tick %d", i)
		}
		if routeIdx[i] < routeIdx[i-1] {
			t.Fatalf("route index decreased at tick %d", i)
		}
		if meteoIdx[i] < meteoIdx[i-1] {
			t.Fatalf("weather index decreased at tick %d", i)
		}
	}
	if sim.DistanceTravelledM() <= 0 {
		t.Errorf("vehicle never moved")
	}
}

func TestRunCompletesShortRoute(t *testing.T) {
	m := testModel(t, 1000, testOptions())
	speeds := make([]float64, m.DrivingTimeDivisions())
	for i := range speeds {
		speeds[i] = 30
	}

	sim, err := m.Run(speeds)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !sim.CompletedRoute() {
		t.Fatalf("route not completed: distance = %f", sim.DistanceTravelledM())
	}
	if sim.TimeTakenS() >= float64(m.TickCount()*m.Options().TickS) {
		t.Errorf("time taken = %f, want less than the horizon", sim.TimeTakenS())
	}
	if sim.DistanceTravelledM() != 1000 {
		t.Errorf("distance = %f, want clamped to route length 1000", sim.DistanceTravelledM())
	}
}

func exhaustingVehicle(t *testing.T) *vehicle.Vehicle {
	t.Helper()
	spec := vehicle.DefaultSpec()
	// an absurd low-voltage draw empties the pack within the first driving hour
	spec.LVS.Params = vehicle.LVSParams{Voltage: 120, Current: 500}
	veh, err := vehicle.New(spec)
	if err != nil {
		t.Fatalf("vehicle.New() error = %v", err)
	}
	return veh
}

func TestExhaustionPolicies(t *testing.T) {
	cal := testCalendar(t)
	fc := testForecast(t, cal.Start().Unix())

	runWith := func(policy ExhaustionPolicy) *Simulation {
		opts := testOptions()
		opts.OnExhaustion = policy
		m, err := NewModel(cal, testRoute(t, 1e7), fc, exhaustingVehicle(t), opts)
		if err != nil {
			t.Fatalf("NewModel() error = %v", err)
		}
		speeds := make([]float64, m.DrivingTimeDivisions())
		for i := range speeds {
			speeds[i] = 40
		}
		sim, err := m.Run(speeds)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return sim
	}

	cont := runWith(ExhaustContinue)
	frozen := runWith(ExhaustFreeze)

	if cont.WasSuccessful() || frozen.WasSuccessful() {
		t.Fatalf("exhausted runs reported successful")
	}
	if cont.DistanceTravelledM() <= frozen.DistanceTravelledM() {
		t.Errorf("continue distance %f should exceed freeze distance %f",
			cont.DistanceTravelledM(), frozen.DistanceTravelledM())
	}

	results, err := frozen.Results(KeySpeedKmh, KeyRawSOC)
	if err != nil {
		t.Fatalf("Results() error = %v", err)
	}
	speeds := results[0].([]float64)
	rawSOC := results[1].([]float64)
	exhausted := -1
	for i, soc := range rawSOC {
		if soc < 0 {
			exhausted = i
			break
		}
	}
	if exhausted < 0 {
		t.Fatalf("raw SOC never went negative")
	}
	// the tick that empties the pack keeps the speed that emptied it; motion
	// stops from the next tick
	if speeds[exhausted] == 0 {
		t.Errorf("exhausting tick %d lost its speed", exhausted)
	}
	for i := exhausted + 1; i < len(speeds); i++ {
		if speeds[i] != 0 {
			t.Fatalf("tick %d after exhaustion still moving at %f km/h", i, speeds[i])
		}
	}
}

func TestResultsErrors(t *testing.T) {
	var uninitialized Simulation
	if _, err := uninitialized.Results(KeyDistances); !errors.Is(err, ErrResultsNotReady) {
		t.Errorf("premature query error = %v, want ErrResultsNotReady", err)
	}

	m := testModel(t, 1000, testOptions())
	sim, err := m.Run(make([]float64, m.DrivingTimeDivisions()))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := sim.Results(KeyDistances, "acceleration"); !errors.Is(err, ErrUnknownResultKey) {
		t.Errorf("unknown key error = %v, want ErrUnknownResultKey", err)
	}
}

func TestResultsScalars(t *testing.T) {
	m := testModel(t, 1000, testOptions())
	speeds := make([]float64, m.DrivingTimeDivisions())
	for i := range speeds {
		speeds[i] = 30
	}
	sim, err := m.Run(speeds)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	results, err := sim.Results(KeyRouteLength, KeyDistanceTravelled, KeyTimeTaken, KeyFinalSOC, KeyTimeInMotion)
	if err != nil {
		t.Fatalf("Results() error = %v", err)
	}
	if results[0].(float64) != 1000 {
		t.Errorf("route length = %v, want 1000", results[0])
	}
	if results[1].(float64) != sim.DistanceTravelledM() {
		t.Errorf("distance key disagrees with accessor")
	}
	if results[3].(float64) < 0 || results[3].(float64) > 1 {
		t.Errorf("final SOC = %v outside [0, 1]", results[3])
	}
	if results[4].(float64) <= 0 {
		t.Errorf("time in motion = %v, want > 0", results[4])
	}
}
