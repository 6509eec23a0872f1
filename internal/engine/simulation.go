package engine

import (
	"time"

	"github.com/solarracing/strategy-core/internal/meteo"
	"github.com/solarracing/strategy-core/internal/schedule"
	"github.com/solarracing/strategy-core/internal/vehicle"
	"github.com/solarracing/strategy-core/pkg/utils"
)

// Simulation is the completed trajectory of one run. All slices have one
// entry per tick. A Simulation is immutable after Run returns it.
type Simulation struct {
	completed bool
	model     *Model

	speedsKmh      []float64
	distances      []float64
	timestamps     []int64
	routeIndices   []int
	weatherIndices []int
	timeZones      []int
	gradients      []float64
	elevations     []float64
	irradiances    []float64
	windSpeeds     []float64
	cloudCovers    []float64

	motorConsumedJ []float64
	arrayProducedJ []float64
	regenProducedJ []float64
	lvsConsumedJ   []float64
	deltaEnergyJ   []float64

	soc      []float64
	rawSOC   []float64
	voltages []float64

	timeTakenS      float64
	timeInMotionS   float64
	distanceM       float64
	maxDistanceM    float64
	exhaustedAtTick int
}

// Run simulates the race for one speed vector and returns the completed
// trajectory. The vector must have exactly DrivingTimeDivisions entries.
// Run is side-effect-free with respect to the model and may be called from
// concurrent goroutines.
func (m *Model) Run(speedsKmh []float64) (*Simulation, error) {
	started := time.Now()

	expanded, err := schedule.ExpandSpeeds(speedsKmh, m.reducedDriving, m.blockSeconds, m.opts.TickS, m.tickCount)
	if err != nil {
		return nil, err
	}
	schedule.ApplyAcceleration(expanded, m.opts.MaxAccelerationKmh)
	schedule.ApplyDeceleration(expanded, m.opts.MaxDecelerationKmh)
	expanded = schedule.ConstrainSpeeds(m.route.SpeedLimitProfile(), expanded, m.opts.TickS)

	n := len(expanded)
	s := &Simulation{
		model:           m,
		speedsKmh:       expanded,
		distances:       make([]float64, n),
		timestamps:      make([]int64, n),
		routeIndices:    make([]int, n),
		weatherIndices:  make([]int, n),
		timeZones:       make([]int, n),
		gradients:       make([]float64, n),
		elevations:      make([]float64, n),
		irradiances:     make([]float64, n),
		windSpeeds:      make([]float64, n),
		cloudCovers:     make([]float64, n),
		motorConsumedJ:  make([]float64, n),
		arrayProducedJ:  make([]float64, n),
		regenProducedJ:  make([]float64, n),
		lvsConsumedJ:    make([]float64, n),
		deltaEnergyJ:    make([]float64, n),
		exhaustedAtTick: -1,
	}

	tickS := float64(m.opts.TickS)
	routeLen := m.route.LengthM()
	routeRes := m.route.Resolver()
	weatherRes := m.forecast.Resolver()

	deltaWh := make([]float64, n)
	rawWh := m.vehicle.Battery.InitialEnergyWh()
	frozen := false
	prevSpeedMs := 0.0
	distance := 0.0
	rawDistance := 0.0

	for t := 0; t < n; t++ {
		speedKmh := s.speedsKmh[t]
		if frozen {
			speedKmh = 0
			s.speedsKmh[t] = 0
		}
		speedMs := utils.KmhToMs(speedKmh)

		rawDistance += speedMs * tickS
		distance = rawDistance
		if distance > routeLen {
			distance = routeLen
		}

		ts := m.startUnix + int64(t*m.opts.TickS)
		ri := routeRes.Next(distance)
		wi := weatherRes.Next(ts)
		node := m.route.Node(ri)
		rec := m.forecast.Record(wi)

		ghi := rec.GHI
		if ghi <= 0 {
			ghi = m.calc.GHI(node.Latitude, node.Longitude, node.TimeZoneOffset, ts, node.ElevationM)
		}
		ghi = m.calc.CloudAttenuatedGHI(ghi, rec.CloudCover)
		wind := meteo.DirectionalWindSpeed(rec.WindSpeedMs, rec.WindDirectionDeg, m.route.Bearing(ri))

		cond := vehicle.Conditions{
			SpeedMs:     speedMs,
			PrevSpeedMs: prevSpeedMs,
			Gradient:    node.Gradient,
			WindSpeedMs: wind,
			GHI:         ghi,
			TickS:       tickS,
		}

		second := t * m.opts.TickS
		motorJ := m.vehicle.Motor.ConsumedEnergy(cond)
		regenJ := m.vehicle.Regen.ProducedEnergy(cond)
		var lvsJ, arrayJ float64
		if second < len(m.driving) && m.driving[second] {
			lvsJ = m.vehicle.LVS.ConsumedEnergy(cond)
		}
		if second < len(m.charging) && m.charging[second] {
			arrayJ = m.vehicle.Array.ProducedEnergy(cond)
		}

		deltaJ := arrayJ + regenJ - motorJ - lvsJ
		deltaWh[t] = utils.JoulesToWh(deltaJ)
		rawWh += deltaWh[t]
		if rawWh < 0 && s.exhaustedAtTick < 0 {
			s.exhaustedAtTick = t
			if m.opts.OnExhaustion == ExhaustFreeze {
				frozen = true
			}
		}

		s.distances[t] = distance
		s.timestamps[t] = ts
		s.routeIndices[t] = ri
		s.weatherIndices[t] = wi
		s.timeZones[t] = node.TimeZoneOffset
		s.gradients[t] = node.Gradient
		s.elevations[t] = node.ElevationM
		s.irradiances[t] = ghi
		s.windSpeeds[t] = wind
		s.cloudCovers[t] = rec.CloudCover
		s.motorConsumedJ[t] = motorJ
		s.arrayProducedJ[t] = arrayJ
		s.regenProducedJ[t] = regenJ
		s.lvsConsumedJ[t] = lvsJ
		s.deltaEnergyJ[t] = deltaJ

		if speedMs > 0 {
			s.timeInMotionS += tickS
		}
		prevSpeedMs = speedMs
	}

	state := m.vehicle.Battery.UpdateArray(deltaWh)
	s.soc = state.SOC
	s.rawSOC = state.RawSOC
	s.voltages = state.Voltage

	s.distanceM = distance
	s.maxDistanceM = rawDistance
	s.timeTakenS = float64(n) * tickS
	for t := 0; t < n; t++ {
		if s.distances[t] >= routeLen {
			s.timeTakenS = float64(t+1) * tickS
			break
		}
	}

	s.completed = true
	m.recorder.ObserveRun(time.Since(started))
	return s, nil
}

// WasSuccessful reports whether the pack never went below empty during the
// run.
func (s *Simulation) WasSuccessful() bool {
	for _, soc := range s.rawSOC {
		if soc < 0 {
			return false
		}
	}
	return true
}

// CompletedRoute reports whether the vehicle reached the end of the route
// within the horizon.
func (s *Simulation) CompletedRoute() bool {
	return s.completed && s.distanceM >= s.model.route.LengthM()
}

// TimeTakenS returns the time to complete the route in seconds, or the full
// horizon when the route was not completed.
func (s *Simulation) TimeTakenS() float64 {
	return s.timeTakenS
}

// DistanceTravelledM returns the distance travelled, clamped to the route
// length.
func (s *Simulation) DistanceTravelledM() float64 {
	return s.distanceM
}

// FinalSOC returns the clamped state of charge at the last tick.
func (s *Simulation) FinalSOC() float64 {
	if len(s.soc) == 0 {
		return 0
	}
	return s.soc[len(s.soc)-1]
}
