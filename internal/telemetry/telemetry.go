// Package telemetry exposes Prometheus metrics for simulation runs and
// optimizer progress.
package telemetry

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the strategy-core metric set. It satisfies the recorder
// interfaces of both the engine and the optimizer and is safe for concurrent
// use.
type Collector struct {
	runs        prometheus.Counter
	runDuration prometheus.Histogram
	generation  prometheus.Gauge
	bestFitness prometheus.Gauge
	evaluations prometheus.Counter
}

// NewCollector builds the metric set and registers it against reg. Passing
// prometheus.DefaultRegisterer wires the metrics into the default exposition;
// tests pass their own registry.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulation_runs_total",
			Help: "Completed simulation runs.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simulation_run_duration_seconds",
			Help:    "Wall-clock duration of a simulation run.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "optimizer_generation",
			Help: "Current optimizer generation.",
		}),
		bestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "optimizer_best_fitness",
			Help: "Best fitness found so far.",
		}),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "optimizer_evaluations_total",
			Help: "Fitness evaluations performed.",
		}),
	}

	collectors := []prometheus.Collector{
		c.runs, c.runDuration, c.generation, c.bestFitness, c.evaluations,
	}
	for _, collector := range collectors {
		if err := register(reg, collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// register tolerates a collector that is already registered, so repeated
// construction against the default registerer does not fail.
func register(reg prometheus.Registerer, collector prometheus.Collector) error {
	err := reg.Register(collector)
	if err == nil {
		return nil
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}

// ObserveRun records one completed simulation run.
func (c *Collector) ObserveRun(d time.Duration) {
	c.runs.Inc()
	c.runDuration.Observe(d.Seconds())
}

// ObserveGeneration records optimizer progress after a generation's
// evaluation.
func (c *Collector) ObserveGeneration(generation int, bestFitness float64) {
	c.generation.Set(float64(generation))
	c.bestFitness.Set(bestFitness)
}

// AddEvaluations counts fitness evaluations.
func (c *Collector) AddEvaluations(n int) {
	c.evaluations.Add(float64(n))
}
