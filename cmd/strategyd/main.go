// strategyd runs the race strategy core from the command line: a single
// simulation of a fixed speed schedule, or a genetic-algorithm search for
// the best schedule.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solarracing/strategy-core/internal/engine"
	"github.com/solarracing/strategy-core/internal/optimize"
	"github.com/solarracing/strategy-core/internal/telemetry"
	"github.com/solarracing/strategy-core/internal/vehicle"
	"github.com/solarracing/strategy-core/pkg/config"
	"github.com/solarracing/strategy-core/pkg/logger"
)

func main() {
	var (
		configPath   = flag.String("config", "config.yaml", "path to the configuration file")
		routePath    = flag.String("route", "route.yaml", "path to the route data file")
		forecastPath = flag.String("forecast", "forecast.yaml", "path to the weather forecast file")
		mode         = flag.String("mode", "optimize", "simulate or optimize")
		speedKmh     = flag.Float64("speed", 40, "constant speed for simulate mode, km/h")
		seed         = flag.Int64("seed", 0, "optimizer RNG seed override (0 keeps the configured seed)")
		logLevel     = flag.String("log-level", "info", "debug, info, warn or error")
		metricsAddr  = flag.String("metrics-addr", "", "listen address for Prometheus metrics (empty disables)")
	)
	flag.Parse()

	logger.SetDefault(logger.New(*logLevel, os.Stderr))

	if err := run(*configPath, *routePath, *forecastPath, *mode, *speedKmh, *seed, *metricsAddr); err != nil {
		logger.Error("strategyd failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, routePath, forecastPath, mode string, speedKmh float64, seed int64, metricsAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cal, err := cfg.Calendar()
	if err != nil {
		return err
	}
	rt, err := config.LoadRoute(routePath)
	if err != nil {
		return err
	}
	fc, err := config.LoadForecast(forecastPath)
	if err != nil {
		return err
	}
	veh, err := vehicle.New(cfg.Vehicle)
	if err != nil {
		return err
	}

	var modelOpts []engine.ModelOption
	var collector *telemetry.Collector
	if metricsAddr != "" {
		collector, err = telemetry.NewCollector(prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		modelOpts = append(modelOpts, engine.WithRecorder(collector))
		go serveMetrics(metricsAddr)
	}

	model, err := engine.NewModel(cal, rt, fc, veh, cfg.Engine, modelOpts...)
	if err != nil {
		return err
	}
	logger.Info("model ready",
		"race_type", cfg.Race.Type,
		"route_length_m", model.RouteLengthM(),
		"ticks", model.TickCount(),
		"speed_vector_length", model.DrivingTimeDivisions())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "simulate":
		return simulate(model, speedKmh)
	case "optimize":
		return optimizeSchedule(ctx, model, cfg, seed, collector)
	default:
		return fmt.Errorf("unsupported mode %q", mode)
	}
}

func simulate(model *engine.Model, speedKmh float64) error {
	speeds := make([]float64, model.DrivingTimeDivisions())
	for i := range speeds {
		speeds[i] = speedKmh
	}
	sim, err := model.Run(speeds)
	if err != nil {
		return err
	}
	logSummary(sim)
	return nil
}

func optimizeSchedule(ctx context.Context, model *engine.Model, cfg *config.Config, seed int64, collector *telemetry.Collector) error {
	bounds, err := optimize.ScheduleBounds(model, cfg.Optimizer.MinSpeedKmh, cfg.Optimizer.MaxSpeedKmh)
	if err != nil {
		return err
	}
	objective, err := optimize.Fitness(model, optimize.ObjectiveKind(cfg.Optimizer.Objective))
	if err != nil {
		return err
	}

	gaCfg := cfg.Optimizer.Config
	if seed != 0 {
		gaCfg.Seed = seed
	}
	var opts []optimize.Option
	if collector != nil {
		opts = append(opts, optimize.WithRecorder(collector))
	}
	opt, err := optimize.New(gaCfg, bounds, objective, opts...)
	if err != nil {
		return err
	}

	best, err := opt.Evolve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("optimization finished",
		"generations", opt.Generation()+1,
		"best_fitness", best.Fitness,
		"best_index", best.Index,
		"cancelled", err != nil)

	sim, err := model.Run(best.Vector)
	if err != nil {
		return err
	}
	logSummary(sim)
	return nil
}

func logSummary(sim *engine.Simulation) {
	logger.Info("run summary",
		"successful", sim.WasSuccessful(),
		"completed_route", sim.CompletedRoute(),
		"time_taken_s", sim.TimeTakenS(),
		"distance_travelled_m", sim.DistanceTravelledM(),
		"final_soc", sim.FinalSOC(),
		"consumed_wh", sim.TotalConsumedWh(),
		"produced_wh", sim.TotalProducedWh())
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("metrics listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}
