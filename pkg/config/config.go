// Package config loads and validates the YAML configuration tree: race
// calendar, vehicle component models, engine options and optimizer
// hyperparameters.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/solarracing/strategy-core/internal/engine"
	"github.com/solarracing/strategy-core/internal/optimize"
	"github.com/solarracing/strategy-core/internal/race"
	"github.com/solarracing/strategy-core/internal/vehicle"
)

// WindowConfig is a daily time range in seconds since local midnight,
// half-open.
type WindowConfig struct {
	StartS int `yaml:"start_s"`
	EndS   int `yaml:"end_s"`
}

// DayConfig holds one race day's driving and charging windows.
type DayConfig struct {
	Driving  WindowConfig `yaml:"driving"`
	Charging WindowConfig `yaml:"charging"`
}

// RaceConfig describes the race calendar.
type RaceConfig struct {
	// Type is the competition ruleset: ASC or FSGP.
	Type string `yaml:"type"`
	// StartDate is the race start date, YYYY-MM-DD, at midnight in Timezone.
	StartDate string `yaml:"start_date"`
	// Timezone is an IANA zone name; empty means UTC.
	Timezone string `yaml:"timezone"`
	// Days lists the driving and charging windows per race day.
	Days []DayConfig `yaml:"days"`
}

// OptimizerConfig wraps the GA hyperparameters with the schedule-specific
// search settings.
type OptimizerConfig struct {
	optimize.Config `yaml:",inline"`

	// Objective picks the fitness adapter: distance, time or
	// distance_and_time.
	Objective string `yaml:"objective"`
	// MinSpeedKmh is the lower speed bound per optimization interval.
	MinSpeedKmh float64 `yaml:"min_speed_kmh"`
	// MaxSpeedKmh is the upper speed bound per optimization interval.
	MaxSpeedKmh float64 `yaml:"max_speed_kmh"`
}

// Config is the root configuration tree.
type Config struct {
	Race      RaceConfig      `yaml:"race"`
	Vehicle   vehicle.Spec    `yaml:"vehicle"`
	Engine    engine.Options  `yaml:"engine"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
}

// Default returns the configuration used when a field is absent from the
// YAML document.
func Default() *Config {
	return &Config{
		Race: RaceConfig{
			Type: string(race.FSGP),
		},
		Vehicle: vehicle.DefaultSpec(),
		Engine:  engine.DefaultOptions(),
		Optimizer: OptimizerConfig{
			Config:      optimize.DefaultConfig(),
			Objective:   string(optimize.ObjectiveDistanceAndTime),
			MinSpeedKmh: 0,
			MaxSpeedKmh: 60,
		},
	}
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse unmarshals a YAML document over the defaults and validates the
// result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section for structural errors. Deeper semantic
// checks happen where the values are consumed (component constructors, the
// optimizer).
func (c *Config) Validate() error {
	if err := c.validateRace(); err != nil {
		return fmt.Errorf("race: %w", err)
	}
	if err := c.validateEngine(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.validateOptimizer(); err != nil {
		return fmt.Errorf("optimizer: %w", err)
	}
	return nil
}

func (c *Config) validateRace() error {
	switch race.Type(c.Race.Type) {
	case race.ASC, race.FSGP:
	default:
		return fmt.Errorf("unsupported type %q", c.Race.Type)
	}
	if len(c.Race.Days) == 0 {
		return fmt.Errorf("at least one race day is required")
	}
	if c.Race.StartDate == "" {
		return fmt.Errorf("start date is required")
	}
	if _, err := c.startLocation(); err != nil {
		return err
	}
	if _, err := time.Parse("2006-01-02", c.Race.StartDate); err != nil {
		return fmt.Errorf("start date %q: %w", c.Race.StartDate, err)
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.TickS < 1 {
		return fmt.Errorf("tick must be at least 1 second, got %d", c.Engine.TickS)
	}
	if c.Engine.Granularity < 1 || 3600%c.Engine.Granularity != 0 {
		return fmt.Errorf("granularity %d must divide an hour evenly", c.Engine.Granularity)
	}
	if c.Engine.StartOffsetS < 0 {
		return fmt.Errorf("start offset cannot be negative, got %d", c.Engine.StartOffsetS)
	}
	return nil
}

func (c *Config) validateOptimizer() error {
	switch optimize.ObjectiveKind(c.Optimizer.Objective) {
	case optimize.ObjectiveDistance, optimize.ObjectiveTime, optimize.ObjectiveDistanceAndTime:
	default:
		return fmt.Errorf("unsupported objective %q", c.Optimizer.Objective)
	}
	if c.Optimizer.MinSpeedKmh < 0 {
		return fmt.Errorf("min speed cannot be negative, got %f", c.Optimizer.MinSpeedKmh)
	}
	if c.Optimizer.MaxSpeedKmh <= c.Optimizer.MinSpeedKmh {
		return fmt.Errorf("max speed %f must exceed min speed %f",
			c.Optimizer.MaxSpeedKmh, c.Optimizer.MinSpeedKmh)
	}
	return nil
}

func (c *Config) startLocation() (*time.Location, error) {
	if c.Race.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Race.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Race.Timezone, err)
	}
	return loc, nil
}

// Calendar builds the race calendar from the race section.
func (c *Config) Calendar() (*race.Calendar, error) {
	loc, err := c.startLocation()
	if err != nil {
		return nil, err
	}
	start, err := time.ParseInLocation("2006-01-02", c.Race.StartDate, loc)
	if err != nil {
		return nil, fmt.Errorf("start date %q: %w", c.Race.StartDate, err)
	}

	days := make([]race.Day, len(c.Race.Days))
	for i, d := range c.Race.Days {
		days[i] = race.Day{
			Driving:  race.Window{Start: d.Driving.StartS, End: d.Driving.EndS},
			Charging: race.Window{Start: d.Charging.StartS, End: d.Charging.EndS},
		}
	}
	return race.New(race.Type(c.Race.Type), start, days)
}
