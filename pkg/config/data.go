package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/solarracing/strategy-core/internal/meteo"
	"github.com/solarracing/strategy-core/internal/route"
)

// RouteNode is one YAML route point.
type RouteNode struct {
	Latitude            float64  `yaml:"lat"`
	Longitude           float64  `yaml:"lon"`
	CumulativeDistanceM float64  `yaml:"distance_m"`
	ElevationM          float64  `yaml:"elevation_m"`
	Gradient            *float64 `yaml:"gradient"`
	SpeedLimitKmh       float64  `yaml:"speed_limit_kmh"`
	TimeZoneOffsetS     int      `yaml:"tz_offset_s"`
}

type routeFile struct {
	Nodes []RouteNode `yaml:"nodes"`
}

// LoadRoute reads a route data file. Gradients omitted from the file are
// derived from elevation deltas.
func LoadRoute(path string) (*route.Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading route file: %w", err)
	}
	var file routeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing route file: %w", err)
	}

	nodes := make([]route.Node, len(file.Nodes))
	deriveGradients := false
	for i, n := range file.Nodes {
		nodes[i] = route.Node{
			Latitude:            n.Latitude,
			Longitude:           n.Longitude,
			CumulativeDistanceM: n.CumulativeDistanceM,
			ElevationM:          n.ElevationM,
			SpeedLimitKmh:       n.SpeedLimitKmh,
			TimeZoneOffset:      n.TimeZoneOffsetS,
		}
		if n.Gradient != nil {
			nodes[i].Gradient = *n.Gradient
		} else {
			deriveGradients = true
		}
	}
	if deriveGradients {
		for i, g := range route.GradientsFromElevations(nodes) {
			if file.Nodes[i].Gradient == nil {
				nodes[i].Gradient = g
			}
		}
	}
	return route.New(nodes)
}

// ForecastRecord is one YAML weather sample.
type ForecastRecord struct {
	Timestamp        int64   `yaml:"timestamp"`
	GHI              float64 `yaml:"ghi"`
	WindSpeedMs      float64 `yaml:"wind_speed_ms"`
	WindDirectionDeg float64 `yaml:"wind_direction_deg"`
	CloudCover       float64 `yaml:"cloud_cover"`
	TemperatureC     float64 `yaml:"temperature_c"`
}

type forecastFile struct {
	Records []ForecastRecord `yaml:"records"`
}

// LoadForecast reads a weather forecast data file.
func LoadForecast(path string) (*meteo.Forecast, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading forecast file: %w", err)
	}
	var file forecastFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing forecast file: %w", err)
	}

	records := make([]meteo.Record, len(file.Records))
	for i, r := range file.Records {
		records[i] = meteo.Record{
			Timestamp:        r.Timestamp,
			GHI:              r.GHI,
			WindSpeedMs:      r.WindSpeedMs,
			WindDirectionDeg: r.WindDirectionDeg,
			CloudCover:       r.CloudCover,
			TemperatureC:     r.TemperatureC,
		}
	}
	return meteo.New(records)
}
