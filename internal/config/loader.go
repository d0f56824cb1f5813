// Package config handles application configuration loading and validation.
//
// Configuration is read from YAML and validated using struct tags. Keys missing from the
// file keep their defaults, so a file may override a single calibration constant.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cxd309/tram-policy/internal/engine"
	"github.com/cxd309/tram-policy/internal/scenario"
	"github.com/cxd309/tram-policy/internal/search"
	"github.com/cxd309/tram-policy/internal/station"
)

// EnvPath names an environment variable holding the configuration file path.
const EnvPath = "TRAM_POLICY_CONFIG"

// DefaultPort is used when the configuration leaves server.port unset.
const DefaultPort = 8080

// ErrNotFound is returned by Load when none of the candidate paths can be read.
var ErrNotFound = errors.New("no configuration file found")

// Paths returns the candidate configuration paths in lookup order.
func Paths() []string {
	paths := []string{"config.yml", "./config/config.yml"}
	if p := os.Getenv(EnvPath); p != "" {
		paths = append([]string{p}, paths...)
	}
	return paths
}

// Default returns the configuration used when no file is present.
func Default() *AppConfig {
	cfg := &AppConfig{Calibration: engine.DefaultCalibration()}
	cfg.applyDefaults()
	return cfg
}

// Load reads the first readable path, or the Paths candidates when none are given.
func Load(paths ...string) (*AppConfig, error) {
	if len(paths) == 0 {
		paths = Paths()
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		cfg, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("%w (tried %v)", ErrNotFound, paths)
}

// Parse decodes and validates a YAML document.
func Parse(data []byte) (*AppConfig, error) {
	cfg := AppConfig{Calibration: engine.DefaultCalibration()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if len(c.Data.Lines) == 0 && c.Data.StationsCSV == "" {
		c.Data.Lines = station.DefaultLines()
	}
	def := search.DefaultGrid()
	if len(c.Search.Intervals) == 0 {
		c.Search.Intervals = def.Intervals
	}
	if len(c.Search.Reductions) == 0 {
		c.Search.Reductions = def.Reductions
	}
	if c.Search.Workers == 0 {
		c.Search.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Scenarios.Capacity == 0 {
		c.Scenarios.Capacity = scenario.DefaultCapacity
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Model returns the engine model for the configured calibration.
func (c *AppConfig) Model() engine.Model {
	return engine.Model{Cal: c.Calibration}
}

// SearchOptions returns the configured search grid and worker count.
func (c *AppConfig) SearchOptions() search.Options {
	return search.Options{
		Grid:    search.Grid{Intervals: c.Search.Intervals, Reductions: c.Search.Reductions},
		Workers: c.Search.Workers,
	}
}

// Stations loads the configured dataset.
func (c *AppConfig) Stations() ([]station.Station, error) {
	if c.Data.StationsCSV == "" {
		return station.Default(), nil
	}
	return station.LoadCSVFile(c.Data.StationsCSV)
}
