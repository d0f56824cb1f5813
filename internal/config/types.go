package config

import (
	"github.com/cxd309/tram-policy/internal/engine"
	"github.com/cxd309/tram-policy/internal/station"
)

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port" validate:"gte=0,lte=65535"`
	AllowedOrigins []string `yaml:"allowedOrigins" validate:"dive,required"`
}

// DataConfig names the station dataset. An empty StationsCSV selects the embedded
// Daejeon dataset together with its line layout, unless Lines are given.
type DataConfig struct {
	StationsCSV string         `yaml:"stationsCsv"`
	Lines       []station.Line `yaml:"lines" validate:"dive"`
}

// SearchConfig contains alternative search configuration
type SearchConfig struct {
	Intervals  []float64 `yaml:"intervals" validate:"dive,gt=0"`
	Reductions []float64 `yaml:"reductions" validate:"dive,gte=0,lte=50"`
	Workers    int       `yaml:"workers" validate:"gte=0"`
}

// ScenarioConfig contains decision log configuration
type ScenarioConfig struct {
	Capacity int `yaml:"capacity" validate:"gte=0"`
}

// LoggingConfig contains logger configuration
type LoggingConfig struct {
	Level   string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Console bool   `yaml:"console"` // human-readable output instead of JSON
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server      ServerConfig       `yaml:"server"`
	Data        DataConfig         `yaml:"data"`
	Calibration engine.Calibration `yaml:"calibration"`
	Search      SearchConfig       `yaml:"search"`
	Scenarios   ScenarioConfig     `yaml:"scenarios"`
	Logging     LoggingConfig      `yaml:"logging"`
}
