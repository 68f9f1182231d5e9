// Package config loads the building, roof and design service settings from
// YAML, with the API key taken from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"Roofline/internal/calc/bearing"
	"Roofline/internal/calc/footprint"
	"Roofline/internal/calc/roof"
	apperrors "Roofline/internal/errors"
	"Roofline/internal/geom"
)

const TokenEnv = "PARAGON_API_KEY"

type Kind string

const (
	KindGable      Kind = "gable"
	KindCrossGable Kind = "cross-gable"
)

type Config struct {
	Project  string         `yaml:"project"`
	Service  ServiceConfig  `yaml:"service"`
	Building BuildingConfig `yaml:"building"`
	Roof     RoofConfig     `yaml:"roof"`
	Trusses  TrussConfig    `yaml:"trusses"`
}

type ServiceConfig struct {
	BaseURL   string `yaml:"base_url"`
	ViewerURL string `yaml:"viewer_url"`
	// Token is read from PARAGON_API_KEY, never from the file.
	Token             string        `yaml:"-"`
	Deadline          time.Duration `yaml:"deadline"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	Concurrency       int           `yaml:"concurrency"`
}

type BuildingConfig struct {
	Kind    Kind            `yaml:"kind"`
	Main    footprint.Input `yaml:"main"`
	Wing    footprint.Wing  `yaml:"wing"`
	Bearing bearing.Input   `yaml:"bearing"`
}

type RoofConfig struct {
	Strategy roof.Strategy `yaml:"strategy"`
	// Epsilon is the vertex coincidence tolerance in inches.
	Epsilon float64 `yaml:"epsilon"`
}

type TrussConfig struct {
	CommonOffset    float64            `yaml:"common_offset"`
	ValleyStep      float64            `yaml:"valley_step"`
	ValleyClearance float64            `yaml:"valley_clearance"`
	Thickness       float64            `yaml:"thickness"`
	Justification   geom.Justification `yaml:"justification"`
	Overhang        float64            `yaml:"overhang"`
}

// Default returns the 60' x 24' reference building.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every zero field.
func (c *Config) ApplyDefaults() {
	if c.Project == "" {
		c.Project = "API Test Project"
	}
	s := &c.Service
	if s.Deadline <= 0 {
		s.Deadline = 2 * time.Minute
	}
	if s.RequestsPerSecond <= 0 {
		s.RequestsPerSecond = 10
	}
	if s.Burst <= 0 {
		s.Burst = 5
	}
	if s.Concurrency <= 0 {
		s.Concurrency = 4
	}

	b := &c.Building
	if b.Kind == "" {
		b.Kind = KindGable
	}
	if b.Main.LengthIn == 0 {
		b.Main.LengthIn = 60 * geom.Feet
	}
	if b.Main.SpanIn == 0 {
		b.Main.SpanIn = 24 * geom.Feet
	}
	if b.Main.WallHeightIn == 0 {
		b.Main.WallHeightIn = 8 * geom.Feet
	}
	if b.Main.RiseIn == 0 && b.Main.Pitch == 0 {
		b.Main.RiseIn = 6 * geom.Feet
	}

	if c.Roof.Strategy == "" {
		c.Roof.Strategy = roof.StrategySolid
	}
	if c.Roof.Epsilon <= 0 {
		c.Roof.Epsilon = roof.DefaultEpsilon
	}

	t := &c.Trusses
	if t.CommonOffset == 0 {
		t.CommonOffset = 7 * geom.Feet
	}
	if t.ValleyStep == 0 {
		t.ValleyStep = 2 * geom.Feet
	}
	if t.Overhang == 0 {
		t.Overhang = 2 * geom.Feet
	}
}

// Validate checks the settings that do not belong to a calc package.
func (c *Config) Validate() error {
	switch c.Building.Kind {
	case KindGable, KindCrossGable:
	default:
		return apperrors.Invalid("building.kind", fmt.Sprintf("unknown building kind %q", c.Building.Kind))
	}
	if _, err := roof.ParseStrategy(string(c.Roof.Strategy)); err != nil {
		return apperrors.Invalid("roof.strategy", err.Error())
	}
	if c.Trusses.ValleyStep <= 0 {
		return apperrors.Invalid("trusses.valley_step", "must be positive")
	}
	if c.Trusses.Justification != "" && !c.Trusses.Justification.Valid() {
		return apperrors.Invalid("trusses.justification", fmt.Sprintf("unknown justification %q", c.Trusses.Justification))
	}
	return nil
}

// Load reads path, applies defaults and picks up the API key from the
// environment or a .env file next to the working directory. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CategoryConfig, "read config").WithContext("path", path)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CategoryConfig, "parse config").WithContext("path", path)
		}
	}
	cfg.ApplyDefaults()
	if err := LoadEnv(".env"); err != nil {
		return nil, err
	}
	cfg.Service.Token = os.Getenv(TokenEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads KEY=VALUE pairs from the given files without overriding the
// process environment. Missing files are skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return apperrors.Wrap(err, apperrors.CategoryConfig, "load env file").WithContext("path", f)
		}
	}
	return nil
}
