// Package config holds the engine configuration and its YAML loader.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EQMode selects which processor backs the "eq" plugin type.
type EQMode string

const (
	// EQModeAverage applies one averaged gain factor (compatibility behavior).
	EQModeAverage EQMode = "average"
	// EQModeFilter uses shelving/peaking biquad bands.
	EQModeFilter EQMode = "filter"
)

// AutomationConfig configures the automation recorder.
type AutomationConfig struct {
	// MinimumRecordingInterval is the smallest curve-time gap, in seconds,
	// between two captured points.
	MinimumRecordingInterval float64 `yaml:"minimumRecordingInterval"`
}

// EQConfig configures the EQ plugin type.
type EQConfig struct {
	Mode EQMode `yaml:"mode"`
}

// RoutingConfig configures bus membership rules.
type RoutingConfig struct {
	// ExclusiveBusMembership moves a track out of its previous bus when it
	// is added to another one.
	ExclusiveBusMembership bool `yaml:"exclusiveBusMembership"`
}

// Config is the root engine configuration.
type Config struct {
	SampleRate float64          `yaml:"sampleRate"`
	BlockSize  int              `yaml:"blockSize"`
	LogLevel   string           `yaml:"logLevel"`
	Automation AutomationConfig `yaml:"automation"`
	EQ         EQConfig         `yaml:"eq"`
	Routing    RoutingConfig    `yaml:"routing"`
}

var (
	// ErrInvalidSampleRate is returned for non-positive sample rates.
	ErrInvalidSampleRate = errors.New("config: sample rate must be positive")
	// ErrInvalidBlockSize is returned for non-positive block sizes.
	ErrInvalidBlockSize = errors.New("config: block size must be positive")
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SampleRate: 48000,
		BlockSize:  512,
		LogLevel:   "info",
		Automation: AutomationConfig{MinimumRecordingInterval: 0.02},
		EQ:         EQConfig{Mode: EQModeAverage},
		Routing:    RoutingConfig{ExclusiveBusMembership: true},
	}
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Load reads and parses a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	return Parse(data)
}

// Validate rejects unusable values and normalizes soft ones: a negative
// recording interval becomes 0 and an unknown EQ mode falls back to average.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, c.SampleRate)
	}

	if c.BlockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, c.BlockSize)
	}

	if c.Automation.MinimumRecordingInterval < 0 {
		c.Automation.MinimumRecordingInterval = 0
	}

	switch c.EQ.Mode {
	case EQModeAverage, EQModeFilter:
	default:
		c.EQ.Mode = EQModeAverage
	}

	return nil
}

// Level maps LogLevel onto a slog level. Unknown names map to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
