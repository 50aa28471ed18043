package types

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config holds the settings shared by every geoutils command. It is
// populated from config.yaml, GEOUTILS_* environment variables and flags.
type Config struct {
	LogLevel            string         `mapstructure:"log_level" yaml:"log_level"`
	User                string         `mapstructure:"user" yaml:"user,omitempty"`
	Driver              string         `mapstructure:"driver" yaml:"driver"`
	SpatialiteExtension string         `mapstructure:"spatialite_extension" yaml:"spatialite_extension"`
	Decimate            DecimateConfig `mapstructure:"decimate" yaml:"decimate"`
}

// DecimateConfig holds defaults for the decimate command.
type DecimateConfig struct {
	Factor    string `mapstructure:"factor" yaml:"factor,omitempty"`
	Recursive bool   `mapstructure:"recursive" yaml:"recursive"`
	Jobs      int    `mapstructure:"jobs" yaml:"jobs"`
	OutDir    string `mapstructure:"out_dir" yaml:"out_dir,omitempty"`
}

// Supported database drivers.
const (
	DriverPlain      = "plain"
	DriverSpatialite = "spatialite"
)

// DefaultSpatialiteExtension is the shared library loaded by the
// spatialite driver.
const DefaultSpatialiteExtension = "mod_spatialite"

// Config validation errors.
var (
	ErrDriverEmpty     = errors.New("driver must not be empty")
	ErrDriverUnknown   = errors.New("unknown driver")
	ErrJobsInvalid     = errors.New("jobs must not be negative")
	ErrLogLevelUnknown = errors.New("unknown log level")
)

var knownDrivers = map[string]bool{
	DriverPlain:      true,
	DriverSpatialite: true,
}

// DefaultConfig returns the configuration used when no config.yaml exists.
func DefaultConfig() Config {
	return Config{
		LogLevel:            "info",
		Driver:              DriverPlain,
		SpatialiteExtension: DefaultSpatialiteExtension,
		Decimate: DecimateConfig{
			Jobs: 1,
		},
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Driver == "" {
		return ErrDriverEmpty
	}
	if !knownDrivers[c.Driver] {
		return fmt.Errorf("%w: %q", ErrDriverUnknown, c.Driver)
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("%w: %q", ErrLogLevelUnknown, c.LogLevel)
		}
	}
	if c.Decimate.Jobs < 0 {
		return ErrJobsInvalid
	}
	if c.Decimate.Factor != "" {
		if _, err := ParseFactor(c.Decimate.Factor); err != nil {
			return err
		}
	}
	return nil
}

// ParseFactor parses a decimation factor and checks it lies in (0, 1].
func ParseFactor(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidFactor, s)
	}
	if err := ValidateFactor(f); err != nil {
		return 0, err
	}
	return f, nil
}

// ValidateFactor checks that f lies in (0, 1].
func ValidateFactor(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 || f > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidFactor, f)
	}
	return nil
}
