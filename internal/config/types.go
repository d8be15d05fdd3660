// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
)

const (
	// EnginePodman uses Podman as the container engine.
	EnginePodman Engine = "podman"
	// EngineDocker uses Docker as the container engine.
	EngineDocker Engine = "docker"
	// EngineAuto picks whichever engine is available, Docker first.
	EngineAuto Engine = "auto"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidEngine is returned when an Engine value is not recognized.
	ErrInvalidEngine = errors.New("invalid container engine")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidStopTimeout is returned when the stop timeout is negative.
	ErrInvalidStopTimeout = errors.New("invalid stop timeout")
)

type (
	// Engine specifies which container engine to drive.
	Engine string

	// InvalidEngineError is returned when an Engine value is not recognized.
	// It wraps ErrInvalidEngine for errors.Is() compatibility.
	InvalidEngineError struct {
		Value Engine
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not
	// recognized. It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// Config holds the application configuration.
	Config struct {
		// Engine specifies "docker", "podman", or "auto".
		Engine Engine `json:"engine" mapstructure:"engine"`
		// BinaryPath overrides the engine binary path; empty means PATH lookup.
		BinaryPath string `json:"binary_path" mapstructure:"binary_path"`
		// StopTimeoutSeconds is the grace period given to containers on stop.
		StopTimeoutSeconds int `json:"stop_timeout_seconds" mapstructure:"stop_timeout_seconds"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the configuration used when no file or environment
// override is present.
func DefaultConfig() *Config {
	return &Config{
		Engine:             EngineAuto,
		StopTimeoutSeconds: 10,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// IsValid returns whether the Engine is a recognized value.
func (e Engine) IsValid() (bool, []error) {
	switch e {
	case EngineDocker, EnginePodman, EngineAuto:
		return true, nil
	default:
		return false, []error{&InvalidEngineError{Value: e}}
	}
}

func (e *InvalidEngineError) Error() string {
	return fmt.Sprintf("invalid container engine %q (must be 'docker', 'podman', or 'auto')", string(e.Value))
}

// Unwrap returns ErrInvalidEngine for errors.Is() compatibility.
func (e *InvalidEngineError) Unwrap() error { return ErrInvalidEngine }

// IsValid returns whether the ColorScheme is a recognized value.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (must be 'auto', 'dark', or 'light')", string(e.Value))
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether the Config has valid fields.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Engine.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.StopTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidStopTimeout, c.StopTimeoutSeconds))
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// Validate returns the first validation error, or nil.
func (c *Config) Validate() error {
	if valid, errs := c.IsValid(); !valid {
		return errs[0]
	}
	return nil
}
