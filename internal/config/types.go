// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultGamePath is where the game installs by default on the author's machine.
	DefaultGamePath = `D:\Games\World of Tanks`
	// DefaultOutputDir is the local fallback destination.
	DefaultOutputDir = "."
	// DefaultPython is the interpreter used to compile sources.
	DefaultPython = "python"
	// DefaultMaxLevels bounds the compiled directory depth.
	DefaultMaxLevels = 128
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// Config holds the application configuration.
	Config struct {
		// GamePath is the game installation root probed for the game executable.
		GamePath string `json:"game_path" mapstructure:"game_path"`
		// OutputDir receives archives when no game installation is detected.
		OutputDir string `json:"output_dir" mapstructure:"output_dir"`
		// SourceDir is searched for the mod entry point.
		SourceDir string `json:"source_dir" mapstructure:"source_dir"`
		// TempRoot is the parent of scratch directories. Empty uses the system temp directory.
		TempRoot string `json:"temp_root" mapstructure:"temp_root"`
		// Compiler configures source compilation.
		Compiler CompilerConfig `json:"compiler" mapstructure:"compiler"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`

		// Source is the config file the values were read from; empty when
		// only defaults and environment were used.
		Source string `json:"-" mapstructure:"-"`
	}

	// CompilerConfig configures the Python compiler.
	CompilerConfig struct {
		// Python is the interpreter command line, e.g. "python" or "py -2.7".
		Python string `json:"python" mapstructure:"python"`
		// MaxLevels bounds how deep sources are compiled.
		MaxLevels int `json:"max_levels" mapstructure:"max_levels"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme selects the style used to render help pages.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme so callers can use errors.Is for programmatic detection.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate returns an error if the ColorScheme is not one of the defined values.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so errors.Is
// matches both the sentinel and specific field failures.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Validate checks the constraints that hold regardless of where values came
// from (file, environment or flags).
func (c *Config) Validate() error {
	var errs []error
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Compiler.MaxLevels < 1 {
		errs = append(errs, fmt.Errorf("compiler.max_levels must be at least 1, got %d", c.Compiler.MaxLevels))
	}
	if strings.TrimSpace(c.Compiler.Python) == "" {
		errs = append(errs, errors.New("compiler.python must not be empty"))
	}
	paths := []struct{ name, value string }{
		{"game_path", c.GamePath},
		{"output_dir", c.OutputDir},
		{"source_dir", c.SourceDir},
	}
	for _, p := range paths {
		if p.value != "" && strings.TrimSpace(p.value) == "" {
			errs = append(errs, fmt.Errorf("%s must not be whitespace-only", p.name))
		}
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		GamePath:  DefaultGamePath,
		OutputDir: DefaultOutputDir,
		SourceDir: ".",
		Compiler: CompilerConfig{
			Python:    DefaultPython,
			MaxLevels: DefaultMaxLevels,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}
