// Package config handles exporter configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/maznobu/kicadwrl/pkg/math"
)

// Limits shared by the color amplification and global scale settings.
const (
	MinFactor = 0.01
	MaxFactor = 1000.0
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export" toml:"export"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	Locale  LocaleConfig  `yaml:"locale" toml:"locale"`
}

// ExportConfig holds the parameters of one export run. It is validated
// once and never modified by the exporter.
type ExportConfig struct {
	SelectionOnly    bool    `yaml:"selection_only" toml:"selection_only"`
	IncludeChildren  bool    `yaml:"include_children" toml:"include_children"`
	ApplyModifiers   bool    `yaml:"apply_modifiers" toml:"apply_modifiers"`
	CenterOrigin     bool    `yaml:"center_origin" toml:"center_origin"`
	ColorAmplify     float64 `yaml:"color_amplify" toml:"color_amplify"`
	AxisForward      string  `yaml:"axis_forward" toml:"axis_forward"`
	AxisUp           string  `yaml:"axis_up" toml:"axis_up"`
	GlobalScale      float64 `yaml:"global_scale" toml:"global_scale"`
	ASCIIIdentifiers bool    `yaml:"ascii_identifiers" toml:"ascii_identifiers"`
	OutputPath       string  `yaml:"output_path" toml:"output_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level" toml:"level"`
	LogFile    string `yaml:"log_file" toml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days"`
	Compress   bool   `yaml:"compress" toml:"compress"`
}

// LocaleConfig holds the message language. An empty Language means the
// system locale is used.
type LocaleConfig struct {
	Language string `yaml:"language" toml:"language"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			SelectionOnly:   false,
			IncludeChildren: false,
			ApplyModifiers:  true,
			CenterOrigin:    false,
			ColorAmplify:    1.5,
			AxisForward:     "Y",
			AxisUp:          "Z",
			GlobalScale:     0.3937,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Validate checks value ranges and the axis pair.
func (c *ExportConfig) Validate() error {
	if c.ColorAmplify < MinFactor || c.ColorAmplify > MaxFactor {
		return fmt.Errorf("%w: color amplify %g outside [%g, %g]", ErrInvalidConfig, c.ColorAmplify, MinFactor, MaxFactor)
	}
	if c.GlobalScale < MinFactor || c.GlobalScale > MaxFactor {
		return fmt.Errorf("%w: global scale %g outside [%g, %g]", ErrInvalidConfig, c.GlobalScale, MinFactor, MaxFactor)
	}
	if _, err := math.AxisConversion("Y", "Z", c.AxisForward, c.AxisUp); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%w: no output path", ErrInvalidConfig)
	}
	return nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.Export.Validate(); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}
