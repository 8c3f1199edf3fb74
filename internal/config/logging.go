package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvLoggingLevel  = "CREDISCOPE_LOGGING_LEVEL"
	EnvLoggingFormat = "CREDISCOPE_LOGGING_FORMAT"
)

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SlogLevel returns Level as a slog.Level.
func (c *LoggingConfig) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LoggingConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
}

func (c *LoggingConfig) loadDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

func (c *LoggingConfig) loadEnv() {
	if v := os.Getenv(EnvLoggingLevel); v != "" {
		c.Level = v
	}
	if v := os.Getenv(EnvLoggingFormat); v != "" {
		c.Format = v
	}
}

func (c *LoggingConfig) validate() error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return fmt.Errorf("invalid level: %w", err)
	}
	switch strings.ToLower(c.Format) {
	case "json", "text":
		return nil
	default:
		return fmt.Errorf("invalid format %q: must be json or text", c.Format)
	}
}
