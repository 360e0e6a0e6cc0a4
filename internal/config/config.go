// Package config loads turnkit settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds process-wide defaults. Command-line flags override them.
type Config struct {
	Format   string `env:"TURNKIT_FORMAT"    envDefault:"text"`
	LogLevel string `env:"TURNKIT_LOG_LEVEL" envDefault:"warn"`
	MaxSteps int    `env:"TURNKIT_MAX_STEPS" envDefault:"1000"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config from the environment and checks it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("TURNKIT_FORMAT must be text or json, got %q", c.Format)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("TURNKIT_MAX_STEPS must be positive, got %d", c.MaxSteps)
	}
	return nil
}

// Level returns the configured slog level.
func (c Config) Level() slog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return l
}

// ParseLevel parses debug, info, warn or error, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("TURNKIT_LOG_LEVEL: %w", err)
	}
	return l, nil
}
