// Package config loads and validates process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Default values used when the corresponding environment variable is unset.
const (
	DefaultPort  = 8080
	DefaultModel = "gemini-2.5-flash"
)

// Config holds all process configuration. The Gemini API key is the only
// required value; without it the optimizer cannot run and startup fails.
type Config struct {
	// APIKey is the Gemini API credential (GEMINI_API_KEY).
	APIKey string `validate:"required"`
	// Model is the Gemini model name used by the optimizer (GEMINI_MODEL).
	Model string `validate:"required"`
	// Port is the HTTP listen port (PORT).
	Port int `validate:"gt=0,lte=65535"`
	// DatabaseURL enables run-history persistence when set (DATABASE_URL).
	DatabaseURL string
	// LogLevel selects the zap log level (LOG_LEVEL).
	LogLevel string
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		Model:       os.Getenv("GEMINI_MODEL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		Port:        DefaultPort,
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT value %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if c.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable is required")
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
