package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds environment overrides for the CLI. Flags take precedence.
type Env struct {
	ConfigPath string `env:"REEF_CONFIG"`
	Seed       int64  `env:"REEF_SEED"`
	MaxSteps   int    `env:"REEF_MAX_STEPS"`
	OutputDir  string `env:"REEF_OUTPUT_DIR"`
	DBPath     string `env:"REEF_DB"`
	LogLevel   string `env:"REEF_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
