package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// parseEnv loads the optional .env file and then overlays cfg with the
// FIREFLOW_* variables that are set. A missing .env file is not an error.
func parseEnv(cfg *Config, dotEnv string) error {
	if dotEnv != "" {
		if err := godotenv.Load(dotEnv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", dotEnv, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
