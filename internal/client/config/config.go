package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/fireflow/internal/client/preferences"
	"github.com/dmitrijs2005/fireflow/internal/cryptox"
	"github.com/dmitrijs2005/fireflow/internal/logging"
)

// Config holds runtime settings for the fireflow CLI.
type Config struct {
	DatabasePath       string        `env:"FIREFLOW_DATABASE_PATH"`
	Passphrase         string        `env:"FIREFLOW_PASSPHRASE"`
	KeyAlias           string        `env:"FIREFLOW_KEY_ALIAS"`
	Cipher             string        `env:"FIREFLOW_CIPHER"`
	DevelopmentBackend string        `env:"FIREFLOW_DEV_BACKEND"`
	RedisAddr          string        `env:"FIREFLOW_REDIS_ADDR"`
	RedisPrefix        string        `env:"FIREFLOW_REDIS_PREFIX"`
	LogLevel           string        `env:"FIREFLOW_LOG_LEVEL"`
	LogFormat          string        `env:"FIREFLOW_LOG_FORMAT"`
	OperationTimeout   time.Duration `env:"FIREFLOW_OPERATION_TIMEOUT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "fireflow.db"
	c.Passphrase = ""
	c.KeyAlias = "fireflow_master_key"
	c.Cipher = string(cryptox.DefaultCipher)
	c.DevelopmentBackend = preferences.BackendSQLite
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "fireflow:prefs:"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.OperationTimeout = 10 * time.Second
}

// Sources names the optional files Load reads. Empty fields are skipped.
type Sources struct {
	File   string
	DotEnv string
}

// Load builds a Config by applying defaults, the config file, the .env file,
// the environment and then overrides, in that order. The result is
// validated.
func Load(src Sources, overrides ...func(*Config)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if src.File != "" {
		if err := parseFile(cfg, src.File); err != nil {
			return nil, err
		}
	}
	if err := parseEnv(cfg, src.DotEnv); err != nil {
		return nil, err
	}
	for _, o := range overrides {
		o(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the preference stack cannot be built with.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	if c.KeyAlias == "" {
		errs = append(errs, errors.New("key alias is empty"))
	}
	if _, err := cryptox.ParseCipher(c.Cipher); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains(preferences.Backends(), c.DevelopmentBackend) {
		errs = append(errs, fmt.Errorf("unknown development backend %q", c.DevelopmentBackend))
	}
	if c.DevelopmentBackend == preferences.BackendRedis && c.RedisAddr == "" {
		errs = append(errs, errors.New("redis backend selected without an address"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if c.OperationTimeout <= 0 {
		errs = append(errs, fmt.Errorf("operation timeout must be positive, got %s", c.OperationTimeout))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
