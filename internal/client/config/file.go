package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/fireflow/internal/timex"
)

// fileConfig is a DTO used exclusively for file unmarshalling. Empty fields
// leave the current value alone.
type fileConfig struct {
	DatabasePath       string         `json:"database_path" yaml:"database_path"`
	KeyAlias           string         `json:"key_alias" yaml:"key_alias"`
	Cipher             string         `json:"cipher" yaml:"cipher"`
	DevelopmentBackend string         `json:"development_backend" yaml:"development_backend"`
	RedisAddr          string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPrefix        string         `json:"redis_prefix" yaml:"redis_prefix"`
	LogLevel           string         `json:"log_level" yaml:"log_level"`
	LogFormat          string         `json:"log_format" yaml:"log_format"`
	OperationTimeout   timex.Duration `json:"operation_timeout" yaml:"operation_timeout"`
}

// parseFile overlays cfg with the file at path. ".yaml" and ".yml" files are
// read as YAML, anything else as JSON.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.KeyAlias, fc.KeyAlias)
	setString(&cfg.Cipher, fc.Cipher)
	setString(&cfg.DevelopmentBackend, fc.DevelopmentBackend)
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.RedisPrefix, fc.RedisPrefix)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	if fc.OperationTimeout.Duration != 0 {
		cfg.OperationTimeout = fc.OperationTimeout.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
