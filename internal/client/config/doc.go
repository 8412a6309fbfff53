// Package config loads runtime configuration for the fireflow CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file, JSON or YAML by extension (Sources.File).
//  3. Optional .env file (Sources.DotEnv); it never overrides variables
//     already present in the environment.
//  4. FIREFLOW_* environment variables.
//  5. Overrides supplied by the caller, normally the command-line flags that
//     were set explicitly.
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "10s" or integer
// nanoseconds:
//
//	{
//	  "database_path": "fireflow.db",
//	  "key_alias": "fireflow_master_key",
//	  "cipher": "aes256-gcm",
//	  "development_backend": "sqlite",
//	  "redis_addr": "127.0.0.1:6379",
//	  "redis_prefix": "fireflow:prefs:",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "operation_timeout": "10s"
//	}
//
// The passphrase is never read from a file.
package config
