// Package config loads runtime configuration for the musclemap shell.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     ".toml" are decoded as TOML, anything else as JSON.
//  3. Environment variables prefixed with MUSCLEMAP_.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-d string   database DSN (SQLite path or postgres:// URL)
//	-t int      tick interval (seconds)
//	-m string   metrics listen address, empty disables the endpoint
//	-l string   log level (debug, info, warn, error)
//
// # File schema
//
// Intervals use timex.Duration, so JSON accepts "1s" or integer nanoseconds:
//
//	{
//	  "database_dsn": "musclemap.db",
//	  "tick_interval": "1s",
//	  "location": "Europe/Riga",
//	  "s3_bucket": "progress-photos"
//	}
package config
