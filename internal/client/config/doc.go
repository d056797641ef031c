// Package config loads runtime configuration for the PaperTrail CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend HTTP endpoint
//	-i int      background sync interval (minutes)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "15m" or integer nanoseconds:
//
//	{
//	  "server_endpoint_url": "http://127.0.0.1:8080",
//	  "sync_interval": "15m"
//	}
//
// Primary API
//
//   - type Config                     — holds ServerEndpointURL and SyncInterval
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
