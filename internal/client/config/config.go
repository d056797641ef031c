package config

import "time"

// Config holds runtime settings for the PaperTrail CLI.
//
// Fields:
//   - ServerEndpointURL: base URL of the backend HTTP endpoint.
//   - SyncInterval: how often the background sync runs while logged in.
//
// Units: SyncInterval is a time.Duration (e.g., 15*time.Minute).
type Config struct {
	ServerEndpointURL string
	SyncInterval      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointURL = "http://127.0.0.1:8080"
	c.SyncInterval = 15 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
