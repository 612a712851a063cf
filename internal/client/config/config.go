// Package config holds runtime settings for the PassVault terminal client.
package config

import "time"

// Config holds the client's connection settings.
//
// Fields:
//   - ServerURL: base URL of the vault server, e.g. "http://127.0.0.1:8080".
//   - RequestTimeout: per-request HTTP timeout. PoW solving happens locally
//     and is not bounded by this value.
//   - Admin: use the admin login surface instead of the user one.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	Admin          bool
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.Admin = false
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
