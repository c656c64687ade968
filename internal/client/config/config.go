package config

import "time"

// Config holds runtime settings for the campuslink client.
type Config struct {
	// ServerBaseURL is the LMS REST backend, e.g. "http://127.0.0.1:5000".
	ServerBaseURL string
	// RequestTimeout bounds every individual API request.
	RequestTimeout time.Duration
	// UnreadPollInterval is how often the background watcher polls the
	// unread-message count.
	UnreadPollInterval time.Duration
	// DatabasePath is the local SQLite file holding the persisted session.
	DatabasePath string
	// DeviceKeyPath is the per-device secret file sealing the persisted
	// session at rest.
	DeviceKeyPath string
}

// LoadDefaults populates c with sensible defaults for local development.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:5000"
	c.RequestTimeout = 10 * time.Second
	c.UnreadPollInterval = 30 * time.Second
	c.DatabasePath = "campuslink.db"
	c.DeviceKeyPath = "device.key"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
