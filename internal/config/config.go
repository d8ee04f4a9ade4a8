// Package config holds runtime settings for the Camagru client and the
// defaults -> JSON file -> command-line flags overlay used to load them.
package config

import "time"

// Config holds runtime settings for the Camagru client.
//
// Fields:
//   - ServerURL: base URL of the backend REST endpoint.
//   - FiltersPath: path prefix under ServerURL where filter overlays live.
//   - StateDSN: sqlite DSN of the local state database (token, profile cache).
//   - CameraDir: directory with frame images backing the capture device;
//     empty means no capture device is available.
//   - PageSize: feed page size.
//   - FrameInterval: delay between preview render ticks.
//   - ProbeTimeout: timeout for the startup session probe.
type Config struct {
	ServerURL     string
	FiltersPath   string
	StateDSN      string
	CameraDir     string
	PageSize      int
	FrameInterval time.Duration
	ProbeTimeout  time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.FiltersPath = "/filters"
	c.StateDSN = "camagru.db"
	c.CameraDir = ""
	c.PageSize = 12
	c.FrameInterval = 33 * time.Millisecond
	c.ProbeTimeout = 3 * time.Second
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
