package config

import (
	"encoding/json"
	"os"

	"github.com/dberzins/camagru/internal/flagx"
	"github.com/dberzins/camagru/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Interval
// fields use timex.Duration so the file can specify either strings like
// "33ms" or integer nanoseconds.
type JsonConfig struct {
	ServerURL     string         `json:"server_url"`
	FiltersPath   string         `json:"filters_path"`
	StateDSN      string         `json:"state_dsn"`
	CameraDir     string         `json:"camera_dir"`
	PageSize      int            `json:"page_size"`
	FrameInterval timex.Duration `json:"frame_interval"`
	ProbeTimeout  timex.Duration `json:"probe_timeout"`
}

// parseJson overlays cfg with values loaded from a JSON file located via the
// -c/-config flags (flagx.JsonConfigFlags). When no file is given the
// function is a no-op. Zero values in the file leave the current setting
// untouched, so a partial file only overrides what it names.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.FiltersPath != "" {
		cfg.FiltersPath = jc.FiltersPath
	}
	if jc.StateDSN != "" {
		cfg.StateDSN = jc.StateDSN
	}
	if jc.CameraDir != "" {
		cfg.CameraDir = jc.CameraDir
	}
	if jc.PageSize != 0 {
		cfg.PageSize = jc.PageSize
	}
	if jc.FrameInterval.Duration != 0 {
		cfg.FrameInterval = jc.FrameInterval.Duration
	}
	if jc.ProbeTimeout.Duration != 0 {
		cfg.ProbeTimeout = jc.ProbeTimeout.Duration
	}
}
