package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/campuslink/internal/flagx"
	"github.com/dmitrijs2005/campuslink/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so intervals can be specified either as strings like "30s"
// or as integer nanoseconds. Absent fields keep their earlier values.
type JsonConfig struct {
	ServerBaseURL      *string         `json:"server_base_url"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	UnreadPollInterval *timex.Duration `json:"unread_poll_interval"`
	DatabasePath       *string         `json:"database_path"`
	DeviceKeyPath      *string         `json:"device_key_path"`
}

// parseJson overlays cfg with values loaded from the JSON file named by the
// -c/-config flags. When no file is named, it is a no-op. Read or decode
// errors panic; configuration is load-bearing and a broken file should stop
// startup.
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

	if jc.ServerBaseURL != nil {
		cfg.ServerBaseURL = *jc.ServerBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.UnreadPollInterval != nil {
		cfg.UnreadPollInterval = jc.UnreadPollInterval.Duration
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.DeviceKeyPath != nil {
		cfg.DeviceKeyPath = *jc.DeviceKeyPath
	}
}
