package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/passvault/passvault/internal/flagx"
	"github.com/passvault/passvault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the timeout either as a string like
// "10s" or as integer nanoseconds.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	Admin          *bool           `json:"admin"`
}

// parseJson overlays cfg with values loaded from the JSON file named by the
// -c/-config flags. Absent keys keep their current values. Read and
// unmarshal errors panic; a missing -c flag is not an error.
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

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.Admin != nil {
		cfg.Admin = *jc.Admin
	}
}
