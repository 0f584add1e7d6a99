package config

import (
	"encoding/json"
	"os"

	"taskserver/internal/flagx"
)

// JsonConfig is the intermediate DTO for reading JSON configuration files.
// After unmarshalling, set fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr string `json:"endpoint_addr"`
	CertFile     string `json:"cert_file"`
	KeyFile      string `json:"key_file"`
	StoreFile    string `json:"store_file"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; with neither present, no JSON file is loaded. A file that cannot
// be read or parsed is ignored and the current values stay in effect —
// the server must come up with its defaults rather than refuse to start.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.CertFile != "" {
		config.CertFile = c.CertFile
	}
	if c.KeyFile != "" {
		config.KeyFile = c.KeyFile
	}
	if c.StoreFile != "" {
		config.StoreFile = c.StoreFile
	}
}
