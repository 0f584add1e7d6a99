package config

import (
	"encoding/json"
	"os"

	"taskserver/internal/flagx"
)

// JsonConfig is the intermediate DTO for the client's JSON config file.
type JsonConfig struct {
	ServerEndpointAddr string `json:"server_endpoint_addr"`
}

// parseJson overlays values from the JSON file named by -c/-config. Any
// read or parse failure leaves the defaults in place; the client never
// refuses to start over a bad config file.
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

	if c.ServerEndpointAddr != "" {
		config.ServerEndpointAddr = c.ServerEndpointAddr
	}
}
