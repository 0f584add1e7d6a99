// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the task server.
//
// Fields:
//   - EndpointAddr: TCP bind address for the TLS listener.
//   - CertFile / KeyFile: PEM certificate and key for the TLS wrapper.
//   - StoreFile: path of the JSON snapshot file.
type Config struct {
	EndpointAddr string
	CertFile     string
	KeyFile      string
	StoreFile    string
}

// LoadDefaults populates Config with the defaults the original deployment
// shipped with.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":65432"
	c.CertFile = "server.crt"
	c.KeyFile = "server.key"
	c.StoreFile = "storage.json"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
