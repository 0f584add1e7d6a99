// Package config handles configuration for the client component. The
// client must always come up: any failure to read a config source falls
// back to the compiled-in defaults.
package config

// Config holds runtime settings for the task client.
//
// Fields:
//   - ServerEndpointAddr: host:port of the task server.
type Config struct {
	ServerEndpointAddr string
}

// LoadDefaults populates c with the fallback endpoint.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "localhost:65432"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
