package config

import (
	"flag"
	"os"

	"taskserver/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   TCP bind address (e.g., ":65432")
//	-r string   TLS certificate file (PEM)
//	-k string   TLS key file (PEM)
//	-f string   snapshot file path
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-r", "-k", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.CertFile, "r", config.CertFile, "TLS certificate file")
	fs.StringVar(&config.KeyFile, "k", config.KeyFile, "TLS key file")
	fs.StringVar(&config.StoreFile, "f", config.StoreFile, "snapshot file path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
