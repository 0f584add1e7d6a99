package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"taskserver"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestLoadConfig_Defaults(t *testing.T) {
	setArgs(t)

	cfg := LoadConfig()
	require.Equal(t, ":65432", cfg.EndpointAddr)
	require.Equal(t, "server.crt", cfg.CertFile)
	require.Equal(t, "server.key", cfg.KeyFile)
	require.Equal(t, "storage.json", cfg.StoreFile)
}

func TestLoadConfig_Flags(t *testing.T) {
	setArgs(t, "-a", ":9999", "-f", "/tmp/snap.json")

	cfg := LoadConfig()
	require.Equal(t, ":9999", cfg.EndpointAddr)
	require.Equal(t, "/tmp/snap.json", cfg.StoreFile)
	require.Equal(t, "server.crt", cfg.CertFile)
}

func TestLoadConfig_JsonOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"endpoint_addr": ":7777",
		"cert_file": "tls/cert.pem",
		"key_file": "tls/key.pem",
		"store_file": "data/storage.json"
	}`), 0o600))

	setArgs(t, "-c", path)

	cfg := LoadConfig()
	require.Equal(t, ":7777", cfg.EndpointAddr)
	require.Equal(t, "tls/cert.pem", cfg.CertFile)
	require.Equal(t, "tls/key.pem", cfg.KeyFile)
	require.Equal(t, "data/storage.json", cfg.StoreFile)
}

func TestLoadConfig_FlagsBeatJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"endpoint_addr": ":7777"}`), 0o600))

	setArgs(t, "-c", path, "-a", ":8888")

	cfg := LoadConfig()
	require.Equal(t, ":8888", cfg.EndpointAddr)
}

func TestLoadConfig_BadJsonFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	setArgs(t, "-c", path)

	cfg := LoadConfig()
	require.Equal(t, ":65432", cfg.EndpointAddr)
}

func TestLoadConfig_MissingJsonFileIgnored(t *testing.T) {
	setArgs(t, "-c", filepath.Join(t.TempDir(), "absent.json"))

	cfg := LoadConfig()
	require.Equal(t, ":65432", cfg.EndpointAddr)
}
