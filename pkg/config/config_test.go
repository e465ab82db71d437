package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hwscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "0.0.0.0", cfg.API.Host)
	assert.Equal(t, 8047, cfg.API.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Setenv("HWSCAN_TEST_LIB", "/opt/hwscan/lib/libenc_dec_hwscan.so")
	t.Setenv("HWSCAN_TEST_KEY", "k3y")

	path := writeConfig(t, `
library:
  path: ${HWSCAN_TEST_LIB}
cache:
  ttl: 30s
api:
  port: 9000
platform:
  url: https://platform.example.com
  api_key: ${HWSCAN_TEST_KEY}
log:
  level: debug
  development: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/hwscan/lib/libenc_dec_hwscan.so", cfg.Library.Path)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "0.0.0.0", cfg.API.Host)
	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, "https://platform.example.com", cfg.Platform.URL)
	assert.Equal(t, "k3y", cfg.Platform.APIKey)
	assert.Empty(t, cfg.Platform.NodeID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "api: [\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"fixture with path", func(c *Config) { c.Fixture = "f.yaml"; c.Library.Path = "lib.so" }},
		{"fixture with static", func(c *Config) { c.Fixture = "f.yaml"; c.Library.Static = true }},
		{"static with path", func(c *Config) { c.Library.Static = true; c.Library.Path = "lib.so" }},
		{"port", func(c *Config) { c.API.Port = 70000 }},
		{"ttl", func(c *Config) { c.Cache.TTL = -time.Second }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "library:\n  static: true\n  path: lib.so\n"))
	assert.Error(t, err)
}
