package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SHAREIT_DB_PATH", "/tmp/shareit-test.db")

	path := writeConfig(t, `
app:
  name: shareit
  environment: test
server:
  port: 9191
  page_size: 5
gateway:
  server_url: "http://server:9191"
  request_timeout: 3s
  rate_limit:
    enabled: true
    requests: 20
    window: 30s
database:
  path: "${SHAREIT_DB_PATH}"
redis:
  address: "localhost:6379"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Server.PageSize)
	assert.Equal(t, "/tmp/shareit-test.db", cfg.Database.Path)
	assert.Equal(t, "http://server:9191", cfg.Gateway.ServerURL)
	assert.Equal(t, 3*time.Second, cfg.Gateway.RequestTimeout)
	assert.Equal(t, 20, cfg.Gateway.RateLimit.Requests)
	assert.Equal(t, 30*time.Second, cfg.Gateway.RateLimit.Window)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: shareit\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8080, cfg.Gateway.Port)
	assert.Equal(t, 10, cfg.Server.PageSize)
	assert.Equal(t, "http://localhost:9090", cfg.Gateway.ServerURL)
	assert.Equal(t, "data/shareit.db", cfg.Database.Path)
	assert.Equal(t, 60*time.Second, cfg.Gateway.RateLimit.Window)
	assert.Zero(t, cfg.Monitoring.ServerPrometheusPort)
	assert.Zero(t, cfg.Gateway.Retry.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.Gateway.Retry.InitialDelay)
}

func TestLoadShippedConfig(t *testing.T) {
	t.Setenv("SHAREIT_SERVER_URL", "http://server:9090")

	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://server:9090", cfg.Gateway.ServerURL)
	assert.Equal(t, 2, cfg.Gateway.Retry.MaxRetries)
	assert.True(t, cfg.Gateway.RateLimit.Enabled)
	assert.Equal(t, 9101, cfg.Monitoring.GatewayPrometheusPort)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		c := Config{}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"zero page size", func(c *Config) { c.Server.PageSize = 0 }, true},
		{"bad server url", func(c *Config) { c.Gateway.ServerURL = "server:9090" }, true},
		{"negative retries", func(c *Config) { c.Gateway.Retry.MaxRetries = -1 }, true},
		{"rate limit without window", func(c *Config) {
			c.Gateway.RateLimit.Enabled = true
			c.Gateway.RateLimit.Window = 0
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
