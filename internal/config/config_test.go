package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mtg-price-finder/internal/stores"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL())
	assert.Equal(t, time.Second, cfg.LineDelay())
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout())
	assert.Equal(t, 100*time.Millisecond, cfg.RateLimit())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())

	policy := cfg.RetryPolicy()
	assert.Equal(t, 4, policy.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, policy.BaseDelay)
	assert.Equal(t, 2.0, policy.Multiplier)
	assert.NotNil(t, policy.Retryable)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().Server, cfg.Server)
	assert.Len(t, cfg.Stores, len(stores.Declared))
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9090

[stores.401games]
renderer = "chrome"

[pricing]
base_delay = "250ms"

[deck]
exclude_special = true

[app]
debug_mode = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host, "unset fields keep defaults")
	assert.Equal(t, RendererChrome, cfg.Stores["401games"].Renderer)
	assert.Equal(t, RendererHTTP, cfg.Stores["facetoface"].Renderer)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryPolicy().BaseDelay)
	assert.Equal(t, 4, cfg.Pricing.MaxAttempts)
	assert.True(t, cfg.Deck.ExcludeSpecial)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvPort, "7000")
	t.Setenv(EnvDBPath, "/tmp/override.db")
	t.Setenv(EnvRateURL, "http://rates.local/usd")

	cfg, err := Load(writeConfig(t, "[server]\nport = 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/tmp/override.db", cfg.Catalog.DBPath)
	assert.Equal(t, "http://rates.local/usd", cfg.Currency.RateURL)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "[server\nport = "))
	assert.Error(t, err)

	t.Setenv(EnvPort, "not-a-port")
	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad duration", func(c *Config) { c.Deck.LineDelay = "soon" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"zero attempts", func(c *Config) { c.Pricing.MaxAttempts = 0 }},
		{"shrinking backoff", func(c *Config) { c.Pricing.Multiplier = 0.5 }},
		{"unknown store", func(c *Config) { c.Stores["cardkingdom"] = StoreConfig{} }},
		{"unknown renderer", func(c *Config) { c.Stores["facetoface"] = StoreConfig{Renderer: "curl"} }},
		{"bad fallback", func(c *Config) { c.Currency.FallbackRate = 0 }},
		{"bad log format", func(c *Config) { c.App.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.Server.Port = 8181
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8181, loaded.Server.Port)
}
