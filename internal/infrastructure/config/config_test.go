package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "quid-calculator", cfg.App.Name)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 4, cfg.Queue.Workers)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.OpenFoodFacts.Enabled)
	assert.Equal(t, "https://world.openfoodfacts.org", cfg.OpenFoodFacts.BaseURL)
	assert.Equal(t, time.Second, cfg.DedupWindow)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_QUEUE_WORKERS", "8")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEDUP_WINDOW", "250ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Queue.Workers)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.DedupWindow)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("APP_QUEUE_WORKERS", "0")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue workers")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server port"},
		{"cache size", func(c *Config) { c.Cache.MaxSize = 0 }, "cache max size"},
		{"disabled cache ignores size", func(c *Config) { c.Cache.Enabled = false; c.Cache.MaxSize = 0 }, ""},
		{"redis addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, "redis addr"},
		{"rate limit", func(c *Config) { c.RateLimit.Requests = 0 }, "rate limit"},
		{"off base url", func(c *Config) { c.OpenFoodFacts.Enabled = true; c.OpenFoodFacts.BaseURL = "" }, "openfoodfacts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
