package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, "https://raw-backend47.vercel.app", cfg.EventsAPI.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.EventsAPI.Timeout)
	assert.Equal(t, "event-commits", cfg.Redis.Channel)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "./prefs.db", cfg.Prefs.Path)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("EVENTS_API_URL", "http://localhost:4000")
	t.Setenv("EVENTS_API_TIMEOUT", "3s")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "http://localhost:4000", cfg.EventsAPI.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.EventsAPI.Timeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "soon")
	t.Setenv("REDIS_ENABLED", "definitely")

	cfg := Load()

	assert.Equal(t, time.Duration(0), cfg.Server.ReadTimeout)
	assert.False(t, cfg.Redis.Enabled)
}
