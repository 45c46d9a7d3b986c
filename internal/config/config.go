package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		Host         string
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		IdleTimeout  time.Duration
	}
	EventsAPI struct {
		BaseURL string
		Timeout time.Duration
	}
	Redis struct {
		URL     string
		Channel string
		Enabled bool
	}
	Prefs struct {
		Path string
	}
	LogLevel string
}

// Load reads configuration from the environment, with a local .env file
// honored when present.
func Load() *Config {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server configuration
	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.Server.Port = getEnv("SERVER_PORT", "8080")
	cfg.Server.ReadTimeout = getEnvAsDuration("SERVER_READ_TIMEOUT", "10s")
	cfg.Server.WriteTimeout = getEnvAsDuration("SERVER_WRITE_TIMEOUT", "10s")
	cfg.Server.IdleTimeout = getEnvAsDuration("SERVER_IDLE_TIMEOUT", "60s")

	// Upstream events API
	cfg.EventsAPI.BaseURL = getEnv("EVENTS_API_URL", "https://raw-backend47.vercel.app")
	cfg.EventsAPI.Timeout = getEnvAsDuration("EVENTS_API_TIMEOUT", "10s")

	// Redis notifications (optional)
	cfg.Redis.URL = getEnv("REDIS_URL", "redis://localhost:6379")
	cfg.Redis.Channel = getEnv("REDIS_CHANNEL", "event-commits")
	cfg.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", false)

	// Local preferences
	cfg.Prefs.Path = getEnv("PREFS_PATH", "./prefs.db")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	val := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(val)
	if err != nil {
		return time.Duration(0)
	}
	return duration
}

func getEnvAsBool(key string, defaultValue bool) bool {
	val := getEnv(key, strconv.FormatBool(defaultValue))
	boolVal, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return boolVal
}
