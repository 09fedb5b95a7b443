package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings shared by the server, the CLI and the scheduler.
type Config struct {
	DatabaseURL      string
	ServerPort       string
	AllowedOrigins   string
	LogLevel         string
	LogFormat        string
	RedisAddress     string
	AlertDeduplicate bool
	ExpiryWindowDays int
	CronLowStock     string
	CronExpiringLots string
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function. Tests pass a map-backed lookup.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getenv("DATABASE_URL"),
		ServerPort:       withDefault(getenv("SERVER_PORT"), "8080"),
		AllowedOrigins:   getenv("ALLOWED_ORIGINS"),
		LogLevel:         withDefault(getenv("LOG_LEVEL"), "info"),
		LogFormat:        strings.ToLower(withDefault(getenv("LOG_FORMAT"), "json")),
		RedisAddress:     getenv("REDIS_ADDRESS"),
		ExpiryWindowDays: 7,
		CronLowStock:     withDefault(getenv("CRON_LOW_STOCK"), "0 * * * *"),
		CronExpiringLots: withDefault(getenv("CRON_EXPIRING_LOTS"), "0 8 * * *"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat)
	}

	if v := getenv("ALERT_DEDUPLICATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ALERT_DEDUPLICATE %q: %w", v, err)
		}
		cfg.AlertDeduplicate = b
	}

	if v := getenv("EXPIRY_WINDOW_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EXPIRY_WINDOW_DAYS %q: %w", v, err)
		}
		if days < 1 {
			return nil, fmt.Errorf("EXPIRY_WINDOW_DAYS must be at least 1, got %d", days)
		}
		cfg.ExpiryWindowDays = days
	}

	return cfg, nil
}

func withDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
