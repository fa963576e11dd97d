package config

import (
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	// RedisAddr enables Redis-backed save slots when set. Empty means
	// saves live in process memory only.
	RedisAddr   string
	Environment string
	LogLevel    slog.Level
}

func Load() *Config {
	return &Config{
		RedisAddr:   getEnv("REDIS_URL", ""),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
