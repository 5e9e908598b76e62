package logger

import (
	"os"
	"strings"
)

// Config holds logger configuration read from the environment.
type Config struct {
	Level  string
	Format string
}

// DefaultConfig reads logger settings from environment variables, falling back
// to JSON at info level.
func DefaultConfig() *Config {
	return &Config{
		Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
