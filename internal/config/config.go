// Package config provides environment configuration for the chat client.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Backend settings
	BackendURL  string
	HTTPTimeout time.Duration

	// Session registry
	RefreshDelay time.Duration

	// Debug listener (metrics + health), disabled when empty
	DebugAddr string

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Backend
		BackendURL:  getEnv("BACKEND_URL", "http://localhost:8000"),
		HTTPTimeout: getDurationEnv("HTTP_TIMEOUT", 60*time.Second),

		// Registry refresh after session creation is best-effort UX
		// smoothing, never a correctness dependency.
		RefreshDelay: getDurationEnv("SESSION_REFRESH_DELAY", 500*time.Millisecond),

		// Debug
		DebugAddr: getEnv("DEBUG_ADDR", ""),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
