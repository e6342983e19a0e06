package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Env              string
	LogLevel         string
	APIBaseURL       string
	APITimeout       time.Duration
	SessionFile      string
	ChatPollInterval time.Duration
	StubPort         string
	StubJWTSecret    string
	StubTokenTTL     time.Duration
	MetricsEnabled   bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:              getEnv("ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		APIBaseURL:       strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080/api"), "/"),
		APITimeout:       getEnvAsDuration("API_TIMEOUT", 20*time.Second),
		SessionFile:      getEnv("SESSION_FILE", defaultSessionFile()),
		ChatPollInterval: getEnvAsDuration("CHAT_POLL_INTERVAL", 3*time.Second),
		StubPort:         getEnv("STUB_PORT", "8080"),
		StubJWTSecret:    getEnv("STUB_JWT_SECRET", "dev-only-secret"),
		StubTokenTTL:     getEnvAsDuration("STUB_TOKEN_TTL", 24*time.Hour),
		MetricsEnabled:   getEnvAsBool("METRICS_ENABLED", true),
	}
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clinicdesk-session.json"
	}
	return home + string(os.PathSeparator) + ".clinicdesk-session.json"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
