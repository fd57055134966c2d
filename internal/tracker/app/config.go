package app

import (
	"os"
	"strconv"
)

type Config struct {
	DatabaseFile string // Optional: path to SQLite database file (default: ./healthtrack.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)
	Env          string // Environment (dev, staging, prod) (default: dev)
	LogLevel     string // Log level (debug, info, warn, error) (default: info)
	LogFormat    string // Log format (json, text) (default: text)

	LoginAttemptsPerMinute int // Optional: login attempts allowed per minute per username (default: 10)
	LoginBurst             int // Optional: login attempt burst per username (default: 5)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile:           getEnvOrDefault("HEALTHTRACK_DATABASE_FILE", "healthtrack.db"),
		PepperFile:             getEnvOrDefault("HEALTHTRACK_PEPPER_FILE", "pepper"),
		Env:                    getEnvOrDefault("ENV", "dev"),
		LogLevel:               getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:              getEnvOrDefault("LOG_FORMAT", "text"),
		LoginAttemptsPerMinute: getEnvIntOrDefault("HEALTHTRACK_LOGIN_ATTEMPTS_PER_MINUTE", 10),
		LoginBurst:             getEnvIntOrDefault("HEALTHTRACK_LOGIN_BURST", 5),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}
