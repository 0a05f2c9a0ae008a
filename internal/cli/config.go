package cli

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds server configuration. Flags override environment variables,
// which override an optional .env file.
type Config struct {
	Port       int
	AdminToken string
	LogLevel   string
}

// DefaultConfig returns a Config seeded from the environment
func DefaultConfig() *Config {
	// A missing .env file is fine
	_ = godotenv.Load()

	return &Config{
		Port:       getEnvIntOrDefault("SHIFTMAZE_PORT", 8080),
		AdminToken: os.Getenv("SHIFTMAZE_ADMIN_TOKEN"),
		LogLevel:   getEnvOrDefault("SHIFTMAZE_LOG_LEVEL", "info"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
