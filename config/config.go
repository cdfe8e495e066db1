// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// StoreDriver selects persistence: "json" (default) or "sqlite".
	StoreDriver string

	// StorePath is the JSON file or SQLite database path.
	StorePath string

	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string

	// RefreshSpec is the cron expression for the nightly paid-off refresh.
	// Empty disables the scheduler.
	RefreshSpec string
}

// Load reads the environment. A missing .env file is not an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getenv("PORT", "8080"),
		StoreDriver: getenv("STORE_DRIVER", "json"),
		StorePath:   getenv("STORE_PATH", "dados.json"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		RefreshSpec: getenv("REFRESH_SPEC", "0 3 * * *"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
