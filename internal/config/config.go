package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all startup settings read from the environment.
type Config struct {
	// HTTP
	Port int

	// Storage backend: "memory", "postgres" or "sqlite".
	StorageBackend string
	DatabaseURL    string
	SQLitePath     string

	// Wheel definition (win probability + prize slot seed).
	WheelConfigPath string

	// Admin
	AdminPassword string

	// Logging
	LogVerbose bool
}

// Load reads configuration from the environment, first loading a .env
// file if one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: envInt("PORT", 8080),

		StorageBackend: envStr("STORAGE_BACKEND", "memory"),
		DatabaseURL:    envStr("DATABASE_URL", ""),
		SQLitePath:     envStr("SQLITE_PATH", "data/spinwheel.db"),

		WheelConfigPath: envStr("WHEEL_CONFIG_PATH", "wheel.yaml"),

		AdminPassword: envStr("ADMIN_PASSWORD", ""),

		LogVerbose: envStr("LOG_VERBOSE", "false") == "true",
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
