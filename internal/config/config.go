package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration. It is built once in main
// and handed to the components that need it.
type Config struct {
	ServerPort   int
	DatabasePath string
	JWTSecret    string
	TokenExpiry  time.Duration
	CORSOrigin   string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	expiryStr := getEnv("TOKEN_EXPIRY_MINUTES", "30")
	expiryMin, err := strconv.Atoi(expiryStr)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:   port,
		DatabasePath: getEnv("DATABASE_PATH", "./postly.db"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-do-not-ship"),
		TokenExpiry:  time.Duration(expiryMin) * time.Minute,
		CORSOrigin:   getEnv("CORS_ORIGIN", "http://localhost:3000"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
