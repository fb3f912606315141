package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings for the server.
type Config struct {
	PostgresURL string
	JWTSecret   string
	Port        string
	CORSOrigins []string
}

// Load reads configuration from a .env file (if present) and the
// environment. POSTGRES_URL and JWT_SECRET are required.
func Load() (*Config, error) {
	// A missing .env is fine; containers inject the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		PostgresURL: os.Getenv("POSTGRES_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		Port:        "8080",
		CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}

	if cfg.PostgresURL == "" {
		return nil, errors.New("POSTGRES_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = cfg.CORSOrigins[:0]
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	return &cfg, nil
}
