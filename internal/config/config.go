// Package config loads runtime settings from the environment, with a .env
// file for local development.
package config

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting the server needs.
type Config struct {
	Port          string
	DatabaseURL   string // empty: in-memory stores
	ValkeyAddr    string // empty: single-instance, no cross-node fan-out
	JWTSecret     string
	AllowedOrigin string
}

// Load reads the environment. A missing .env file is fine in production; the
// only hard requirement is the JWT secret.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:          getenv("PORT", "4000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		ValkeyAddr:    os.Getenv("VALKEY_ADDR"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AllowedOrigin: getenv("ALLOWED_ORIGIN", "http://localhost:5173"),
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
