package config

import (
	"log/slog"
	"os"
	"time"
)

// Config holds all runtime settings, loaded once at startup.
type Config struct {
	Port              string
	Env               string
	DatabaseDSN       string
	JWTSecret         string
	SessionTokenTTL   time.Duration
	ResetTokenTTL     time.Duration
	ErrorLogRetention time.Duration
	ErrorLogSweep     time.Duration
}

// Load reads configuration from the environment. The process cannot start
// without a signing secret, so an empty JWT_SECRET is fatal.
func Load() Config {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		DatabaseDSN:       getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/taskpad?parseTime=true"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		SessionTokenTTL:   7 * 24 * time.Hour,
		ResetTokenTTL:     time.Hour,
		ErrorLogRetention: 30 * 24 * time.Hour,
		ErrorLogSweep:     time.Hour,
	}

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET must be set")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
