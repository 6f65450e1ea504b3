package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Host        string
	Port        string
	Env         string
	Timeout     time.Duration
	DatabaseDSN string
	JWTSecret   string
	JWTExpiry   time.Duration
	RateLimit   int
}

func Load() Config {
	cfg := Config{
		Host:        getEnv("SERVER_HOST", "0.0.0.0"),
		Port:        getEnv("PORT", "8000"),
		Env:         getEnv("ENV", "development"),
		Timeout:     time.Duration(getEnvInt("SERVER_TIMEOUT", 30)) * time.Second,
		DatabaseDSN: databaseDSN(),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		JWTExpiry:   time.Duration(getEnvInt("JWT_EXPIRY", 1440)) * time.Minute,
		RateLimit:   getEnvInt("RATE_LIMIT", 60),
	}

	if cfg.Env == "production" && cfg.JWTSecret == "dev-secret-change-in-production" {
		slog.Error("JWT_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

// databaseDSN builds a Postgres DSN from the discrete DB_* variables unless a
// full DATABASE_DSN overrides them.
func databaseDSN() string {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		return dsn
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "geotrack"),
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer environment variable, using fallback", "key", key, "value", v)
		return fallback
	}
	return n
}
