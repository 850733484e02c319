package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries all server settings. Values come from the environment
// (a .env file is loaded by the CLI before this runs).
type Config struct {
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIHost string
	APIPort string

	// Timezone used when a reading arrives without a timestamp.
	Timezone string

	// Minimum accepted interval between readings from the same device.
	IngestMinInterval time.Duration

	OTPExpiry  time.Duration
	PendingTTL time.Duration
	SessionTTL time.Duration

	ResendAPIKey string
	FromEmail    string

	AppEnv string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		APIHost:           getEnv("API_HOST", "0.0.0.0"),
		APIPort:           getEnv("API_PORT", "8080"),
		Timezone:          getEnv("SERVER_TIMEZONE", "Asia/Jakarta"),
		IngestMinInterval: time.Duration(getEnvInt("INGEST_MIN_INTERVAL", 30)) * time.Second,
		OTPExpiry:         time.Duration(getEnvInt("OTP_EXPIRATION", 300)) * time.Second,
		PendingTTL:        time.Duration(getEnvInt("PENDING_SESSION_TTL", 600)) * time.Second,
		SessionTTL:        time.Duration(getEnvInt("SESSION_TTL", 43200)) * time.Second,
		ResendAPIKey:      os.Getenv("RESEND_API_KEY"),
		FromEmail:         getEnv("FROM_EMAIL", "noreply@thermolog.io"),
		AppEnv:            getEnv("APP_ENV", "development"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid SERVER_TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// Location resolves the configured timezone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
