package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Database (in-memory store is used when empty)
	DatabaseURL string

	// JWT guest tokens
	JWTSecret          string
	JWTExpirationHours int

	// Optional cross-instance event relay
	NATSURL string

	// Draft coordination
	RosterLimit        int
	SessionIdleTimeout time.Duration
	SeatReleaseGrace   time.Duration
	PickLockTimeout    time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTExpirationHours: getEnvInt("JWT_EXPIRATION_HOURS", 24),
		NATSURL:            getEnv("NATS_URL", ""),
		RosterLimit:        getEnvInt("ROSTER_LIMIT", 6),
		SessionIdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		SeatReleaseGrace:   getEnvDuration("SEAT_RELEASE_GRACE", 30*time.Second),
		PickLockTimeout:    getEnvDuration("PICK_LOCK_TIMEOUT", 2*time.Second),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if cfg.RosterLimit <= 0 {
		return nil, fmt.Errorf("ROSTER_LIMIT must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
