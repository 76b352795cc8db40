package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"auction-engine/utils"
)

// Config holds the runtime configuration, read from the environment with an
// optional .env file on top.
type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	SweepInterval time.Duration
	EvictGrace    time.Duration
}

// Load reads configuration from .env (if present) and the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		utils.Warn("config: could not read .env file", map[string]any{"error": err.Error()})
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     getEnv("JWT_SECRET", "CHANGE_ME"),
		SweepInterval: getDuration("SWEEP_INTERVAL", time.Second),
		EvictGrace:    getDuration("EVICT_GRACE", 5*time.Minute),
	}

	if cfg.JWTSecret == "CHANGE_ME" {
		utils.Warn("config: JWT_SECRET not set, using insecure default", nil)
	}
	return cfg
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		utils.Warn("config: invalid duration, using default", map[string]any{
			"key":   key,
			"value": raw,
		})
		return fallback
	}
	return d
}
