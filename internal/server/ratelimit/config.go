package ratelimit

import (
	"os"
	"strconv"
	"time"
)

// Config holds the rate-limit budgets. Reads and writes are budgeted
// separately: list/summary polling is cheap, mutations are not.
type Config struct {
	Enabled           bool
	ReadCapacity      int
	ReadRefillPerSec  float64
	WriteCapacity     int
	WriteRefillPerSec float64
	CleanupInterval   time.Duration
}

// DefaultConfig returns the built-in budgets.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		ReadCapacity:      120,
		ReadRefillPerSec:  2.0,
		WriteCapacity:     30,
		WriteRefillPerSec: 0.5,
		CleanupInterval:   5 * time.Minute,
	}
}

// LoadConfig reads budgets from the environment, falling back to defaults.
// RATE_LIMIT_ENABLED=false disables limiting entirely.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = enabled
		}
	}
	if v := os.Getenv("RATE_LIMIT_READ_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReadCapacity = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_READ_REFILL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.ReadRefillPerSec = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_WRITE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WriteCapacity = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_WRITE_REFILL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.WriteRefillPerSec = f
		}
	}

	return cfg
}
