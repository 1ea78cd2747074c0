// Package config provides environment-driven configuration for the workload
// manager server.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Config holds server configuration resolved from the environment.
type Config struct {
	Port            int
	DatabaseURL     string
	RulesPath       string // optional rule-table override file
	RulesSchemaPath string // JSON Schema the override is validated against
	AllowedOrigins  []string
	LogLevel        string
}

// defaultAllowedOrigins covers the local frontend dev and preview hosts.
var defaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"http://localhost:4173",
	"http://127.0.0.1:4173",
}

// Load reads configuration from the environment. DATABASE_URL is required;
// everything else has a default.
func Load() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	databaseURL, err := NormalizeDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err = strconv.Atoi(portStr)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("invalid PORT value: %s", portStr)
		}
	}

	origins := defaultAllowedOrigins
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = nil
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		Port:            port,
		DatabaseURL:     databaseURL,
		RulesPath:       os.Getenv("RULES_PATH"),
		RulesSchemaPath: os.Getenv("RULES_SCHEMA_PATH"),
		AllowedOrigins:  origins,
		LogLevel:        logLevel,
	}, nil
}

// NormalizeDatabaseURL fixes up connection URLs as handed out by hosted
// Postgres providers: the legacy postgres:// scheme is accepted alongside
// postgresql://, and sslmode=require is appended for non-local hosts that do
// not specify one.
func NormalizeDatabaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
	default:
		return "", fmt.Errorf("invalid DATABASE_URL scheme: %s", u.Scheme)
	}

	host := u.Hostname()
	local := host == "localhost" || host == "127.0.0.1" || host == "::1"

	query := u.Query()
	if !local && query.Get("sslmode") == "" {
		query.Set("sslmode", "require")
		u.RawQuery = query.Encode()
	}

	return u.String(), nil
}
