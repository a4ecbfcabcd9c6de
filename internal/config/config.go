// Package config reads the storefront settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"

	minJWTSecretLen = 32
)

type Config struct {
	HTTPAddr        string
	LogLevel        string
	ShutdownTimeout time.Duration

	StorageBackend string
	DatabaseURL    string

	SeedSource  string
	SeedTimeout time.Duration

	JWTSecret  string
	SessionTTL time.Duration

	AdminEmail        string
	AdminPasswordHash string

	MetricsEnabled bool
	MetricsToken   string
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

func durenvm(key string, defMin int) time.Duration {
	return time.Duration(atoienv(key, defMin)) * time.Minute
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		ShutdownTimeout:   durenvs("SHUTDOWN_TIMEOUT", 10),
		StorageBackend:    strings.ToLower(getenv("STORAGE_BACKEND", BackendMemory)),
		DatabaseURL:       getenv("DATABASE_URL", ""),
		SeedSource:        getenv("SEED_SOURCE", ""),
		SeedTimeout:       durenvs("SEED_TIMEOUT", 0),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		SessionTTL:        durenvm("SESSION_TTL", 60),
		AdminEmail:        getenv("ADMIN_EMAIL", ""),
		AdminPasswordHash: getenv("ADMIN_PASSWORD_HASH", ""),
		MetricsEnabled:    boolenv("METRICS_ENABLED", true),
		MetricsToken:      os.Getenv("METRICS_TOKEN"),
	}
}

func (c Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < minJWTSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d chars", minJWTSecretLen))
	}

	switch c.StorageBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}

	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.AdminEmail != "" && c.AdminPasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD_HASH is required when ADMIN_EMAIL is set"))
	}

	return errors.Join(errs...)
}
