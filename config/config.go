/*
Package config loads server configuration from the environment.

SOURCES (later wins):
  1. Built-in defaults
  2. A .env file in the working directory, when present (godotenv)
  3. Process environment
  4. Command-line flags applied by cmd/server

VARIABLES:
  PORT                  HTTP port (default 8080)
  DB_PATH               SQLite path, ":memory:" allowed (default amortization.db)
  REDIS_ADDR            host:port of Redis; empty disables the cache
  CACHE_TTL             Go duration for cached schedules (default 10m)
  LOG_LEVEL             debug | info | warn | error (default info)
  LOG_FORMAT            text | json (default text)
  CORS_ALLOWED_ORIGINS  comma-separated origins
  MAX_TERM_MONTHS       largest term the API accepts (default 600)

A malformed numeric or duration value is an error rather than a silent
fallback to the default.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server configuration.
type Config struct {
	Port           int
	DBPath         string
	RedisAddr      string
	CacheTTL       time.Duration
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	MaxTermMonths  int
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:           8080,
		DBPath:         "amortization.db",
		CacheTTL:       10 * time.Minute,
		LogLevel:       "info",
		LogFormat:      "text",
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		MaxTermMonths:  600,
	}
}

// Load reads .env (if present) and the environment on top of Default.
func Load() (Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the process environment on top of Default.
func FromEnv() (Config, error) {
	cfg := Default()
	var errs []error

	cfg.Port = envInt("PORT", cfg.Port, &errs)
	cfg.DBPath = envString("DB_PATH", cfg.DBPath)
	cfg.RedisAddr = envString("REDIS_ADDR", cfg.RedisAddr)
	cfg.CacheTTL = envDuration("CACHE_TTL", cfg.CacheTTL, &errs)
	cfg.LogLevel = strings.ToLower(envString("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(envString("LOG_FORMAT", cfg.LogFormat))
	cfg.MaxTermMonths = envInt("MAX_TERM_MONTHS", cfg.MaxTermMonths, &errs)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges. It is called by Load and again by cmd/server
// after flag overrides.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH must not be empty"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL))
	}
	if c.MaxTermMonths <= 0 {
		errs = append(errs, fmt.Errorf("MAX_TERM_MONTHS must be positive, got %d", c.MaxTermMonths))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// CacheEnabled reports whether a Redis address is configured.
func (c Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func envDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
