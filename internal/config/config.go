// Package config reads process configuration from EXAMIZ_* environment
// variables.
package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	DBDriver string // sqlite|postgres
	DBDSN    string // empty means the default SQLite path

	HTTPAddr        string
	CORSOrigins     []string
	CORSCredentials bool
	RequestTimeout  time.Duration

	// ExpirySweep is how often overdue sessions are auto-submitted by the
	// server. Zero disables the sweeper.
	ExpirySweep time.Duration

	LogLevel string

	// User is the default acting user of CLI commands.
	User string
}

func Load() Config {
	return Config{
		DBDriver:        envOr("EXAMIZ_DB_DRIVER", "sqlite"),
		DBDSN:           envOr("EXAMIZ_DB_DSN", ""),
		HTTPAddr:        envOr("EXAMIZ_HTTP_ADDR", ":8080"),
		CORSOrigins:     csvOr("EXAMIZ_CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		CORSCredentials: envBool("EXAMIZ_CORS_CREDENTIALS", false),
		RequestTimeout:  envDuration("EXAMIZ_REQUEST_TIMEOUT", 60*time.Second),
		ExpirySweep:     envDuration("EXAMIZ_EXPIRY_SWEEP", 30*time.Second),
		LogLevel:        envOr("EXAMIZ_LOG_LEVEL", "info"),
		User:            envOr("EXAMIZ_USER", ""),
	}
}

// Postgres reports whether the configured driver is Postgres.
func (c Config) Postgres() bool {
	return c.DBDriver == "postgres" || c.DBDriver == "pgx"
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
