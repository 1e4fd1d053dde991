package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"EXAMIZ_DB_DRIVER", "EXAMIZ_DB_DSN", "EXAMIZ_HTTP_ADDR", "EXAMIZ_CORS_ORIGINS",
		"EXAMIZ_CORS_CREDENTIALS", "EXAMIZ_REQUEST_TIMEOUT", "EXAMIZ_EXPIRY_SWEEP", "EXAMIZ_LOG_LEVEL", "EXAMIZ_USER",
	} {
		t.Setenv(k, "")
	}

	c := Load()
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Empty(t, c.DBDSN)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, c.CORSOrigins)
	assert.False(t, c.CORSCredentials)
	assert.Equal(t, 60*time.Second, c.RequestTimeout)
	assert.Equal(t, 30*time.Second, c.ExpirySweep)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.User)
	assert.False(t, c.Postgres())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("EXAMIZ_DB_DRIVER", "postgres")
	t.Setenv("EXAMIZ_DB_DSN", "postgres://localhost/examiz")
	t.Setenv("EXAMIZ_CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("EXAMIZ_CORS_CREDENTIALS", "yes")
	t.Setenv("EXAMIZ_EXPIRY_SWEEP", "0s")
	t.Setenv("EXAMIZ_REQUEST_TIMEOUT", "bogus")

	c := Load()
	assert.True(t, c.Postgres())
	assert.Equal(t, "postgres://localhost/examiz", c.DBDSN)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	assert.True(t, c.CORSCredentials)
	assert.Zero(t, c.ExpirySweep)
	assert.Equal(t, 60*time.Second, c.RequestTimeout, "unparseable durations fall back to the default")
}
