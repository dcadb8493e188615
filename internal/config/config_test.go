package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{
		"GEMINI_API_KEY", "GEMINI_MODEL", "GENERATION_TEMPERATURE", "GENERATION_TIMEOUT",
		"DATABASE_DRIVER", "DATABASE_URL", "SERVICE_DATABASE_URL", "CACHE_WRITE_TIMEOUT",
		"AUTH_JWT_SECRET", "AUTH_URL", "AUTH_API_KEY", "CORS_ALLOWED_ORIGIN", "HTTP_PORT", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	// empty numeric and duration values fall back to defaults
	cfg := LoadConfig()

	assert.Equal(t, float32(0.8), cfg.GenerationTemperature)
	assert.Equal(t, 60*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 10*time.Second, cfg.CacheWriteTimeout)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("GEMINI_MODEL", "gemini-x")
	t.Setenv("GENERATION_TEMPERATURE", "0.5")
	t.Setenv("GENERATION_TIMEOUT", "5s")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://app@db/planos")
	t.Setenv("SERVICE_DATABASE_URL", "")
	t.Setenv("AUTH_URL", "https://auth.example.com/")
	t.Setenv("AUTH_API_KEY", "anon")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadConfig()

	assert.Equal(t, "gemini-x", cfg.GeminiModel)
	assert.Equal(t, float32(0.5), cfg.GenerationTemperature)
	assert.Equal(t, 5*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, "postgres://app@db/planos", cfg.ServiceDatabaseURL, "service DSN falls back to DATABASE_URL")
	assert.Equal(t, "https://auth.example.com", cfg.AuthURL)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestValidate_ReportsEveryMissingKey(t *testing.T) {
	cfg := &Config{DatabaseDriver: "mysql"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissing))
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
}

func TestValidate_JWTSecretIsEnoughForAuth(t *testing.T) {
	cfg := &Config{
		GeminiAPIKey:   "k",
		DatabaseDriver: DriverSQLite,
		DatabaseURL:    ":memory:",
		AuthJWTSecret:  "secret",
	}
	require.NoError(t, cfg.Validate())
}
