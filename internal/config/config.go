package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	GeminiAPIKey          string
	GeminiModel           string
	GenerationTemperature float32
	GenerationTimeout     time.Duration

	DatabaseDriver     string
	DatabaseURL        string
	ServiceDatabaseURL string
	CacheWriteTimeout  time.Duration

	AuthJWTSecret string
	AuthURL       string
	AuthAPIKey    string

	CORSAllowedOrigin string
	HTTPPort          string
	LogLevel          string
}

// ErrMissing is wrapped by Validate for every absent required setting.
var ErrMissing = errors.New("missing required configuration")

func LoadConfig() *Config {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GenerationTemperature: getEnvAsFloat("GENERATION_TEMPERATURE", 0.8),
		GenerationTimeout:     getEnvAsDuration("GENERATION_TIMEOUT", 60*time.Second),
		DatabaseDriver:        strings.ToLower(getEnv("DATABASE_DRIVER", DriverSQLite)),
		DatabaseURL:           getEnv("DATABASE_URL", "planos_de_aula.db"),
		ServiceDatabaseURL:    getEnv("SERVICE_DATABASE_URL", ""),
		CacheWriteTimeout:     getEnvAsDuration("CACHE_WRITE_TIMEOUT", 10*time.Second),
		AuthJWTSecret:         getEnv("AUTH_JWT_SECRET", ""),
		AuthURL:               strings.TrimRight(getEnv("AUTH_URL", ""), "/"),
		AuthAPIKey:            getEnv("AUTH_API_KEY", ""),
		CORSAllowedOrigin:     getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:5173"),
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		LogLevel:              strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
	}

	if cfg.ServiceDatabaseURL == "" {
		cfg.ServiceDatabaseURL = cfg.DatabaseURL
	}

	return cfg
}

// Validate reports every missing or inconsistent setting at once. A server
// with an invalid config still starts, but refuses to generate plans.
func (c *Config) Validate() error {
	var errs []error

	if c.GeminiAPIKey == "" {
		errs = append(errs, missing("GEMINI_API_KEY"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, missing("DATABASE_URL"))
	}
	if c.DatabaseDriver != DriverSQLite && c.DatabaseDriver != DriverPostgres {
		errs = append(errs, errors.New("DATABASE_DRIVER must be sqlite or postgres, got "+strconv.Quote(c.DatabaseDriver)))
	}
	if c.AuthJWTSecret == "" && (c.AuthURL == "" || c.AuthAPIKey == "") {
		errs = append(errs, missing("AUTH_JWT_SECRET or AUTH_URL+AUTH_API_KEY"))
	}

	return errors.Join(errs...)
}

func missing(key string) error {
	return &missingError{key: key}
}

type missingError struct{ key string }

func (e *missingError) Error() string { return ErrMissing.Error() + ": " + e.key }
func (e *missingError) Unwrap() error { return ErrMissing }

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
