package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// devJWTSecret is only accepted outside production.
const devJWTSecret = "quill-dev-secret-change-me"

// JWTConfig is injected into the auth guard. It is read once at startup and never mutated.
type JWTConfig struct {
	Secret string
	Issuer string
	Expiry time.Duration
}

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	LogLevel                string
	JWT                     JWTConfig

	// Warnings collects non-fatal problems found while loading; logged by the caller.
	Warnings []string
}

// Load reads configuration from the environment after loading an optional .env file.
func Load() *Config {
	envErr := godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "quill"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", "quill"),
			Expiry: 72 * time.Hour,
		},
	}

	if envErr != nil {
		cfg.Warnings = append(cfg.Warnings, "no .env file found, using process environment")
	}
	if v := os.Getenv("JWT_EXPIRY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.JWT.Expiry = d
		} else {
			cfg.Warnings = append(cfg.Warnings, "JWT_EXPIRY is not a positive duration, using 72h")
		}
	}
	return cfg
}

// Validate checks required settings. Outside production a missing JWT secret
// falls back to a development secret and records a warning.
func (c *Config) Validate() error {
	var errs []error
	if c.PostgresConnStr == "" {
		errs = append(errs, errors.New("POSTGRES_CONN_STR environment variable not set"))
	}
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI environment variable not set"))
	}
	if c.JWT.Secret == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		} else {
			c.JWT.Secret = devJWTSecret
			c.Warnings = append(c.Warnings, "JWT_SECRET not set, using development secret")
		}
	}
	return errors.Join(errs...)
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
