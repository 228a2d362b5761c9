package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("MONGO_DATABASE", "")
	t.Setenv("PORT", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "quill", cfg.MongoDatabase)
	assert.Equal(t, 72*time.Hour, cfg.JWT.Expiry)
}

func TestLoad_JWTExpiry(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "15m")
	assert.Equal(t, 15*time.Minute, Load().JWT.Expiry)

	t.Setenv("JWT_EXPIRY", "soon")
	cfg := Load()
	assert.Equal(t, 72*time.Hour, cfg.JWT.Expiry)
	assert.NotEmpty(t, cfg.Warnings)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{PostgresConnStr: "postgres://x", MongoURI: "mongodb://x", Env: "development"}
	}

	t.Run("dev falls back to dev secret", func(t *testing.T) {
		cfg := base()
		require.NoError(t, cfg.Validate())
		assert.Equal(t, devJWTSecret, cfg.JWT.Secret)
		assert.Len(t, cfg.Warnings, 1)
	})

	t.Run("production requires secret", func(t *testing.T) {
		cfg := base()
		cfg.Env = "production"
		assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")
	})

	t.Run("missing stores", func(t *testing.T) {
		cfg := &Config{JWT: JWTConfig{Secret: "s"}}
		err := cfg.Validate()
		assert.ErrorContains(t, err, "POSTGRES_CONN_STR")
		assert.ErrorContains(t, err, "MONGO_URI")
	})
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, (&Config{LogLevel: in}).SlogLevel(), in)
	}
}
