package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt")
	t.Setenv("FRONTEND_URL", "https://app.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.Invitation.Expiry)
	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, time.Hour, cfg.Cron.MissingClockOutEvery)
	assert.True(t, cfg.Cron.Enabled)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Empty(t, cfg.SMTP.Host)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "p@ss word")
	t.Setenv("JWT_SECRET_KEY", "jwt")
	t.Setenv("RATE_LIMIT_REQUESTS", "3")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("CRON_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.RateLimit.Requests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.False(t, cfg.Cron.Enabled)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Contains(t, cfg.DatabaseURL(), "p%40ss+word")
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("JWT_SECRET_KEY", "jwt")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt")
	t.Setenv("APP_PORT", "eighty")

	_, err := Load()
	assert.ErrorContains(t, err, "APP_PORT")
}

func TestAppConfig_SlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, AppConfig{LogLevel: in}.SlogLevel(), in)
	}
}
