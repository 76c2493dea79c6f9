package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")
}

// ===== LOAD TESTS =====

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, time.Hour, cfg.JWT.AccessExpiration)
	assert.Equal(t, "Asia/Jakarta", cfg.App.Timezone)
	assert.Equal(t, 8, cfg.Payroll.MaxConcurrency)
	assert.Equal(t, 60*time.Second, cfg.Payroll.RunTimeout)
	assert.Empty(t, cfg.App.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAYROLL_MAX_CONCURRENCY", "3")
	t.Setenv("PAYROLL_RUN_TIMEOUT", "2m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Payroll.MaxConcurrency)
	assert.Equal(t, 2*time.Minute, cfg.Payroll.RunTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.AllowedOrigins)
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"non numeric port", "DB_PORT", "abc"},
		{"bad duration", "PAYROLL_RUN_TIMEOUT", "soon"},
		{"zero concurrency", "PAYROLL_MAX_CONCURRENCY", "0"},
		{"unknown timezone", "APP_TIMEZONE", "Mars/Olympus"},
		{"min above max", "DB_MIN_CONNS", "50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()

			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
}

// ===== HELPER TESTS =====

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		cfg := &Config{App: AppConfig{LogLevel: in}}
		assert.Equal(t, want, cfg.SlogLevel(), in)
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5433, User: "payroll", Password: "pw", Name: "creators", SSLMode: "require",
	}}

	assert.Equal(t, "postgres://payroll:pw@db:5433/creators?sslmode=require", cfg.DatabaseURL())
}
