package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.EqualError(t, err, "DATABASE_URL is required")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobboard")
	for _, key := range []string{"APP_ENV", "HTTP_ADDR", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "RATE_LIMIT_RPM", "CORS_ALLOWED_ORIGINS", "DB_AUTO_MIGRATE", "TRUSTED_PROXIES"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "development", cfg.Environment)
	require.True(t, cfg.IsDevelopment())
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 25, cfg.DBMaxOpenConns)
	require.Equal(t, 10, cfg.DBMaxIdleConns)
	require.Equal(t, 600, cfg.RateLimitRPM)
	require.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	require.True(t, cfg.DBAutoMigrate)
	require.Empty(t, cfg.TrustedProxies)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/jobboard")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_MAX_OPEN_CONNS", "4")
	t.Setenv("DB_MAX_IDLE_CONNS", "8")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")
	t.Setenv("DB_AUTO_MIGRATE", "off")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RATE_LIMIT_RPM", "not-a-number")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.10")

	cfg, err := Load()
	require.NoError(t, err)
	require.False(t, cfg.IsDevelopment())
	require.Equal(t, 4, cfg.DBMaxOpenConns)
	require.Equal(t, 4, cfg.DBMaxIdleConns)
	require.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
	require.False(t, cfg.DBAutoMigrate)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.Equal(t, 600, cfg.RateLimitRPM)
	require.Equal(t, []string{"10.0.0.0/8", "192.168.1.10"}, cfg.TrustedProxies)
}
