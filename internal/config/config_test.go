package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/weather-widget/internal/config"
	"github.com/neexbeast/weather-widget/internal/weather"
)

func TestLoad_Defaults(t *testing.T) {
	// Empty variables count as unset.
	for _, k := range []string{"PORT", "LOG_LEVEL", "HTTP_TIMEOUT", "UPSTREAM_RPS", "UPSTREAM_BURST",
		"RATE_LIMIT_PER_MINUTE", "PREFS_BACKEND", "SQLITE_PATH", "GEOCODING_URL", "FORECAST_URL"} {
		t.Setenv(k, "")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, weather.DefaultGeocodingURL, cfg.GeocodingURL)
	assert.Equal(t, weather.DefaultForecastURL, cfg.ForecastURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5.0, cfg.UpstreamRPS)
	assert.Equal(t, 2, cfg.UpstreamBurst)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, config.BackendSQLite, cfg.PrefsBackend)
	assert.Equal(t, "weather-prefs.db", cfg.SQLitePath)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("UPSTREAM_RPS", "0.5")
	t.Setenv("PREFS_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 0.5, cfg.UpstreamRPS)
	assert.Equal(t, config.BackendRedis, cfg.PrefsBackend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoad_MissingBackendURL(t *testing.T) {
	tests := []struct {
		backend string
		env     string
	}{
		{config.BackendRedis, "REDIS_URL"},
		{config.BackendPostgres, "DATABASE_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			t.Setenv("PREFS_BACKEND", tt.backend)
			t.Setenv(tt.env, "")

			_, err := config.Load()
			require.ErrorIs(t, err, config.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.env)
		})
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("PREFS_BACKEND", "etcd")

	_, err := config.Load()
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLoad_MemoryNeedsNothing(t *testing.T) {
	t.Setenv("PREFS_BACKEND", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.PrefsBackend)
}

func TestLoad_BadTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "0s")

	_, err := config.Load()
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}
