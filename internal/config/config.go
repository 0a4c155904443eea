// Package config reads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/neexbeast/weather-widget/internal/weather"
)

// Preference backends.
const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// ErrInvalidConfig wraps every validation failure from Load.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the server settings read by Load.
type Config struct {
	ApplicationName string
	Port            string
	LogLevel        string

	GeocodingURL  string
	ForecastURL   string
	HTTPTimeout   time.Duration
	UpstreamRPS   float64
	UpstreamBurst int

	RateLimitPerMinute int

	PrefsBackend string
	SQLitePath   string
	RedisURL     string
	DatabaseURL  string
}

// Load reads the environment, applying defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APPLICATION_NAME", "weather-widget")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GEOCODING_URL", weather.DefaultGeocodingURL)
	v.SetDefault("FORECAST_URL", weather.DefaultForecastURL)
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("UPSTREAM_RPS", 5)
	v.SetDefault("UPSTREAM_BURST", 2)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("PREFS_BACKEND", BackendSQLite)
	v.SetDefault("SQLITE_PATH", "weather-prefs.db")

	cfg := &Config{
		ApplicationName:    v.GetString("APPLICATION_NAME"),
		Port:               v.GetString("PORT"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		GeocodingURL:       v.GetString("GEOCODING_URL"),
		ForecastURL:        v.GetString("FORECAST_URL"),
		HTTPTimeout:        v.GetDuration("HTTP_TIMEOUT"),
		UpstreamRPS:        v.GetFloat64("UPSTREAM_RPS"),
		UpstreamBurst:      v.GetInt("UPSTREAM_BURST"),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		PrefsBackend:       v.GetString("PREFS_BACKEND"),
		SQLitePath:         v.GetString("SQLITE_PATH"),
		RedisURL:           v.GetString("REDIS_URL"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: HTTP_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.UpstreamRPS < 0 || c.UpstreamBurst < 0 || c.RateLimitPerMinute < 0 {
		return fmt.Errorf("%w: rate limits must not be negative", ErrInvalidConfig)
	}

	switch c.PrefsBackend {
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: SQLITE_PATH is required for the sqlite backend", ErrInvalidConfig)
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: REDIS_URL is required for the redis backend", ErrInvalidConfig)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for the postgres backend", ErrInvalidConfig)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: unknown PREFS_BACKEND %q", ErrInvalidConfig, c.PrefsBackend)
	}
	return nil
}
