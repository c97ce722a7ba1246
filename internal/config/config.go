// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and BUSYSPOT_ env vars.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Source drivers.
const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// LookupPath is where the trained frequency table is published.
	LookupPath string `koanf:"lookup_path"`

	// Desk-usage log source.
	DeskLogsDriver  string `koanf:"desk_logs_driver"`
	DeskLogsPath    string `koanf:"desk_logs_path"`
	DeskLogsTable   string `koanf:"desk_logs_table"`
	DeskColumn      string `koanf:"desk_column"`
	TimestampColumn string `koanf:"timestamp_column"`

	// Feedback source.
	FeedbackDriver     string `koanf:"feedback_driver"`
	FeedbackPath       string `koanf:"feedback_path"`
	FeedbackDSN        string `koanf:"feedback_dsn"`
	FeedbackTable      string `koanf:"feedback_table"`
	FeedbackWindowDays int    `koanf:"feedback_window_days"`

	// Weather provider.
	WeatherEnabled      bool    `koanf:"weather_enabled"`
	WeatherBaseURL      string  `koanf:"weather_base_url"`
	WeatherLatitude     float64 `koanf:"weather_latitude"`
	WeatherLongitude    float64 `koanf:"weather_longitude"`
	WeatherTimeoutMS    int     `koanf:"weather_timeout_ms"`
	WeatherPastDays     int     `koanf:"weather_past_days"`
	WeatherForecastDays int     `koanf:"weather_forecast_days"`

	// RedisURL enables the weather cache when set, e.g. redis://localhost:6379/0.
	RedisURL           string `koanf:"redis_url"`
	WeatherCacheTTLSec int    `koanf:"weather_cache_ttl_sec"`

	// CORSAllowedOrigins is "*" or a comma-separated origin list.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`

	// AutoTrain retrains when the desk log file changes.
	AutoTrain           bool `koanf:"auto_train"`
	AutoTrainDebounceMS int  `koanf:"auto_train_debounce_ms"`

	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":8000",
		LookupPath:          "data/lookup.json",
		DeskLogsDriver:      DriverCSV,
		DeskLogsPath:        "data/desk_logs.csv",
		DeskLogsTable:       "desk_logs",
		DeskColumn:          "desk",
		TimestampColumn:     "date_time",
		FeedbackDriver:      DriverCSV,
		FeedbackPath:        "data/feedback.csv",
		FeedbackTable:       "feedback",
		FeedbackWindowDays:  14,
		WeatherEnabled:      true,
		WeatherBaseURL:      "https://api.open-meteo.com/v1/forecast",
		WeatherLatitude:     49.2606,
		WeatherLongitude:    -123.2460,
		WeatherTimeoutMS:    5000,
		WeatherPastDays:     16,
		WeatherForecastDays: 16,
		WeatherCacheTTLSec:  1800,
		CORSAllowedOrigins:  "*",
		AutoTrainDebounceMS: 2000,
		MetricsEnabled:      true,
	}
}

// FeedbackWindow returns the feedback look-back window.
func (c *Config) FeedbackWindow() time.Duration {
	return time.Duration(c.FeedbackWindowDays) * 24 * time.Hour
}

// WeatherTimeout returns the weather request timeout.
func (c *Config) WeatherTimeout() time.Duration {
	return time.Duration(c.WeatherTimeoutMS) * time.Millisecond
}

// WeatherCacheTTL returns how long cached weather is kept.
func (c *Config) WeatherCacheTTL() time.Duration {
	return time.Duration(c.WeatherCacheTTLSec) * time.Second
}

// AutoTrainDebounce returns the quiet period before a watcher-triggered retrain.
func (c *Config) AutoTrainDebounce() time.Duration {
	return time.Duration(c.AutoTrainDebounceMS) * time.Millisecond
}

// Origins splits CORSAllowedOrigins; "*" or empty means any origin.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LookupPath == "":
		return fmt.Errorf("%w: lookup_path must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	case c.DeskLogsDriver != DriverCSV && c.DeskLogsDriver != DriverSQLite:
		return fmt.Errorf("%w: desk_logs_driver must be csv or sqlite", ErrInvalidConfig)
	case c.DeskLogsPath == "":
		return fmt.Errorf("%w: desk_logs_path must not be empty", ErrInvalidConfig)
	case c.FeedbackDriver != DriverCSV && c.FeedbackDriver != DriverPostgres && c.FeedbackDriver != DriverNone:
		return fmt.Errorf("%w: feedback_driver must be csv, postgres or none", ErrInvalidConfig)
	case c.FeedbackDriver == DriverPostgres && c.FeedbackDSN == "":
		return fmt.Errorf("%w: feedback_dsn is required for the postgres driver", ErrInvalidConfig)
	case c.FeedbackWindowDays <= 0:
		return fmt.Errorf("%w: feedback_window_days must be positive", ErrInvalidConfig)
	case c.WeatherEnabled && c.WeatherTimeoutMS <= 0:
		return fmt.Errorf("%w: weather_timeout_ms must be positive", ErrInvalidConfig)
	case c.AutoTrainDebounceMS < 0:
		return fmt.Errorf("%w: auto_train_debounce_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}
