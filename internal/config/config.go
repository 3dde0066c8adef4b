// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and POLO_ environment variables on top.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SnapshotPath is where the match snapshot is persisted. Empty disables
	// persistence.
	SnapshotPath string `koanf:"snapshot_path"`

	// DedupeSize bounds the add-request id cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ScreenPeriodDescending and ScreenClockAscending tune the on-screen
	// record order.
	ScreenPeriodDescending bool `koanf:"screen_period_descending"`
	ScreenClockAscending   bool `koanf:"screen_clock_ascending"`

	// ExportLocale is the default CSV locale: en or ja.
	ExportLocale string `koanf:"export_locale"`

	// CORSAllowedOrigins is a comma separated origin list; "*" allows all.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`

	// WSPingIntervalMS is the live feed keepalive interval.
	WSPingIntervalMS int `koanf:"ws_ping_interval_ms"`

	// WSSendBuffer bounds queued messages per live client.
	WSSendBuffer int `koanf:"ws_send_buffer"`

	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		SnapshotPath:           "polo-snapshot.json",
		DedupeSize:             1024,
		ScreenPeriodDescending: true,
		ScreenClockAscending:   false,
		ExportLocale:           "en",
		CORSAllowedOrigins:     "*",
		WSPingIntervalMS:       30_000,
		WSSendBuffer:           16,
		MetricsEnabled:         true,
	}
}

// AllowedOrigins splits CORSAllowedOrigins into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// PingInterval returns WSPingIntervalMS as a duration.
func (c *Config) PingInterval() time.Duration {
	return time.Duration(c.WSPingIntervalMS) * time.Millisecond
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.ExportLocale) {
	case "en", "ja":
	default:
		return fmt.Errorf("%w: export_locale must be en or ja, got %q", ErrInvalidConfig, c.ExportLocale)
	}
	if c.DedupeSize <= 0 {
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	}
	if c.WSPingIntervalMS <= 0 {
		return fmt.Errorf("%w: ws_ping_interval_ms must be positive", ErrInvalidConfig)
	}
	if c.WSSendBuffer <= 0 {
		return fmt.Errorf("%w: ws_send_buffer must be positive", ErrInvalidConfig)
	}
	return nil
}
