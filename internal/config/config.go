// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the SitePulse server, loaded via
// layered koanf sources (defaults, then config file, then environment).
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Health    HealthConfig    `koanf:"health"`
	Directory DirectoryConfig `koanf:"directory"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port" validate:"min=1,max=65535"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed origins for browser clients. Empty disables
	// cross-origin access.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig configures the zerolog global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// HealthConfig holds the thresholds and cache settings for health evaluation.
type HealthConfig struct {
	// DeviceRecentlyOnlineMaxMinutes is the max age, in minutes, of a device's
	// last health reading for the device to count as online.
	DeviceRecentlyOnlineMaxMinutes int `koanf:"device_recently_online_max_minutes" validate:"min=1"`

	// DeviceRecentlySentTelemetryMaxMinutes is the max age, in minutes, of a
	// camera's last telemetry reading for its data feed to count as live.
	DeviceRecentlySentTelemetryMaxMinutes int `koanf:"device_recently_sent_telemetry_max_minutes" validate:"min=1"`

	// CacheTTLSeconds is the short TTL for cached health verdicts.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds" validate:"min=1"`

	// CacheEnabled toggles the verdict cache. Disabling it changes only the
	// number of downstream calls, never the computed results.
	CacheEnabled bool `koanf:"cache_enabled"`
}

// CacheTTL returns the verdict cache TTL as a duration.
func (h HealthConfig) CacheTTL() time.Duration {
	return time.Duration(h.CacheTTLSeconds) * time.Second
}

// DirectoryConfig configures the device directory API client.
type DirectoryConfig struct {
	URL     string        `koanf:"url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout"`
}

// TelemetryConfig configures the telemetry lookup API client.
type TelemetryConfig struct {
	URL     string        `koanf:"url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8460,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     nil,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Health: HealthConfig{
			DeviceRecentlyOnlineMaxMinutes:        10,
			DeviceRecentlySentTelemetryMaxMinutes: 10,
			CacheTTLSeconds:                       10,
			CacheEnabled:                          true,
		},
		Directory: DirectoryConfig{
			URL:     "http://localhost:9080",
			Timeout: 30 * time.Second,
		},
		Telemetry: TelemetryConfig{
			URL:     "http://localhost:9081",
			Timeout: 30 * time.Second,
		},
	}
}

// Validate checks the configuration using struct tags.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
