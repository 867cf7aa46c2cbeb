// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 8460 {
		t.Errorf("Expected default port 8460, got %d", cfg.Server.Port)
	}
	if cfg.Health.DeviceRecentlyOnlineMaxMinutes != 10 {
		t.Errorf("Expected default online threshold 10, got %d", cfg.Health.DeviceRecentlyOnlineMaxMinutes)
	}
	if cfg.Health.CacheTTL() != 10*time.Second {
		t.Errorf("Expected default cache TTL 10s, got %v", cfg.Health.CacheTTL())
	}
	if !cfg.Health.CacheEnabled {
		t.Error("Expected cache enabled by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Unexpected default logging config: %+v", cfg.Logging)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SITEPULSE_SERVER_PORT", "9999")
	t.Setenv("SITEPULSE_HEALTH_CACHE_TTL_SECONDS", "3")
	t.Setenv("SITEPULSE_DIRECTORY_URL", "http://directory.internal:8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected env override port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Health.CacheTTLSeconds != 3 {
		t.Errorf("Expected env override TTL 3, got %d", cfg.Health.CacheTTLSeconds)
	}
	if cfg.Directory.URL != "http://directory.internal:8080" {
		t.Errorf("Expected env override directory URL, got %s", cfg.Directory.URL)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 7001\nhealth:\n  device_recently_online_max_minutes: 42\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 7001 {
		t.Errorf("Expected file override port 7001, got %d", cfg.Server.Port)
	}
	if cfg.Health.DeviceRecentlyOnlineMaxMinutes != 42 {
		t.Errorf("Expected file override threshold 42, got %d", cfg.Health.DeviceRecentlyOnlineMaxMinutes)
	}
}

func TestEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7001\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SITEPULSE_SERVER_PORT", "7002")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != 7002 {
		t.Errorf("Expected env to beat file, got port %d", cfg.Server.Port)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Health.DeviceRecentlyOnlineMaxMinutes = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for zero online threshold")
	}

	cfg = defaultConfig()
	cfg.Directory.URL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for malformed directory URL")
	}

	cfg = defaultConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for unknown log level")
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"SITEPULSE_SERVER_PORT", "server.port"},
		{"SITEPULSE_DIRECTORY_URL", "directory.url"},
		{"SITEPULSE_HEALTH_CACHE_TTL_SECONDS", "health.cache_ttl_seconds"},
		{"SITEPULSE_LOGGING_LEVEL", "logging.level"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.input); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
