package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !strings.Contains(cfg.Calendar.SourceURL, "{year}") {
		t.Errorf("SourceURL = %q, want template", cfg.Calendar.SourceURL)
	}
	if cfg.Calendar.GetTimeout() != 10*time.Second {
		t.Errorf("GetTimeout() = %s, want 10s", cfg.Calendar.GetTimeout())
	}
	if cfg.Calendar.GetRefreshInterval() != 12*time.Hour {
		t.Errorf("GetRefreshInterval() = %s, want 12h", cfg.Calendar.GetRefreshInterval())
	}
	if cfg.HTTP.Addr != ":8000" {
		t.Errorf("HTTP.Addr = %q, want :8000", cfg.HTTP.Addr)
	}
	if cfg.Redis.Enabled {
		t.Errorf("Redis.Enabled = true, want false")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
calendar:
  source_url: "https://example.com/cal/{year}.json"
  fallback_path: "/var/lib/calendar/{year}.json"
  timezone: "Asia/Taipei"
  refresh_interval: "0"
redis:
  enabled: true
  addr: "redis:6379"
log:
  level: debug
`)
	t.Setenv("WORKDAY_CALENDAR_HTTP_ADDR", ":9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Calendar.SourceURL != "https://example.com/cal/{year}.json" {
		t.Errorf("SourceURL = %q", cfg.Calendar.SourceURL)
	}
	if cfg.Calendar.GetRefreshInterval() != 0 {
		t.Errorf("GetRefreshInterval() = %s, want 0", cfg.Calendar.GetRefreshInterval())
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("HTTP.Addr = %q, want env override :9090", cfg.HTTP.Addr)
	}
	if cfg.Redis.Addr != "redis:6379" || !cfg.Redis.Enabled {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}

	loc, err := cfg.Calendar.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if loc.String() != "Asia/Taipei" {
		t.Errorf("Location() = %s, want Asia/Taipei", loc)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"source url without placeholder", `calendar: {source_url: "https://example.com/cal.json"}`},
		{"fallback without placeholder", `calendar: {fallback_path: "/tmp/cal.json"}`},
		{"unknown timezone", `calendar: {timezone: "Mars/Olympus"}`},
		{"negative rate limit", `calendar: {rate_limit: -1}`},
		{"bad log level", `log: {level: loud}`},
		{"redis enabled without addr", `redis: {enabled: true, addr: ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Errorf("Load() error = nil, want validation error")
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("Load() error = nil, want read error for explicit missing file")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", time.Minute},
		{"garbage", time.Minute},
		{"90s", 90 * time.Second},
		{"0", 0},
		{"-1s", -time.Second},
	}

	for _, tt := range tests {
		if got := parseDuration(tt.value, time.Minute); got != tt.want {
			t.Errorf("parseDuration(%q) = %s, want %s", tt.value, got, tt.want)
		}
	}
}
