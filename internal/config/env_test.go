package config

import (
	"testing"
	"time"
)

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ARMOR_SERVER_ADDRESS", ":9999")
	t.Setenv("ARMOR_LOG_LEVEL", "debug")
	t.Setenv("ARMOR_HEADERS_FRAME_OPTION", "deny")
	t.Setenv("ARMOR_HSTS_MAX_AGE", "31536000")
	t.Setenv("ARMOR_HSTS_INCLUDE_SUBDOMAINS", "true")
	t.Setenv("ARMOR_UPSTREAM_URL", "http://127.0.0.1:3000")
	t.Setenv("ARMOR_UPSTREAM_TIMEOUT", "45s")
	t.Setenv("ARMOR_RATE_LIMIT_PER_IP_LIMIT", "240")
	t.Setenv("ARMOR_SENTRY_DSN", "https://key@sentry.example/1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Address != ":9999" {
		t.Errorf("Server.Address = %q, want %q", cfg.Server.Address, ":9999")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Headers.FrameOption != "deny" {
		t.Errorf("Headers.FrameOption = %q, want %q", cfg.Headers.FrameOption, "deny")
	}
	if cfg.Headers.HSTS.MaxAge != 31536000 || !cfg.Headers.HSTS.IncludeSubDomains {
		t.Errorf("HSTS = %+v", cfg.Headers.HSTS)
	}
	if cfg.Upstream.URL != "http://127.0.0.1:3000" {
		t.Errorf("Upstream.URL = %q", cfg.Upstream.URL)
	}
	if cfg.Upstream.Timeout.Duration != 45*time.Second {
		t.Errorf("Upstream.Timeout = %v, want 45s", cfg.Upstream.Timeout.Duration)
	}
	if cfg.RateLimit.PerIPLimit != 240 {
		t.Errorf("RateLimit.PerIPLimit = %d, want 240", cfg.RateLimit.PerIPLimit)
	}
	if cfg.Sentry.DSN != "https://key@sentry.example/1" {
		t.Errorf("Sentry.DSN = %q", cfg.Sentry.DSN)
	}
}

func TestEnvOverridesTakePrecedenceOverFile(t *testing.T) {
	path := writeConfigFile(t, "server:\n  address: \":9090\"\n")
	t.Setenv("ARMOR_SERVER_ADDRESS", ":7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Address != ":7070" {
		t.Errorf("Server.Address = %q, want env override %q", cfg.Server.Address, ":7070")
	}
}

func TestEnvCustomHeaderRules(t *testing.T) {
	t.Setenv("ARMOR_HEADER_PERMISSIONS_POLICY", "geolocation=()")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Headers.Custom["PERMISSIONS-POLICY"]; got != "geolocation=()" {
		t.Errorf("Custom = %v, want PERMISSIONS-POLICY entry", cfg.Headers.Custom)
	}
}

func TestEnvBoolParsing(t *testing.T) {
	t.Setenv("ARMOR_HEADERS_NOSNIFF", "false")
	t.Setenv("ARMOR_HSTS_ENABLED", "not-a-bool")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Headers.NoSniff {
		t.Error("ARMOR_HEADERS_NOSNIFF=false not applied")
	}
	// Unparseable bools are ignored, default kept.
	if !cfg.Headers.HSTS.Enabled {
		t.Error("invalid bool should keep default true")
	}
}
