package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support string based YAML decoding.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses duration values expressed as Go-style strings or numbers interpreted as seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		raw := strings.TrimSpace(value.Value)
		if raw == "" {
			d.Duration = 0
			return nil
		}
		parsed, err := time.ParseDuration(raw)
		if err == nil {
			d.Duration = parsed
			return nil
		}
		secs, convErr := time.ParseDuration(fmt.Sprintf("%ss", raw))
		if convErr == nil {
			d.Duration = secs
			return nil
		}
		return fmt.Errorf("invalid duration value %q: %w", raw, err)
	default:
		return fmt.Errorf("unsupported duration node kind: %v", value.Kind)
	}
}

// MarshalYAML renders the duration as a string to keep config edits human-friendly.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds application level configuration aggregated from file and environment variables.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Headers   HeadersConfig   `yaml:"headers"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Sentry    SentryConfig    `yaml:"sentry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address            string   `yaml:"address"`
	ReadTimeout        Duration `yaml:"read_timeout"`
	WriteTimeout       Duration `yaml:"write_timeout"`
	IdleTimeout        Duration `yaml:"idle_timeout"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	AdminMetricsAPIKey string   `yaml:"admin_metrics_api_key"` // Optional API key to protect /metrics (leave empty to disable protection)
}

// LoggingConfig holds structured logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`  // debug, info, warn, error
	Format      string `yaml:"format"` // json, console
	Environment string `yaml:"environment"`
}

// HeadersConfig holds the hardening rule set injected into every response.
type HeadersConfig struct {
	NoSniff            bool              `yaml:"nosniff"`
	XSSFilter          bool              `yaml:"xss_filter"`
	DNSPrefetchControl bool              `yaml:"dns_prefetch_control"`
	HidePoweredBy      bool              `yaml:"hide_powered_by"`
	FrameGuard         bool              `yaml:"frame_guard"`
	FrameOption        string            `yaml:"frame_option"` // sameorigin | deny
	HSTS               HSTSConfig        `yaml:"hsts"`
	ReferrerPolicy     string            `yaml:"referrer_policy"`
	CSP                CSPConfig         `yaml:"csp"`
	Custom             map[string]string `yaml:"custom"` // extra header name -> value pairs
}

// HSTSConfig holds Strict-Transport-Security configuration.
type HSTSConfig struct {
	Enabled           bool `yaml:"enabled"`
	MaxAge            int  `yaml:"max_age"` // seconds; 0 uses the library default
	IncludeSubDomains bool `yaml:"include_subdomains"`
	RequireTLS        bool `yaml:"require_tls"` // only emit on TLS / forwarded-https requests
}

// CSPConfig holds Content-Security-Policy configuration.
type CSPConfig struct {
	Enabled                 bool                `yaml:"enabled"`
	ReportOnly              bool                `yaml:"report_only"`
	Directives              map[string][]string `yaml:"directives"`
	UpgradeInsecureRequests bool                `yaml:"upgrade_insecure_requests"`
	BlockAllMixedContent    bool                `yaml:"block_all_mixed_content"`
	ReportURI               string              `yaml:"report_uri"`
}

// UpstreamConfig holds reverse proxy upstream configuration.
type UpstreamConfig struct {
	URL            string        `yaml:"url"`
	Timeout        Duration      `yaml:"timeout"`
	PassHostHeader bool          `yaml:"pass_host_header"` // forward the client Host header instead of the upstream host
	Breaker        BreakerConfig `yaml:"circuit_breaker"`
}

// BreakerConfig configures the upstream circuit breaker.
type BreakerConfig struct {
	Enabled             bool     `yaml:"enabled"`
	MaxRequests         uint32   `yaml:"max_requests"`
	Interval            Duration `yaml:"interval"`
	Timeout             Duration `yaml:"timeout"`
	ConsecutiveFailures uint32   `yaml:"consecutive_failures"`
	FailureRatio        float64  `yaml:"failure_ratio"`
	MinRequests         uint32   `yaml:"min_requests"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	GlobalEnabled bool     `yaml:"global_enabled"`
	GlobalLimit   int      `yaml:"global_limit"`
	GlobalWindow  Duration `yaml:"global_window"`
	PerIPEnabled  bool     `yaml:"per_ip_enabled"`
	PerIPLimit    int      `yaml:"per_ip_limit"`
	PerIPWindow   Duration `yaml:"per_ip_window"`
}

// SentryConfig holds error reporting configuration. An empty DSN disables
// reporting entirely.
type SentryConfig struct {
	DSN string `yaml:"dsn"`
}
