package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over YAML configuration.
// All env vars use the ARMOR_ prefix for namespace isolation.
func (c *Config) applyEnvOverrides() {
	// Server config
	setIfEnv(&c.Server.Address, "ARMOR_SERVER_ADDRESS")
	setIfEnv(&c.Server.AdminMetricsAPIKey, "ARMOR_ADMIN_METRICS_API_KEY")
	setDurationIfEnv(&c.Server.ReadTimeout, "ARMOR_SERVER_READ_TIMEOUT")
	setDurationIfEnv(&c.Server.WriteTimeout, "ARMOR_SERVER_WRITE_TIMEOUT")
	setDurationIfEnv(&c.Server.IdleTimeout, "ARMOR_SERVER_IDLE_TIMEOUT")
	if v := os.Getenv("ARMOR_CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.CORSAllowedOrigins = splitAndTrim(v)
	}

	// Logging config
	setIfEnv(&c.Logging.Level, "ARMOR_LOG_LEVEL")
	setIfEnv(&c.Logging.Format, "ARMOR_LOG_FORMAT")
	setIfEnv(&c.Logging.Environment, "ARMOR_ENVIRONMENT")

	// Header rules
	setBoolIfEnv(&c.Headers.NoSniff, "ARMOR_HEADERS_NOSNIFF")
	setBoolIfEnv(&c.Headers.XSSFilter, "ARMOR_HEADERS_XSS_FILTER")
	setBoolIfEnv(&c.Headers.DNSPrefetchControl, "ARMOR_HEADERS_DNS_PREFETCH_CONTROL")
	setBoolIfEnv(&c.Headers.HidePoweredBy, "ARMOR_HEADERS_HIDE_POWERED_BY")
	setBoolIfEnv(&c.Headers.FrameGuard, "ARMOR_HEADERS_FRAME_GUARD")
	setIfEnv(&c.Headers.FrameOption, "ARMOR_HEADERS_FRAME_OPTION")
	setIfEnv(&c.Headers.ReferrerPolicy, "ARMOR_HEADERS_REFERRER_POLICY")
	setBoolIfEnv(&c.Headers.HSTS.Enabled, "ARMOR_HSTS_ENABLED")
	setIntIfEnv(&c.Headers.HSTS.MaxAge, "ARMOR_HSTS_MAX_AGE")
	setBoolIfEnv(&c.Headers.HSTS.IncludeSubDomains, "ARMOR_HSTS_INCLUDE_SUBDOMAINS")
	setBoolIfEnv(&c.Headers.HSTS.RequireTLS, "ARMOR_HSTS_REQUIRE_TLS")

	// Extra header rules (ARMOR_HEADER_<NAME>=value, underscores become dashes)
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "ARMOR_HEADER_") {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.ReplaceAll(strings.TrimPrefix(parts[0], "ARMOR_HEADER_"), "_", "-")
		if name == "" {
			continue
		}
		if c.Headers.Custom == nil {
			c.Headers.Custom = make(map[string]string)
		}
		c.Headers.Custom[name] = parts[1]
	}

	// Upstream config
	setIfEnv(&c.Upstream.URL, "ARMOR_UPSTREAM_URL")
	setDurationIfEnv(&c.Upstream.Timeout, "ARMOR_UPSTREAM_TIMEOUT")
	setBoolIfEnv(&c.Upstream.PassHostHeader, "ARMOR_UPSTREAM_PASS_HOST_HEADER")
	setBoolIfEnv(&c.Upstream.Breaker.Enabled, "ARMOR_BREAKER_ENABLED")

	// Rate limit config
	setBoolIfEnv(&c.RateLimit.GlobalEnabled, "ARMOR_RATE_LIMIT_GLOBAL_ENABLED")
	setIntIfEnv(&c.RateLimit.GlobalLimit, "ARMOR_RATE_LIMIT_GLOBAL_LIMIT")
	setDurationIfEnv(&c.RateLimit.GlobalWindow, "ARMOR_RATE_LIMIT_GLOBAL_WINDOW")
	setBoolIfEnv(&c.RateLimit.PerIPEnabled, "ARMOR_RATE_LIMIT_PER_IP_ENABLED")
	setIntIfEnv(&c.RateLimit.PerIPLimit, "ARMOR_RATE_LIMIT_PER_IP_LIMIT")
	setDurationIfEnv(&c.RateLimit.PerIPWindow, "ARMOR_RATE_LIMIT_PER_IP_WINDOW")

	// Sentry config
	setIfEnv(&c.Sentry.DSN, "ARMOR_SENTRY_DSN")
}

// setIfEnv sets target to the env value when the variable is non-empty.
func setIfEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// setBoolIfEnv sets target when the variable parses as a boolean.
func setBoolIfEnv(target *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*target = parsed
		}
	}
}

// setIntIfEnv sets target when the variable parses as an integer.
func setIntIfEnv(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*target = parsed
		}
	}
}

// setDurationIfEnv sets target when the variable parses as a Go duration.
func setDurationIfEnv(target *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*target = Duration{Duration: parsed}
		}
	}
}

// splitAndTrim splits a comma separated list and trims whitespace around entries.
func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
