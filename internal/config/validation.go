package config

import (
	"fmt"
	"net/url"

	"github.com/armorhq/armor/pkg/armor"
)

// finalize applies defaults and validates the configuration.
func (c *Config) finalize() error {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Environment == "" {
		c.Logging.Environment = "production"
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}

	switch armor.FrameOption(c.Headers.FrameOption) {
	case "", armor.FrameSameOrigin, armor.FrameDeny:
	default:
		return fmt.Errorf("headers.frame_option: %q is not one of sameorigin, deny", c.Headers.FrameOption)
	}

	if c.Headers.HSTS.MaxAge < 0 {
		return fmt.Errorf("headers.hsts.max_age: must not be negative, got %d", c.Headers.HSTS.MaxAge)
	}

	// Custom rules ride on the wire verbatim, so reject unsafe values here
	// rather than at request time.
	if _, err := c.Headers.Policy(); err != nil {
		return fmt.Errorf("headers.custom: %w", err)
	}

	if c.Upstream.URL != "" {
		u, err := url.Parse(c.Upstream.URL)
		if err != nil {
			return fmt.Errorf("upstream.url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("upstream.url: scheme must be http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("upstream.url: missing host")
		}
	}

	if c.RateLimit.GlobalEnabled && c.RateLimit.GlobalLimit <= 0 {
		return fmt.Errorf("rate_limit.global_limit: must be positive when enabled, got %d", c.RateLimit.GlobalLimit)
	}
	if c.RateLimit.PerIPEnabled && c.RateLimit.PerIPLimit <= 0 {
		return fmt.Errorf("rate_limit.per_ip_limit: must be positive when enabled, got %d", c.RateLimit.PerIPLimit)
	}

	return nil
}
