package config

import (
	"sort"

	"github.com/armorhq/armor/pkg/armor"
	"github.com/armorhq/armor/pkg/armor/csp"
)

// Policy converts the headers section into an armor.Policy. Custom rules
// are added in sorted name order so the resulting policy is deterministic.
// The returned error wraps armor.ErrInvalidHeaderValue when a custom rule
// carries a value unsafe for the wire.
func (h HeadersConfig) Policy() (*armor.Policy, error) {
	p := &armor.Policy{
		NoSniff:            h.NoSniff,
		XSSFilter:          h.XSSFilter,
		DNSPrefetchControl: h.DNSPrefetchControl,
		HidePoweredBy:      h.HidePoweredBy,
		FrameGuard:         h.FrameGuard,
		FrameOption:        armor.FrameOption(h.FrameOption),
		HSTS: armor.HSTSConfig{
			Enabled:           h.HSTS.Enabled,
			MaxAge:            h.HSTS.MaxAge,
			IncludeSubDomains: h.HSTS.IncludeSubDomains,
			RequireTLS:        h.HSTS.RequireTLS,
		},
		ReferrerPolicy: h.ReferrerPolicy,
	}

	if h.CSP.Enabled {
		p.ContentSecurityPolicy = h.CSP.build()
	}

	names := make([]string, 0, len(h.Custom))
	for name := range h.Custom {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p.Custom = append(p.Custom, armor.Rule{Name: name, Value: h.Custom[name]})
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (c CSPConfig) build() *csp.Policy {
	p := csp.New()
	for directive, sources := range c.Directives {
		for _, s := range sources {
			p.Directive(directive, csp.Source(s))
		}
	}
	if c.UpgradeInsecureRequests {
		p.UpgradeInsecureRequests()
	}
	if c.BlockAllMixedContent {
		p.BlockAllMixedContent()
	}
	if c.ReportURI != "" {
		p.ReportURI(c.ReportURI)
	}
	if c.ReportOnly {
		p.ReportOnly()
	}
	return p
}
