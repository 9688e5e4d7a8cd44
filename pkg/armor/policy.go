package armor

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/net/http/httpguts"

	"github.com/armorhq/armor/pkg/armor/csp"
)

// ErrInvalidHeaderValue is returned when a custom rule carries a header
// name or value that is not valid for transmission on the wire. The
// built-in protections use fixed literal values and never produce it.
var ErrInvalidHeaderValue = errors.New("invalid header value")

// Rule is a single (name, value) pair a Policy ensures is present in the
// header collection it is applied to.
type Rule struct {
	Name  string
	Value string
}

// HSTSConfig controls the Strict-Transport-Security protection.
type HSTSConfig struct {
	Enabled bool
	// MaxAge in seconds. Zero means DefaultHSTSMaxAge.
	MaxAge            int
	IncludeSubDomains bool
	// RequireTLS makes Middleware skip the header on plaintext requests.
	// Policy.Apply ignores it because a bare header collection carries no
	// transport information.
	RequireTLS bool
}

// Policy is a configurable set of hardening rules. The zero value applies
// nothing; use DefaultPolicy for the standard protection set.
type Policy struct {
	NoSniff            bool
	XSSFilter          bool
	DNSPrefetchControl bool
	HidePoweredBy      bool

	FrameGuard  bool
	FrameOption FrameOption

	HSTS HSTSConfig

	// ReferrerPolicy sets the Referrer-Policy header when non-empty.
	ReferrerPolicy string

	// ContentSecurityPolicy, when non-nil, emits the built CSP header.
	ContentSecurityPolicy *csp.Policy

	// Custom rules are applied after the built-in protections, with the
	// same overwrite semantics. They are validated before any mutation.
	Custom []Rule
}

// DefaultPolicy returns a Policy with the full default protection set
// enabled, matching Apply.
func DefaultPolicy() *Policy {
	return &Policy{
		NoSniff:            true,
		XSSFilter:          true,
		DNSPrefetchControl: true,
		HidePoweredBy:      true,
		FrameGuard:         true,
		FrameOption:        FrameSameOrigin,
		HSTS: HSTSConfig{
			Enabled: true,
			MaxAge:  DefaultHSTSMaxAge,
		},
	}
}

// Validate reports whether every custom rule carries a wire-safe header
// name and value.
func (p *Policy) Validate() error {
	for _, r := range p.Custom {
		if r.Name == "" || !httpguts.ValidHeaderFieldName(r.Name) {
			return fmt.Errorf("header %q: %w", r.Name, ErrInvalidHeaderValue)
		}
		if !httpguts.ValidHeaderFieldValue(r.Value) {
			return fmt.Errorf("header %q: %w", r.Name, ErrInvalidHeaderValue)
		}
	}
	return nil
}

// Apply sets every enabled rule on h, overwriting pre-existing values for
// the same names and leaving all other entries untouched. If a custom rule
// fails validation, Apply returns ErrInvalidHeaderValue without mutating h.
func (p *Policy) Apply(h http.Header) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.apply(h, true)
	return nil
}

// ApplyWithTransport behaves like Apply but takes the transport into
// account: with HSTS.RequireTLS set, Strict-Transport-Security is withheld
// unless secure is true. Apply is equivalent to ApplyWithTransport with
// secure=true.
func (p *Policy) ApplyWithTransport(h http.Header, secure bool) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.apply(h, secure)
	return nil
}

// HeaderNames returns the names of the headers the policy sets, in the
// order they are applied. Removals (X-Powered-By) are not listed.
func (p *Policy) HeaderNames() []string {
	var names []string
	if p.DNSPrefetchControl {
		names = append(names, HeaderDNSPrefetchControl)
	}
	if p.NoSniff {
		names = append(names, HeaderContentTypeOptions)
	}
	if p.FrameGuard {
		names = append(names, HeaderFrameOptions)
	}
	if p.HSTS.Enabled {
		names = append(names, HeaderStrictTransportSecurity)
	}
	if p.XSSFilter {
		names = append(names, HeaderXSSProtection)
	}
	if p.ReferrerPolicy != "" {
		names = append(names, HeaderReferrerPolicy)
	}
	if p.ContentSecurityPolicy != nil {
		names = append(names, p.ContentSecurityPolicy.Header())
	}
	for _, r := range p.Custom {
		names = append(names, r.Name)
	}
	return names
}

// apply performs the mutation. Callers that know the transport (the
// middleware) pass secure=false to withhold HSTS on plaintext requests.
func (p *Policy) apply(h http.Header, secure bool) {
	if p.DNSPrefetchControl {
		DNSPrefetchControl(h)
	}
	if p.NoSniff {
		NoSniff(h)
	}
	if p.FrameGuard {
		FrameGuard(h, p.FrameOption)
	}
	if p.HidePoweredBy {
		HidePoweredBy(h)
	}
	if p.HSTS.Enabled && (secure || !p.HSTS.RequireTLS) {
		h.Set(HeaderStrictTransportSecurity, p.hstsValue())
	}
	if p.XSSFilter {
		XSSFilter(h)
	}
	if p.ReferrerPolicy != "" {
		h.Set(HeaderReferrerPolicy, p.ReferrerPolicy)
	}
	if p.ContentSecurityPolicy != nil {
		p.ContentSecurityPolicy.Apply(h)
	}
	for _, r := range p.Custom {
		h.Set(r.Name, r.Value)
	}
}

func (p *Policy) hstsValue() string {
	maxAge := p.HSTS.MaxAge
	if maxAge == 0 {
		maxAge = DefaultHSTSMaxAge
	}
	v := "max-age=" + strconv.Itoa(maxAge)
	if p.HSTS.IncludeSubDomains {
		v += "; includeSubDomains"
	}
	return v
}
