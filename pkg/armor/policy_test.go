package armor

import (
	"errors"
	"net/http"
	"testing"

	"github.com/armorhq/armor/pkg/armor/csp"
)

func TestDefaultPolicyMatchesApply(t *testing.T) {
	fromFunc := http.Header{}
	Apply(fromFunc)

	fromPolicy := http.Header{}
	if err := DefaultPolicy().Apply(fromPolicy); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if len(fromFunc) != len(fromPolicy) {
		t.Fatalf("header count differs: func=%d policy=%d", len(fromFunc), len(fromPolicy))
	}
	for name := range fromFunc {
		if fromFunc.Get(name) != fromPolicy.Get(name) {
			t.Errorf("%s: func=%q policy=%q", name, fromFunc.Get(name), fromPolicy.Get(name))
		}
	}
}

func TestPolicyZeroValueAppliesNothing(t *testing.T) {
	h := http.Header{}
	h.Set("X-Powered-By", "Express")

	var p Policy
	if err := p.Apply(h); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if len(h) != 1 || h.Get("X-Powered-By") != "Express" {
		t.Errorf("zero-value policy mutated headers: %v", h)
	}
}

func TestPolicyHSTSOptions(t *testing.T) {
	tests := []struct {
		name string
		hsts HSTSConfig
		want string
	}{
		{"default max age", HSTSConfig{Enabled: true}, "max-age=5184000"},
		{"custom max age", HSTSConfig{Enabled: true, MaxAge: 31536000}, "max-age=31536000"},
		{
			"include subdomains",
			HSTSConfig{Enabled: true, MaxAge: 31536000, IncludeSubDomains: true},
			"max-age=31536000; includeSubDomains",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			p := Policy{HSTS: tt.hsts}
			if err := p.Apply(h); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if got := h.Get("Strict-Transport-Security"); got != tt.want {
				t.Errorf("Strict-Transport-Security = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPolicyReferrerPolicy(t *testing.T) {
	h := http.Header{}
	p := Policy{ReferrerPolicy: "strict-origin-when-cross-origin"}
	if err := p.Apply(h); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := h.Get("Referrer-Policy"); got != "strict-origin-when-cross-origin" {
		t.Errorf("Referrer-Policy = %q", got)
	}
}

func TestPolicyContentSecurityPolicy(t *testing.T) {
	h := http.Header{}
	p := Policy{
		ContentSecurityPolicy: csp.New().DefaultSrc(csp.SameOrigin).ObjectSrc(csp.None),
	}
	if err := p.Apply(h); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	want := "default-src 'self'; object-src 'none'"
	if got := h.Get("Content-Security-Policy"); got != want {
		t.Errorf("Content-Security-Policy = %q, want %q", got, want)
	}
}

func TestPolicyCustomRules(t *testing.T) {
	h := http.Header{}
	p := Policy{
		Custom: []Rule{
			{Name: "Cross-Origin-Opener-Policy", Value: "same-origin"},
			{Name: "Permissions-Policy", Value: "geolocation=()"},
		},
	}
	if err := p.Apply(h); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := h.Get("Cross-Origin-Opener-Policy"); got != "same-origin" {
		t.Errorf("Cross-Origin-Opener-Policy = %q", got)
	}
	if got := h.Get("Permissions-Policy"); got != "geolocation=()" {
		t.Errorf("Permissions-Policy = %q", got)
	}
}

func TestPolicyInvalidCustomRule(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{"control character in value", Rule{Name: "X-Custom", Value: "bad\x00value"}},
		{"newline in value", Rule{Name: "X-Custom", Value: "bad\r\nvalue"}},
		{"empty name", Rule{Name: "", Value: "value"}},
		{"space in name", Rule{Name: "X Custom", Value: "value"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			p := Policy{NoSniff: true, Custom: []Rule{tt.rule}}

			err := p.Apply(h)
			if !errors.Is(err, ErrInvalidHeaderValue) {
				t.Fatalf("Apply() error = %v, want ErrInvalidHeaderValue", err)
			}
			// Validation failure means no partial mutation.
			if len(h) != 0 {
				t.Errorf("headers mutated despite validation error: %v", h)
			}
		})
	}
}

func TestPolicyApplyIsIdempotent(t *testing.T) {
	p := DefaultPolicy()
	p.ReferrerPolicy = "no-referrer"

	once := http.Header{}
	if err := p.Apply(once); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	twice := http.Header{}
	for i := 0; i < 2; i++ {
		if err := p.Apply(twice); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	}

	if len(once) != len(twice) {
		t.Fatalf("header count differs: once=%d twice=%d", len(once), len(twice))
	}
	for name := range once {
		if once.Get(name) != twice.Get(name) {
			t.Errorf("%s: once=%q twice=%q", name, once.Get(name), twice.Get(name))
		}
	}
}
