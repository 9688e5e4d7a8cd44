// Package csp builds Content-Security-Policy header values to prevent
// cross-site injections.
//
// Directives accumulate sources across calls, so a policy can be built up
// incrementally:
//
//	policy := csp.New().
//		DefaultSrc(csp.SameOrigin, csp.Source("cdn.example.com")).
//		ObjectSrc(csp.None).
//		UpgradeInsecureRequests()
//	policy.Apply(header)
//
// The serialized value is deterministic: one segment per directive, sorted
// lexicographically, joined with "; ".
package csp

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

// Header names emitted by Apply.
const (
	HeaderContentSecurityPolicy           = "Content-Security-Policy"
	HeaderContentSecurityPolicyReportOnly = "Content-Security-Policy-Report-Only"
)

// Source is a CSP source expression. Use the package constants for keyword
// and scheme sources; host sources are plain strings:
//
//	csp.Source("cdn.example.com")
type Source string

const (
	// SameOrigin is the 'self' keyword source.
	SameOrigin Source = "'self'"
	// None is the 'none' keyword source.
	None Source = "'none'"
	// UnsafeInline is the 'unsafe-inline' keyword source.
	UnsafeInline Source = "'unsafe-inline'"
	// UnsafeEval is the 'unsafe-eval' keyword source.
	UnsafeEval Source = "'unsafe-eval'"
	// StrictDynamic is the 'strict-dynamic' keyword source.
	StrictDynamic Source = "'strict-dynamic'"
	// Data is the data: scheme source.
	Data Source = "data:"
	// Blob is the blob: scheme source.
	Blob Source = "blob:"
	// HTTPS is the https: scheme source.
	HTTPS Source = "https:"
	// Mediastream is the mediastream: scheme source.
	Mediastream Source = "mediastream:"
	// Filesystem is the filesystem: scheme source.
	Filesystem Source = "filesystem:"
	// Wildcard matches any source.
	Wildcard Source = "*"
)

// ReportGroup describes a report-to directive value, serialized as JSON.
type ReportGroup struct {
	Group             string           `json:"group,omitempty"`
	MaxAge            int              `json:"max_age"`
	Endpoints         []ReportEndpoint `json:"endpoints"`
	IncludeSubdomains bool             `json:"include_subdomains,omitempty"`
}

// ReportEndpoint is a single delivery endpoint within a ReportGroup.
type ReportEndpoint struct {
	URL string `json:"url"`
}

// Policy accumulates CSP directives and renders the header value.
type Policy struct {
	segments   []string
	directives map[string][]string
	reportOnly bool
}

// New returns an empty Policy.
func New() *Policy {
	return &Policy{directives: make(map[string][]string)}
}

// Default returns a Policy preloaded with "script-src 'self';
// object-src 'self'".
func Default() *Policy {
	p := New()
	p.segments = append(p.segments, "script-src 'self'; object-src 'self'")
	return p
}

func (p *Policy) add(directive string, sources []Source) *Policy {
	for _, s := range sources {
		p.directives[directive] = append(p.directives[directive], string(s))
	}
	return p
}

// Directive adds sources to an arbitrary directive by name. The named
// methods below cover the common directives; Directive serves
// configuration-driven policies and directives this package has no
// method for.
func (p *Policy) Directive(name string, sources ...Source) *Policy {
	return p.add(name, sources)
}

// BaseURI adds sources to the base-uri directive.
func (p *Policy) BaseURI(sources ...Source) *Policy { return p.add("base-uri", sources) }

// ConnectSrc adds sources to the connect-src directive.
func (p *Policy) ConnectSrc(sources ...Source) *Policy { return p.add("connect-src", sources) }

// DefaultSrc adds sources to the default-src directive.
func (p *Policy) DefaultSrc(sources ...Source) *Policy { return p.add("default-src", sources) }

// FontSrc adds sources to the font-src directive.
func (p *Policy) FontSrc(sources ...Source) *Policy { return p.add("font-src", sources) }

// FormAction adds sources to the form-action directive.
func (p *Policy) FormAction(sources ...Source) *Policy { return p.add("form-action", sources) }

// FrameAncestors adds sources to the frame-ancestors directive.
func (p *Policy) FrameAncestors(sources ...Source) *Policy { return p.add("frame-ancestors", sources) }

// FrameSrc adds sources to the frame-src directive.
func (p *Policy) FrameSrc(sources ...Source) *Policy { return p.add("frame-src", sources) }

// ImgSrc adds sources to the img-src directive.
func (p *Policy) ImgSrc(sources ...Source) *Policy { return p.add("img-src", sources) }

// MediaSrc adds sources to the media-src directive.
func (p *Policy) MediaSrc(sources ...Source) *Policy { return p.add("media-src", sources) }

// ObjectSrc adds sources to the object-src directive.
func (p *Policy) ObjectSrc(sources ...Source) *Policy { return p.add("object-src", sources) }

// PluginTypes adds values to the plugin-types directive.
func (p *Policy) PluginTypes(types ...Source) *Policy { return p.add("plugin-types", types) }

// Sandbox adds values to the sandbox directive.
func (p *Policy) Sandbox(values ...Source) *Policy { return p.add("sandbox", values) }

// ScriptSrc adds sources to the script-src directive.
func (p *Policy) ScriptSrc(sources ...Source) *Policy { return p.add("script-src", sources) }

// StyleSrc adds sources to the style-src directive.
func (p *Policy) StyleSrc(sources ...Source) *Policy { return p.add("style-src", sources) }

// WorkerSrc adds sources to the worker-src directive.
func (p *Policy) WorkerSrc(sources ...Source) *Policy { return p.add("worker-src", sources) }

// ReportURI adds a report-uri directive value.
func (p *Policy) ReportURI(uri string) *Policy { return p.add("report-uri", []Source{Source(uri)}) }

// BlockAllMixedContent adds the block-all-mixed-content directive.
func (p *Policy) BlockAllMixedContent() *Policy {
	p.segments = append(p.segments, "block-all-mixed-content")
	return p
}

// UpgradeInsecureRequests adds the upgrade-insecure-requests directive.
func (p *Policy) UpgradeInsecureRequests() *Policy {
	p.segments = append(p.segments, "upgrade-insecure-requests")
	return p
}

// ReportTo adds report-to directives, one JSON-serialized segment per
// group. Groups that fail to serialize are skipped.
func (p *Policy) ReportTo(groups ...ReportGroup) *Policy {
	for _, g := range groups {
		b, err := json.Marshal(g)
		if err != nil {
			continue
		}
		p.segments = append(p.segments, "report-to "+string(b))
	}
	return p
}

// ReportOnly makes Apply emit Content-Security-Policy-Report-Only instead
// of the enforcing header.
func (p *Policy) ReportOnly() *Policy {
	p.reportOnly = true
	return p
}

// Header returns the header name Apply will set.
func (p *Policy) Header() string {
	if p.reportOnly {
		return HeaderContentSecurityPolicyReportOnly
	}
	return HeaderContentSecurityPolicy
}

// Value renders the policy. Rendering does not consume the builder; Value
// returns the same string every time for the same directive set.
func (p *Policy) Value() string {
	segments := make([]string, 0, len(p.segments)+len(p.directives))
	segments = append(segments, p.segments...)
	for directive, sources := range p.directives {
		segments = append(segments, directive+" "+strings.Join(sources, " "))
	}
	sort.Strings(segments)
	return strings.Join(segments, "; ")
}

// Apply sets the rendered policy on h, overwriting any existing value.
func (p *Policy) Apply(h http.Header) {
	h.Set(p.Header(), p.Value())
}
