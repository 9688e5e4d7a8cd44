package armor

import (
	"net/http"
	"strings"
)

// Middleware returns HTTP middleware that applies p to every response
// before the next handler runs. A nil p means DefaultPolicy.
//
// When p.HSTS.RequireTLS is set, Strict-Transport-Security is only sent on
// requests that arrived over TLS, either natively or attested by a trusted
// proxy via X-Forwarded-Proto.
//
// Middleware panics if p carries an invalid custom rule; validate
// policies built from untrusted input with Policy.Validate first.
func Middleware(p *Policy) func(http.Handler) http.Handler {
	if p == nil {
		p = DefaultPolicy()
	}
	if err := p.Validate(); err != nil {
		panic("armor: " + err.Error())
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p.apply(w.Header(), requestIsSecure(r))
			next.ServeHTTP(w, r)
		})
	}
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
