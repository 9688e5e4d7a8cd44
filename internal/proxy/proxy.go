// Package proxy forwards requests to a single upstream origin and hardens
// every response header set on the way back. Hardening happens on the
// upstream response rather than the inbound ResponseWriter so upstream
// values for the managed headers can never leak through or duplicate.
package proxy

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/armorhq/armor/internal/circuitbreaker"
	"github.com/armorhq/armor/internal/config"
	apierrors "github.com/armorhq/armor/internal/errors"
	"github.com/armorhq/armor/internal/logger"
	"github.com/armorhq/armor/internal/metrics"
	"github.com/armorhq/armor/pkg/armor"
)

type contextKey string

const secureKey contextKey = "secure"

// Proxy is an http.Handler that forwards to the configured upstream.
type Proxy struct {
	target      *url.URL
	rp          *httputil.ReverseProxy
	breaker     *circuitbreaker.Breaker
	policy      *armor.Policy
	headerNames []string
	timeout     time.Duration
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// New builds a Proxy for cfg.URL applying policy to every upstream
// response. A nil policy means armor.DefaultPolicy.
func New(cfg config.UpstreamConfig, policy *armor.Policy, appLogger zerolog.Logger, m *metrics.Metrics) (*Proxy, error) {
	target, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		policy = armor.DefaultPolicy()
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	p := &Proxy{
		target:      target,
		breaker:     circuitbreaker.New("upstream", breakerConfig(cfg.Breaker), appLogger, m),
		policy:      policy,
		headerNames: policy.HeaderNames(),
		timeout:     cfg.Timeout.Duration,
		metrics:     m,
		logger:      appLogger,
	}

	p.rp = &httputil.ReverseProxy{
		Director:       p.director(cfg.PassHostHeader),
		Transport:      &breakerTransport{inner: http.DefaultTransport, breaker: p.breaker},
		ModifyResponse: p.hardenResponse,
		ErrorHandler:   p.handleError,
	}

	return p, nil
}

func breakerConfig(cfg config.BreakerConfig) circuitbreaker.Config {
	return circuitbreaker.Config{
		Enabled:             cfg.Enabled,
		MaxRequests:         cfg.MaxRequests,
		Interval:            cfg.Interval.Duration,
		Timeout:             cfg.Timeout.Duration,
		ConsecutiveFailures: cfg.ConsecutiveFailures,
		FailureRatio:        cfg.FailureRatio,
		MinRequests:         cfg.MinRequests,
	}
}

// ServeHTTP forwards the request and records upstream metrics.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	ctx = context.WithValue(ctx, secureKey, requestIsSecure(r))

	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	p.rp.ServeHTTP(sw, r.WithContext(ctx))
	p.metrics.ObserveUpstream(r.Method, strconv.Itoa(sw.status), time.Since(start))
}

// director rewrites the outbound request to point at the upstream.
func (p *Proxy) director(passHostHeader bool) func(*http.Request) {
	return func(req *http.Request) {
		req.URL.Scheme = p.target.Scheme
		req.URL.Host = p.target.Host
		req.URL.Path = joinPath(p.target.Path, req.URL.Path)
		if p.target.RawQuery != "" {
			if req.URL.RawQuery == "" {
				req.URL.RawQuery = p.target.RawQuery
			} else {
				req.URL.RawQuery = p.target.RawQuery + "&" + req.URL.RawQuery
			}
		}
		if !passHostHeader {
			req.Host = p.target.Host
		}
		if secure, _ := req.Context().Value(secureKey).(bool); secure {
			req.Header.Set("X-Forwarded-Proto", "https")
		} else {
			req.Header.Set("X-Forwarded-Proto", "http")
		}
	}
}

// hardenResponse applies the policy to the upstream response headers.
func (p *Proxy) hardenResponse(resp *http.Response) error {
	secure := true
	if resp.Request != nil {
		if s, ok := resp.Request.Context().Value(secureKey).(bool); ok {
			secure = s
		}
	}
	if err := p.policy.ApplyWithTransport(resp.Header, secure); err != nil {
		return err
	}
	p.metrics.ObserveHardened(p.headerNames)
	return nil
}

// handleError translates proxy failures into the error taxonomy.
func (p *Proxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	code := classifyError(err)
	p.metrics.ObserveUpstreamError(string(code))

	log := logger.FromContext(r.Context())
	log.Error().
		Err(err).
		Str("upstream", p.target.String()).
		Str("code", string(code)).
		Msg("proxy.upstream_failed")

	// Error responses are served by us, so they get hardened too.
	_ = p.policy.ApplyWithTransport(w.Header(), requestIsSecure(r))

	switch code {
	case apierrors.ErrCodeBreakerOpen:
		apierrors.WriteSimpleError(w, code, "Upstream is temporarily unavailable (circuit open).")
	case apierrors.ErrCodeUpstreamTimeout:
		apierrors.WriteSimpleError(w, code, "Upstream did not respond in time.")
	default:
		apierrors.WriteSimpleError(w, code, "Upstream request failed.")
	}
}

func classifyError(err error) apierrors.ErrorCode {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return apierrors.ErrCodeBreakerOpen
	case errors.Is(err, context.DeadlineExceeded):
		return apierrors.ErrCodeUpstreamTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apierrors.ErrCodeUpstreamTimeout
	}
	return apierrors.ErrCodeUpstreamUnavailable
}

// breakerTransport wraps a RoundTripper with circuit breaker protection.
// Only transport-level failures count against the breaker; upstream 5xx
// responses still reach the client and do not trip it.
type breakerTransport struct {
	inner   http.RoundTripper
	breaker *circuitbreaker.Breaker
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	v, err := t.breaker.Execute(func() (interface{}, error) {
		return t.inner.RoundTrip(req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*http.Response), nil
}

// statusWriter records the status code written downstream.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func joinPath(prefix, path string) string {
	switch {
	case prefix == "" || prefix == "/":
		return path
	case path == "":
		return prefix
	}
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(path, "/")
}
