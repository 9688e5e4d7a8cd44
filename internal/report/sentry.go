// Package report wires optional Sentry error reporting. With an empty DSN
// every function is a no-op, so callers never need to branch on whether
// reporting is configured.
package report

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
)

var enabled bool

// Setup initializes the Sentry client. An empty dsn disables reporting.
func Setup(dsn, environment string) error {
	if dsn == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	}); err != nil {
		return err
	}
	enabled = true
	return nil
}

// Middleware captures panics from downstream handlers and reports them
// before repanicking so the router's recoverer can still respond.
func Middleware(next http.Handler) http.Handler {
	if !enabled {
		return next
	}
	handler := sentryhttp.New(sentryhttp.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
	return handler.Handle(next)
}

// Flush drains buffered events. Call before process exit.
func Flush() {
	if !enabled {
		return
	}
	sentry.Flush(2 * time.Second)
}
