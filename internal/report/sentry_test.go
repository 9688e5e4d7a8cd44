package report

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSetupWithEmptyDSNDisablesReporting(t *testing.T) {
	enabled = false
	if err := Setup("", "test"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if enabled {
		t.Error("empty DSN should leave reporting disabled")
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestMiddlewareRethrowsPanics(t *testing.T) {
	// The middleware must not swallow panics: it captures and rethrows,
	// leaving the response to an outer recoverer.
	if err := Setup("https://key@sentry.example.com/1", "test"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	t.Cleanup(func() { enabled = false })

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	defer func() {
		if recover() == nil {
			t.Error("panic was swallowed instead of rethrown")
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
