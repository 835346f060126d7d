package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pantry/internal/handlers"
	applog "pantry/internal/log"
)

func TestNewRouterRegistersHealthRoute(t *testing.T) {
	router := newRouter(MetricsConfig{})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected /healthz to return 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json content type, got %q", ct)
	}
}

func TestNewRouterMetricsRoute(t *testing.T) {
	router := newRouter(MetricsConfig{Enabled: true, Path: "/metrics"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Fatal("expected prometheus exposition output")
	}

	rr = httptest.NewRecorder()
	newRouter(MetricsConfig{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected /metrics to be absent when disabled, got %d", rr.Code)
	}
}

func TestNewRouterAPIRoutes(t *testing.T) {
	handlers.Configure(nil, nil)
	router := newRouter(MetricsConfig{})

	for _, path := range []string{"/app/api/recipes", "/app/api/recipes/1/labels", "/app/api/vendors/3", "/app/api/recipe-ingredients/4"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected API handler to answer 503 without a database, got %d", path, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/app" {
		t.Fatalf("expected / to redirect to /app, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestWithRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	handler := withRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = applog.RequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	handler.ServeHTTP(rr, req)
	if seen != "abc-123" || rr.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("expected inbound id to be kept, got %q / %q", seen, rr.Header().Get("X-Request-ID"))
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || seen == "abc-123" || rr.Header().Get("X-Request-ID") != seen {
		t.Fatalf("expected a generated id, got %q", seen)
	}
}
