package apiserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tankarena/internal/banstore"
	"tankarena/internal/protocol"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	bans, err := banstore.NewFileStore("")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	proto := protocol.NewHandler(nil, bans)
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000, CleanupInterval: time.Minute})
	t.Cleanup(rl.Stop)
	return NewRouter(RouterConfig{
		ArenaPaths:  []string{"FFA", "Duel"},
		Protocol:    proto,
		RateLimiter: rl,
		DisableLog:  true,
	})
}

func TestHealthzReturnsOK(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestServerInfoListsSortedArenaPaths(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/serverinfo", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Arenas []string `json:"arenas"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Arenas) != 2 || body.Arenas[0] != "Duel" || body.Arenas[1] != "FFA" {
		t.Fatalf("expected sorted [Duel FFA], got %v", body.Arenas)
	}
}

func TestNotFoundRouteReturnsPlaintext(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain content type, got %q", ct)
	}
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "# HELP") {
		t.Fatal("expected Prometheus text exposition with # HELP lines")
	}
}
