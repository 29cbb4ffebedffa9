package apiserver

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"tankarena/internal/protocol"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig bundles the dependencies NewRouter needs, following the
// teacher's pure-construction factory shape (internal/api/router.go):
// no listeners, safe to drop into httptest.NewServer. When RateLimiter is nil,
// NewRouter creates one with NewIPRateLimiter, which starts a cleanup goroutine.
type RouterConfig struct {
	ArenaPaths  []string
	Protocol    *protocol.Handler
	RateLimiter *IPRateLimiter
	CORSOrigins []string
	DisableLog  bool
}

// NewRouter builds the HTTP router: /healthz, /serverinfo, /metrics, a
// per-arena WebSocket upgrade at /arena/{path}/ws, and a plaintext
// catch-all (spec.md §6.3).
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(instrumentRequests)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)
	}
	r.Use(rateLimiter.Middleware)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/healthz", handleHealthz)
	r.Get("/metrics", metricsHandler().ServeHTTP)
	r.Get("/serverinfo", handleServerInfo(cfg.ArenaPaths))

	r.Route("/arena/{path}", func(r chi.Router) {
		r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
			path := chi.URLParam(req, "path")
			cfg.Protocol.ServeArena(w, req, path)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("not found"))
	})

	return r
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleServerInfo returns the list of joinable arena paths (spec.md §6.3),
// sorted for a deterministic response body.
func handleServerInfo(paths []string) http.HandlerFunc {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"arenas": sorted})
	}
}

// instrumentRequests records RED-style HTTP metrics per request.
func instrumentRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		RecordRequest(r.Method, routePattern(r), rec.status, time.Since(start))
	})
}

func routePattern(r *http.Request) string {
	if ctx := chi.RouteContext(r.Context()); ctx != nil && ctx.RoutePattern() != "" {
		return ctx.RoutePattern()
	}
	return r.URL.Path
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
