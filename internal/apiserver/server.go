package apiserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"tankarena/internal/game"
	"tankarena/internal/protocol"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP+WebSocket front door: the chi router plus the
// background gauge-sampling loop, following the teacher's
// construct-then-Start separation (internal/api/server.go) so the router
// can be exercised with httptest without opening a port.
type Server struct {
	arenas      map[string]*game.Arena
	protocol    *protocol.Handler
	router      *chi.Mux
	rateLimiter *IPRateLimiter
	httpServer  *http.Server
	stopSample  chan struct{}
}

// NewServer constructs a Server bound to arenas. The only goroutine it starts
// is the rate limiter's cleanup loop (from NewIPRateLimiter); serving and gauge
// sampling begin when Start is called.
func NewServer(arenas map[string]*game.Arena, protoHandler *protocol.Handler) *Server {
	paths := make([]string, 0, len(arenas))
	for p := range arenas {
		paths = append(paths, p)
	}

	rateLimiter := NewIPRateLimiter(DefaultRateLimitConfig)
	router := NewRouter(RouterConfig{
		ArenaPaths:  paths,
		Protocol:    protoHandler,
		RateLimiter: rateLimiter,
	})

	return &Server{
		arenas:      arenas,
		protocol:    protoHandler,
		router:      router,
		rateLimiter: rateLimiter,
		stopSample:  make(chan struct{}),
	}
}

// Router returns the HTTP handler, for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving HTTP on addr and starts the metrics sampling loop.
// Blocks until the server is shut down.
func (s *Server) Start(addr string) error {
	go s.sampleLoop()

	s.httpServer = &http.Server{Addr: addr, Handler: s.router}
	log.Printf("🌐 API server starting on %s", addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the HTTP listener and background workers.
func (s *Server) Stop() {
	close(s.stopSample)
	s.rateLimiter.Stop()
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(ctx)
	}
}

func (s *Server) sampleLoop() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopSample:
			return
		case <-ticker.C:
			for path, arena := range s.arenas {
				tanks, shapes, bullets := arena.Counts()
				UpdateArenaCounts(path, tanks, shapes, bullets)
			}
			UpdateWSConnections(s.protocol.ActiveConnections())
		}
	}
}
