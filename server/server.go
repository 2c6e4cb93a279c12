package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/spetersoncode/janus"
	"github.com/spetersoncode/janus/a2a"
	"github.com/spetersoncode/janus/langgraph"
	"github.com/spetersoncode/janus/store"
)

// Config holds server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// AllowedOrigins for CORS. Empty means allow all.
	AllowedOrigins []string
	// ReadTimeout for inbound requests. Zero means no timeout.
	ReadTimeout time.Duration
}

// Server serves one agent over both protocols on a shared port.
type Server struct {
	httpServer *http.Server
	store      *store.Store
	a2a        *a2a.Handler
	langgraph  http.Handler
	log        *slog.Logger
}

// New builds the dual-protocol server. Both adapters share one store and
// one handler instance.
func New(cfg Config, card a2a.AgentCard, handler janus.Handler) *Server {
	s := store.New()

	srv := &Server{
		store:     s,
		a2a:       a2a.NewHandler(s, handler, card),
		langgraph: langgraph.NewHandler(s, handler, card.Name, map[string]any{"description": card.Description}).Routes(),
		log:       slog.With("component", "server"),
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	srv.httpServer = &http.Server{
		Addr:        cfg.Addr,
		Handler:     middleware.Recoverer(c.Handler(http.HandlerFunc(srv.route))),
		ReadTimeout: cfg.ReadTimeout,
		// Streaming responses stay open indefinitely.
		WriteTimeout: 0,
	}
	return srv
}

// Store exposes the shared task store, mainly for tests and embedding.
func (s *Server) Store() *store.Store {
	return s.store
}

// Handler returns the routing entry point without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// route dispatches a request to the owning adapter. Rules are checked in
// priority order; the root POST is always A2A JSON-RPC regardless of
// payload shape.
func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if r.Method == http.MethodGet && (path == a2a.WellKnownCardPath || path == a2a.WellKnownCardPathNoExt) {
		s.a2a.ServeCard(w, r)
		return
	}
	if r.Method == http.MethodPost && path == "/" {
		s.a2a.ServeHTTP(w, r)
		return
	}
	if path == "/info" || path == "/ok" ||
		hasAnyPrefix(path, "/assistants", "/threads", "/runs", "/store") {
		s.langgraph.ServeHTTP(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
}

func hasAnyPrefix(path string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.log.Info("listening", "addr", ln.Addr().String())
	err = s.httpServer.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
