// Package server exposes the engine.Facade's host callback surface over
// HTTP, for an editor intelligence client running out-of-process (a
// browser-hosted script editor talking to a sidecar, rather than an
// in-process language-server embedding).
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/viant/luasentry/engine"
)

// Server wires chi routing and CORS around one engine.Facade. Route
// paths follow §11's domain-stack wiring table exactly.
type Server struct {
	facade *engine.Facade
	logger *zap.Logger
	router chi.Router
}

// New constructs a Server ready to ListenAndServe. A nil logger is
// replaced with a no-op logger.
func New(facade *engine.Facade, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{facade: facade, logger: logger}
	s.router = s.newRouter()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) newRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleHealth)
	r.Post("/analyze", s.handleAnalyze)
	r.Post("/completions", s.handleCompletions)
	r.Post("/hover", s.handleHover)
	r.Post("/signature-help", s.handleSignatureHelp)
	r.Post("/definition", s.handleDefinition)
	r.Post("/references", s.handleReferences)
	r.Post("/outline", s.handleOutline)
	r.Post("/diagnostics", s.handleDiagnostics)

	return r
}

// requestLogger assigns a per-request id (google/uuid) for log
// correlation and logs the request lifecycle at Info, per the
// ambient-stack logging contract.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		start := time.Now()
		s.logger.Info("request started",
			zap.String("requestId", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r)
		s.logger.Info("request finished",
			zap.String("requestId", id),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"service": "luasentryd"})
}
