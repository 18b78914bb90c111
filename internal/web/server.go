// Package web is the HTTP host of the table engine. It keeps one grid.Table
// per client and dataset, exposes the table's mutators as endpoints and renders the
// derived view as HTMX fragments or JSON.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/tableview/internal/config"
	"github.com/JonMunkholm/tableview/internal/export"
	"github.com/JonMunkholm/tableview/internal/source"
	"github.com/JonMunkholm/tableview/internal/web/middleware"
	"github.com/JonMunkholm/tableview/internal/web/templates"
)

// Server is the HTTP server of the table UI and API.
type Server struct {
	cfg      *config.Config
	src      source.Source
	sessions *sessions
	exports  *export.Limiter
	limiter  *middleware.RateLimiter
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a server reading rows from src.
func NewServer(cfg *config.Config, src source.Source) *Server {
	s := &Server{
		cfg:      cfg,
		src:      src,
		sessions: newSessions(cfg.Table, slog.Default()),
		exports:  export.NewLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWait),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(clientSession)

	if s.cfg.Security.EnableCSP {
		s.router.Use(securityHeaders)
	}
	if s.cfg.Security.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(s.cfg.Security.RateLimit, time.Minute)
		s.router.Use(s.limiter.Middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Pages and the HTMX endpoints they call
	s.router.Get("/", s.handleIndex)
	s.router.Route("/table/{dataset}", func(r chi.Router) {
		r.Get("/", s.handleTablePage)
		s.tableRoutes(r)
	})

	// JSON API
	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security))

		r.Get("/datasets", s.handleListDatasets)
		r.Get("/status", s.handleStatus)

		r.Route("/table/{dataset}", func(r chi.Router) {
			r.Get("/", s.tableHandler(nil))
			s.tableRoutes(r)
			r.Get("/export/{format}", s.handleExport)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then waits for running exports.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	if st := s.exports.Status(); st.Active > 0 {
		slog.Info("waiting for exports to finish", "active", st.Active)
	}
	return s.exports.Drain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses. Scripts are
// allowed from the HTMX CDN only.
func securityHeaders(next http.Handler) http.Handler {
	csp := "default-src 'self'; " +
		"script-src 'self' " + cdnOrigin(templates.HTMXScript) + "; " +
		"style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", csp)
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// cdnOrigin returns the scheme and host of a script URL.
func cdnOrigin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
