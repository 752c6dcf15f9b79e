// Package web serves the SliceOfPie pages and JSON API.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/SliceOfPie/internal/config"
	"github.com/JonMunkholm/SliceOfPie/internal/core"
	mw "github.com/JonMunkholm/SliceOfPie/internal/web/middleware"
)

// Server is the HTTP server for chart sessions.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	limiters      []*mw.RateLimiter
	uploadLimiter func(http.Handler) http.Handler
}

// NewServer creates a Server for service configured by cfg.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(requestMetadata)

	s.uploadLimiter = passThrough
	if s.cfg.Rate.Enabled {
		general := mw.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		uploads := mw.NewRateLimiter(s.cfg.Rate.UploadLimit, time.Minute)
		s.limiters = append(s.limiters, general, uploads)
		s.router.Use(general.Middleware)
		s.uploadLimiter = uploads.Middleware
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	// Pages
	s.router.Get("/", s.handleIndex)
	s.router.With(s.uploadLimiter).Post("/upload", s.handleUploadForm)
	s.router.Route("/s/{sessionID}", func(r chi.Router) {
		r.Use(sessionContext)
		r.Get("/", s.handleSessionPage)
		r.Post("/cells", s.handleEditCellForm)
		r.Post("/chart", s.handleSelectChartForm)
		r.Get("/chart.png", s.handleChartImage)
		r.Get("/export", s.handleExport)
	})

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		r.Get("/status", s.handleStatus)
		r.With(s.uploadLimiter).Post("/sessions", s.handleCreateSession)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Use(sessionContext)
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.With(s.uploadLimiter).Put("/file", s.handleReplaceFile)
			r.Post("/cells", s.handleEditCell)
			r.Put("/chart", s.handleSelectChart)
			r.Get("/series", s.handleSeries)
			r.Get("/export", s.handleExport)
			r.Get("/export/{format}", s.handleExport)
			r.Get("/audit", s.handleAuditHistory)
		})
	})
}

// Start listens on the configured address until Shutdown is called or ctx
// ends. Rate limiter cleanup runs for the lifetime of ctx.
func (s *Server) Start(ctx context.Context) error {
	for _, rl := range s.limiters {
		go rl.Run(ctx)
	}

	srv := s.cfg.Server
	s.server = &http.Server{
		Addr:         srv.Addr(),
		Handler:      s.router,
		ReadTimeout:  srv.ReadTimeout,
		WriteTimeout: srv.WriteTimeout,
		IdleTimeout:  srv.IdleTimeout,
	}

	slog.Info("starting server", "addr", srv.Addr())
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func passThrough(next http.Handler) http.Handler {
	return next
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// Inline styles only; chart images are served from self.
				h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; form-action 'self'")
			}
			next.ServeHTTP(w, r)
		})
	}
}
