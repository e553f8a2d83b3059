// Package web provides the HTTP server and handlers for the price results page.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/PriceView/internal/config"
	"github.com/JonMunkholm/PriceView/internal/core"
	custommw "github.com/JonMunkholm/PriceView/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the price results page.
type Server struct {
	cfg      *config.Config
	store    *core.RecordStore
	reporter *core.Reporter
	inflight *core.Inflight
	router   *chi.Mux
	server   *http.Server

	reportLimiter *ipLimiter
}

// NewServer creates a new Server instance. inflight may be nil when the
// reporter was built without one.
func NewServer(cfg *config.Config, store *core.RecordStore, reporter *core.Reporter, inflight *core.Inflight) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		reporter: reporter,
		inflight: inflight,
		router:   chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.reportLimiter = newIPLimiter(cfg.Rate.ReportLimit, time.Minute)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(custommw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(custommw.Logger)
	s.router.Use(middleware.Recoverer)

	// Security hardening
	s.router.Use(s.securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newIPLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}

	// The live socket hijacks the connection, so it stays outside the
	// compress and timeout wrappers.
	s.router.Get("/live", s.handleLive)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

		// Pages
		r.Get("/", s.handlePage)
		r.Get("/results", s.handleResults)
		r.Get("/export", s.handleExport)
		r.With(s.limitReports).Post("/report", s.handleReport)
		r.Get("/healthz", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(custommw.APIKeyAuth(&s.cfg.Security))
			s.registerAPI(r)
		})
	})
}

// limitReports applies the per-IP report budget, if rate limiting is on.
func (s *Server) limitReports(next http.Handler) http.Handler {
	if s.reportLimiter == nil {
		return next
	}
	return s.reportLimiter.middleware(next)
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
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// WaitForReports blocks until in-flight report sends finish or ctx is done.
func (s *Server) WaitForReports(ctx context.Context) error {
	if s.inflight == nil {
		return nil
	}
	if n := s.inflight.ActiveCount(); n > 0 {
		slog.Info("waiting for report sends", "active", n)
	}
	return s.inflight.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		if s.cfg.Security.EnableCSP {
			// Scripts only from self; the live socket connects back to the same host.
			w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:; connect-src 'self'")
		}

		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
