// Package server exposes the dashboard views, chart images and downloads
// over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/internal/config"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Server serves the dashboard API.
type Server struct {
	router *chi.Mux
	cache  *dataset.Cache
	cfg    *config.Config
	logger log.Logger
}

// New builds a server reading the clean and raw tables named in cfg from
// cache. The caller registers the sources with the cache.
func New(cfg *config.Config, cache *dataset.Cache) *Server {
	s := &Server{
		router: chi.NewRouter(),
		cache:  cache,
		cfg:    cfg,
		logger: log.GetLoggerWithName("server"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Get("/overview", s.handleOverview)
		r.Get("/analysis", s.handleAnalysis)
		r.Get("/cleaning", s.handleCleaning)
		r.Get("/regression", s.handleRegression)
		r.Get("/regions", s.handleRegions)
		r.Get("/global", s.handleGlobal)

		r.Get("/export/filtered", s.handleExportFiltered)
		r.Get("/export/summary", s.handleExportSummary)
		r.Get("/export/cleaned", s.handleExportCleaned)

		r.Post("/cache/reload", s.handleReload)
	})

	s.router.Get("/charts/{file}", s.handleChart)
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "server.addr", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server: listen")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server: shutdown")
	}
	return nil
}

func (s *Server) clean(ctx context.Context) (*dataset.Table, error) {
	return s.cache.Get(ctx, s.cfg.Data.CleanSource)
}

func (s *Server) raw(ctx context.Context) (*dataset.Table, error) {
	return s.cache.Get(ctx, s.cfg.Data.RawSource)
}
