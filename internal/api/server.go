package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/dono/internal/api/handlers"
	"github.com/amaumene/dono/internal/api/middleware"
	"github.com/amaumene/dono/internal/config"
	"github.com/amaumene/dono/internal/controllers"
	"github.com/amaumene/dono/internal/metrics"
)

// Server represents the HTTP server
type Server struct {
	server     *http.Server
	ingestCtrl *controllers.IngestController
	metrics    *metrics.Metrics
	logger     *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, ingestCtrl *controllers.IngestController, m *metrics.Metrics, logger *logrus.Logger) *Server {
	s := &Server{
		ingestCtrl: ingestCtrl,
		metrics:    m,
		logger:     logger,
	}

	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.routes(cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// routes configures all HTTP routes
func (s *Server) routes(cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging(s.logger))

	r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(s.logger))
	r.Method(http.MethodGet, "/status", handlers.NewStatusHandler(s.ingestCtrl, s.logger))
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	items := handlers.NewItemsHandler(s.ingestCtrl, s.logger)
	hist := handlers.NewHistoryHandler(s.ingestCtrl, s.logger)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(cfg.RateLimit, time.Minute)).Method(http.MethodPost, "/items", items)
		r.Get("/history", hist.Merged)
		r.Get("/{kind}/current", hist.Current)
		r.Get("/{kind}/previous", hist.Previous)
		r.Get("/{kind}/all", hist.All)
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("addr", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
