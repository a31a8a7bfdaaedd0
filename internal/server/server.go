// Package server wires the document store handlers, middleware and HTTP server
// of the reference remote store.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/ground/internal/server/handlers"
	"github.com/iudanet/ground/internal/server/middleware"
)

const (
	healthPath      = "/api/v1/health"
	shutdownTimeout = 10 * time.Second
)

// Store is the persistence the server needs.
type Store interface {
	handlers.DocumentStore
	handlers.Pinger
}

// Config holds the HTTP settings of the server.
type Config struct {
	JWT        handlers.JWTConfig
	Version    string
	RateWindow time.Duration
	RateLimit  int // запросов на IP за окно; 0 отключает ограничение
}

// Server обслуживает HTTP API сервера документов
type Server struct {
	handler  http.Handler
	logger   *slog.Logger
	limiters []*middleware.RateLimiter
}

// New builds the routes. Call Close to stop the rate limiters.
func New(cfg Config, store Store, logger *slog.Logger) *Server {
	s := &Server{logger: logger}

	health := handlers.NewHealthHandler(logger, store, cfg.Version)
	documents := handlers.NewDocumentHandler(logger, store)

	auth := middleware.AuthMiddleware(logger, cfg.JWT)
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }
	push := protected(documents.PushMutations)

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+healthPath, health.Health)
	mux.Handle("GET /api/v1/projects/{project}", protected(documents.GetProject))
	mux.Handle("GET /api/v1/projects/{project}/features/{id}", protected(documents.GetFeature))
	mux.Handle("GET /api/v1/projects/{project}/observations/{id}", protected(documents.GetObservation))
	mux.Handle("GET /api/v1/projects/{project}/changes", protected(documents.GetChanges))

	var handler http.Handler = mux
	if cfg.RateLimit > 0 {
		byIP := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, logger)
		// Пакеты мутаций одного пользователя ограничиваются отдельно от чтения
		byUser := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, logger)
		s.limiters = append(s.limiters, byIP, byUser)

		push = auth(byUser.Middleware(middleware.ByUser)(http.HandlerFunc(documents.PushMutations)))
		handler = byIP.Middleware(middleware.ByClientIP)(handler)
	}
	mux.Handle("POST /api/v1/projects/{project}/mutations", push)

	handler = middleware.LoggingWithSkip(logger, []string{healthPath})(handler)
	s.handler = middleware.RecoveryMiddleware(logger)(handler)
	return s
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close stops background goroutines of the middleware.
func (s *Server) Close() {
	for _, l := range s.limiters {
		l.Stop()
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "addr", listener.Addr().String())
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
