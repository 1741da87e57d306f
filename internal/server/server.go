package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Route binds a method and path pattern to a handler.
type Route struct {
	Method  string
	Path    string
	Handler http.Handler
}

// Handler defines the interface for groups of HTTP endpoints.
type Handler interface {
	Routes() []Route // Routes returns the endpoints this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers every route of a [Handler]
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

const shutdownTimeout = 10 * time.Second

// Server is an [http.Server] with graceful shutdown.
type Server struct {
	srv    *http.Server
	logger *log.Logger
}

// New creates a server listening on cfg's address.
func New(cfg shared.ServerConfig, handler http.Handler, logger *log.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}
