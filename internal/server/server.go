// File: internal/server/server.go
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/iyunix/go-chatstore/internal/config"
	"github.com/iyunix/go-chatstore/internal/handlers"
	"github.com/iyunix/go-chatstore/internal/logging"
	"github.com/iyunix/go-chatstore/internal/middleware"
	"github.com/iyunix/go-chatstore/internal/ratelimit"
)

// RouterOptions configures NewRouter. A nil Limiter disables rate limiting.
type RouterOptions struct {
	AllowedOrigins []string
	Limiter        *ratelimit.MemoryRateLimiter
	Logger         logging.Logger
}

// NewRouter wires the chat routes and wraps them in the middleware chain.
// The chain sits outside the mux so unknown routes are logged and tagged too.
func NewRouter(chatHandler *handlers.ChatHandler, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}

	limited := func(h http.HandlerFunc) http.Handler {
		if opts.Limiter == nil {
			return h
		}
		return middleware.RateLimitMiddleware(opts.Limiter, logger)(h)
	}

	r := mux.NewRouter()

	r.HandleFunc("/health", chatHandler.Health).Methods(http.MethodGet)

	r.Handle("/api/chats/", limited(chatHandler.CreateChat)).Methods(http.MethodPost)
	r.Handle("/api/chats", limited(chatHandler.CreateChat)).Methods(http.MethodPost)
	r.HandleFunc("/api/chats/{chat_id}", chatHandler.GetChat).Methods(http.MethodGet)
	r.Handle("/api/chats/{chat_id}", limited(chatHandler.DeleteChat)).Methods(http.MethodDelete)
	r.Handle("/api/chats/{chat_id}/messages", limited(chatHandler.CreateMessage)).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:         86400,
	})

	var h http.Handler = r
	h = middleware.LoggingMiddleware(logger)(h)
	h = middleware.RecoverPanic(logger)(h)
	h = middleware.RequestID(h)
	h = c.Handler(h)
	return h
}

// Server owns the http.Server and its shutdown.
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
	logger          logging.Logger
}

func New(cfg *config.Config, handler http.Handler, logger logging.Logger) *Server {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Server{
		http: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", "timeout", s.shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
