package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/juventudesmira/intake/internal/survey"
)

// Store is the table the service reads records from and writes them to.
type Store interface {
	Lookup(ctx context.Context, key string) (map[string]string, error)
	Upsert(ctx context.Context, row map[string]any) error
	Ping(ctx context.Context) (string, error)
}

type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// Option tunes the routed handler.
type Option func(*options)

type options struct {
	staticDir string
}

// WithStaticDir serves a built web form from dir for every path no API
// route claims.
func WithStaticDir(dir string) Option {
	return func(o *options) { o.staticDir = dir }
}

func New(addr string, logger *slog.Logger, schema *survey.Schema, store Store, checks map[string]Checker, opts ...Option) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(logger, schema, store, checks, opts...),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// NewHandler builds the routed handler with its middleware stack.
func NewHandler(logger *slog.Logger, schema *survey.Schema, store Store, checks map[string]Checker, opts ...Option) http.Handler {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(middleware.Recoverer)

	addRoutes(r, logger, schema, store, checks)
	if o.staticDir != "" {
		r.NotFound(handleStatic(o.staticDir))
	}
	return r
}

func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
