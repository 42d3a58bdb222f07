// Package api exposes the composition pipeline over HTTP. The server
// is stateless: every request runs the pipeline from scratch and the
// response carries the finished PNG or a JSON error, nothing is stored
// server-side.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/postframe/postframe/pkg/integrations/caption"
	"github.com/postframe/postframe/pkg/integrations/imagegen"
	"github.com/postframe/postframe/pkg/pipeline"
)

// Timeouts for the HTTP server. Compose requests can fetch remote
// images, so the write timeout is generous.
const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 2 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// Server handles postframe HTTP requests.
type Server struct {
	runner  *pipeline.Runner
	caption *caption.Client
	art     *imagegen.Client
	logger  *log.Logger
	router  chi.Router
}

// Options configures a Server. Runner is required; collaborator
// clients may be nil, in which case their endpoints report the
// not-configured error.
type Options struct {
	Runner  *pipeline.Runner
	Caption *caption.Client
	Art     *imagegen.Client
	Logger  *log.Logger
}

// NewServer wires handlers and middleware into a ready-to-serve Server.
func NewServer(opts Options) (*Server, error) {
	if opts.Runner == nil {
		return nil, errors.New("api: runner is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		runner:  opts.Runner,
		caption: opts.Caption,
		art:     opts.Art,
		logger:  logger,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/compose", s.handleCompose)
		r.Post("/caption", s.handleCaption)
		r.Post("/background", s.handleBackground)
	})

	return r
}

// ListenAndServe runs the server on addr until ctx is cancelled, then
// drains in-flight requests for up to shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}
