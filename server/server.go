// Package server exposes turns and project trees over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/brettbedarf/projectfs/config"
	"github.com/brettbedarf/projectfs/internal/util"
	"github.com/brettbedarf/projectfs/store"
	"github.com/brettbedarf/projectfs/turn"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// Server routes HTTP requests to a turn runner and a snapshot store
type Server struct {
	cfg    *config.Config
	runner *turn.Runner
	store  store.Store
	http   *http.Server
}

// New creates a Server. runner and st should share the same store.
func New(cfg *config.Config, runner *turn.Runner, st store.Store) *Server {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	return &Server{
		cfg:    cfg,
		runner: runner,
		store:  st,
	}
}

// Handler returns the router serving every endpoint
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/turns", s.runAnonymousTurn)
		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Post("/turns", s.runProjectTurn)
			r.Get("/files", s.getProjectFiles)
		})
	})
	return r
}

// ListenAndServe serves on cfg.Listen until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	logger := util.GetLogger("Server")
	s.http = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          util.NewLogLogger("HTTPServer", util.ErrorLevel),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", s.cfg.Listen).Msg("Listening")
		errCh <- s.http.ListenAndServe()
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
		logger.Info().Msg("Shutting down")
		return s.http.Shutdown(shutdownCtx)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger := util.GetLogger("HTTP")
		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Request served")
	})
}
