// Package server exposes recorded runs over HTTP: a small JSON API plus
// HTML report rendering. It also watches the config file and hot-swaps the
// page set, so a long-running server reflects config edits without restart.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pagewatch/pagewatch/internal/config"
	"github.com/pagewatch/pagewatch/internal/history"
	"github.com/pagewatch/pagewatch/internal/logging"
	"github.com/pagewatch/pagewatch/internal/report"
	"github.com/pagewatch/pagewatch/internal/run"
)

// Server serves recorded runs and reports.
type Server struct {
	mu      sync.RWMutex
	cfg     *config.Config
	cfgPath string

	store  *history.Store
	logger *slog.Logger
}

// New returns a server over the given history store. cfgPath may be empty,
// in which case config watching is disabled.
func New(cfg *config.Config, cfgPath string, store *history.Store) *Server {
	return &Server{
		cfg:     cfg,
		cfgPath: cfgPath,
		store:   store,
		logger:  logging.Component("server"),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/pages", s.handlePages)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRun)
	})
	r.Get("/runs/{id}/report", s.handleRunReport)
	r.Get("/", s.handleLatestReport)

	return r
}

// Run serves until ctx is cancelled, watching the config file alongside.
func (s *Server) Run(ctx context.Context) error {
	if s.cfgPath != "" {
		go s.watchConfig(ctx)
	}

	srv := &http.Server{
		Addr:              s.currentConfig().Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server_listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) currentConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.currentConfig().Pages)
}

func (s *Server) handleRuns(w http.ResponseWriter, _ *http.Request) {
	runs, err := s.store.ListRuns(50)
	if err != nil {
		s.logger.Error("list_runs_failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list runs"})
		return
	}
	if runs == nil {
		runs = []history.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := s.store.GetRun(id)
	if err != nil {
		if errors.Is(err, history.ErrRunNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		s.logger.Error("get_run_failed", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load run"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := s.store.GetRun(id)
	if err != nil {
		if errors.Is(err, history.ErrRunNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "failed to load run", http.StatusInternalServerError)
		return
	}
	s.renderReport(w, result)
}

func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	result, err := s.store.LatestRun()
	if err != nil {
		if errors.Is(err, history.ErrRunNotFound) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><body><p>No runs recorded yet. Run <code>pagewatch audit</code> first.</p></body></html>"))
			return
		}
		http.Error(w, "failed to load latest run", http.StatusInternalServerError)
		return
	}
	s.renderReport(w, result)
}

func (s *Server) renderReport(w http.ResponseWriter, result *run.Run) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.HTML(w, result); err != nil {
		s.logger.Error("render_report_failed", "id", result.ID, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
