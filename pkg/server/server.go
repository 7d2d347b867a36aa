// Package server exposes stored analysis runs over a small JSON API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/elonfeng/hnpulse/internal/logger"
	"github.com/elonfeng/hnpulse/internal/store"
	"github.com/elonfeng/hnpulse/pkg/analyze"
	"github.com/elonfeng/hnpulse/pkg/fetch"
)

// Server provides the HTTP API.
type Server struct {
	store    store.Store
	analyzer *analyze.Analyzer
	sumOpts  analyze.SummaryOptions
	fetcher  fetch.Fetcher
	port     int
	log      logger.Logger
}

// New creates a new HTTP server. fetcher may be nil, which disables the
// refresh endpoint.
func New(s store.Store, analyzer *analyze.Analyzer, sumOpts analyze.SummaryOptions, fetcher fetch.Fetcher, port int, log logger.Logger) *Server {
	if port == 0 {
		port = 8080
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{
		store:    s,
		analyzer: analyzer,
		sumOpts:  sumOpts,
		fetcher:  fetcher,
		port:     port,
		log:      log,
	}
}

// Handler returns the route mux, exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/summary", s.handleSummary)
	mux.HandleFunc("/api/v1/stories", s.handleStories)
	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/refresh", s.handleRefresh)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.log.Info("server listening", logger.String("addr", addr))
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolveRun returns the requested run (?run=<id>) or the latest one.
func (s *Server) resolveRun(r *http.Request) (*store.Run, error) {
	if raw := r.URL.Query().Get("run"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid run id %q", raw)
		}
		return s.store.GetRun(r.Context(), id)
	}
	return s.store.LatestRun(r.Context())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	run, err := s.resolveRun(r)
	if err != nil {
		writeRunError(w, err)
		return
	}

	stories, err := s.store.RunStories(r.Context(), run.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	sum := s.analyzer.Summarize(stories, s.sumOpts)
	writeJSON(w, http.StatusOK, map[string]any{
		"run":     run,
		"summary": sum,
	})
}

func (s *Server) handleStories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	run, err := s.resolveRun(r)
	if err != nil {
		writeRunError(w, err)
		return
	}

	stories, err := s.store.RunStories(r.Context(), run.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run":   run,
		"data":  stories,
		"count": len(stories),
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  runs,
		"count": len(runs),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if s.fetcher == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no fetcher configured"})
		return
	}

	ctx := r.Context()
	stories, err := s.fetcher.Fetch(ctx)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	if len(stories) == 0 {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "fetch returned no stories"})
		return
	}

	derived := s.analyzer.Derive(stories)
	sum := s.analyzer.Summarize(derived, s.sumOpts)
	run := store.NewRun(s.fetcher.Name(), sum, 0)
	if err := s.store.SaveRun(ctx, run, derived); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("refresh run saved",
		logger.Int64("run_id", run.ID),
		logger.Int("stories", sum.StoryCount))

	writeJSON(w, http.StatusOK, map[string]any{
		"run":     run,
		"summary": sum,
	})
}

func writeRunError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNoRuns) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
