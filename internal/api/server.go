// Package api exposes the run lifecycle over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alvmarrod/domain-finder/internal/candidates"
	"github.com/alvmarrod/domain-finder/internal/export"
	"github.com/alvmarrod/domain-finder/internal/run"
	"github.com/alvmarrod/domain-finder/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Runs is the run lifecycle used by the handlers
type Runs interface {
	Start(req run.Request) (string, error)
	Progress() run.Progress
	Reset() error
}

// Artifacts resolves export file names for download
type Artifacts interface {
	Resolve(name string) (string, error)
}

// Server holds the HTTP handlers
type Server struct {
	runs         Runs
	provider     candidates.Provider
	artifacts    Artifacts
	defaultMinDR float64
}

// New creates a server
func New(runs Runs, provider candidates.Provider, artifacts Artifacts, defaultMinDR float64) *Server {
	return &Server{runs: runs, provider: provider, artifacts: artifacts, defaultMinDR: defaultMinDR}
}

// Routes returns the router with all endpoints mounted
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.search)
		r.Get("/progress", s.progress)
		r.Post("/reset", s.reset)
		r.Post("/fetch-bulk-domains", s.fetchBulk)
		r.Post("/fetch-c99-domains", s.fetchBulk)
		r.Get("/download/{filename}", s.download)
	})
	return r
}

type searchRequest struct {
	Mode       string          `json:"mode"`
	Keywords   json.RawMessage `json:"keywords"`
	TLDs       []string        `json:"tlds"`
	MaxCheck   int             `json:"max_check"`
	MinDR      *float64        `json:"min_dr"`
	Domains    []string        `json:"domains"`
	C99Domains []string        `json:"c99_domains"`
}

// keywords accepts either a comma-separated string or a list of strings
func (req searchRequest) keywords() ([]string, error) {
	raw := bytes.TrimSpace(req.Keywords)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '[' {
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("keywords: %w", err)
		}
		return list, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("keywords: %w", err)
	}
	return candidates.SplitKeywords(s), nil
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	keywords, err := body.keywords()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	minDR := s.defaultMinDR
	if body.MinDR != nil {
		minDR = *body.MinDR
	}
	mode := body.Mode
	if mode == "" {
		mode = run.ModeKeyword
	}

	req := run.Request{
		Mode:     mode,
		Keywords: keywords,
		TLDs:     body.TLDs,
		MaxCheck: body.MaxCheck,
		MinDR:    minDR,
		Domains:  append(body.Domains, body.C99Domains...),
	}

	id, err := s.runs.Start(req)
	switch {
	case errors.Is(err, run.ErrRunActive):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, run.ErrNoCandidates), errors.Is(err, run.ErrInvalidMode):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "started",
		"search_id": id,
		"mode":      mode,
	})
}

func (s *Server) progress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.runs.Progress())
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	if err := s.runs.Reset(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(run.StatusIdle)})
}

func (s *Server) fetchBulk(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TLD string `json:"tld"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TLD == "" {
		writeError(w, http.StatusBadRequest, "tld is required")
		return
	}

	domains, err := candidates.FetchBulk(r.Context(), s.provider, body.TLD)
	if err != nil {
		logrus.Warnf("Bulk fetch for %s failed: %v", body.TLD, err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tld":     body.TLD,
		"count":   len(domains),
		"domains": domains,
	})
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	path, err := s.artifacts.Resolve(name)
	if err != nil {
		if errors.Is(err, export.ErrNotFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.Version})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger logs one line per request
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logrus.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"status":     ww.Status(),
			"duration":   time.Since(start).Round(time.Millisecond),
		}).Debugf("%s %s", r.Method, r.URL.Path)
	})
}

// Shutdown stops srv, waiting at most timeout for in-flight requests
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
