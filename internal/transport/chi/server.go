// Package chi exposes the web-facing search and health API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mirrordex/internal/domain"
	"github.com/kailas-cloud/mirrordex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/mirrordex/internal/usecase/health"
)

// Searcher is the search usecase surface the transport needs.
type Searcher interface {
	Search(ctx context.Context, mode, query string, limit int) ([]result.Result, error)
	SecureSearch(ctx context.Context, username, mode, query string, limit int) ([]result.Result, error)
}

// Server hosts the HTTP handlers.
type Server struct {
	search Searcher
	health *healthuc.Service
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{search: search, health: health, logger: logger}
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/search", s.handleSearch)
	r.Get("/secure-search", s.handleSecureSearch)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

type searchResponse struct {
	Results []result.Result `json:"results"`
	Total   int             `json:"total"`
}

// handleSearch handles GET /search. Unfiltered; the route sits behind
// API-key auth.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "query parameter q is required")
		return
	}

	results, err := s.search.Search(r.Context(), r.URL.Query().Get("mode"), query, parseLimit(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: results, Total: len(results)})
}

// handleSecureSearch handles GET /secure-search. Results are filtered
// to what the named user is permitted to read.
func (s *Server) handleSecureSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "query parameter q is required")
		return
	}
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "query parameter username is required")
		return
	}

	results, err := s.search.SecureSearch(r.Context(), username, r.URL.Query().Get("mode"), query, parseLimit(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: results, Total: len(results)})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTransientUpstream):
		s.logger.Warn("upstream error", zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream_error", "search backend unavailable")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "not found")
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}
