// Package server exposes the aggregation surface over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/jmallone/multilit/internal/aggregate"
	"github.com/jmallone/multilit/internal/config"
	"github.com/jmallone/multilit/internal/fetch"
	"github.com/jmallone/multilit/internal/sources"
)

// defaultSource is used when the source query parameter is absent.
const defaultSource = sources.SelectorSpringer

// Server routes search requests to the source registry.
type Server struct {
	registry *aggregate.Registry
	log      *zap.Logger
}

func New(registry *aggregate.Registry, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{registry: registry, log: log}
}

// Router builds the HTTP handler: allow-all CORS, request logging, and
// the three routes of the search surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Get("/search", s.handleSearch)
	r.Get("/search/compact", s.handleCompact)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// query extracts and validates the q and source parameters.
func query(r *http.Request) (q, source string, ok bool) {
	q = r.URL.Query().Get("q")
	if q == "" {
		return "", "", false
	}
	source = r.URL.Query().Get("source")
	if source == "" {
		source = defaultSource
	}
	return q, source, true
}

// handleSearch serves raw mode: the provider-native payload for one
// source, or the combined raw map for source=all.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, source, ok := query(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	if source == aggregate.SelectorAll {
		out, err := s.registry.RawAll(r.Context(), q)
		if err != nil {
			s.writeUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	src, found := s.registry.Lookup(source)
	if !found {
		writeError(w, http.StatusBadRequest, "unknown source")
		return
	}
	out, err := src.Raw(r.Context(), q)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCompact serves canonical records: one source's list, or the
// deduplicated, sorted aggregate for source=all. Sources that fail
// under the tolerant policy contribute nothing and are logged.
func (s *Server) handleCompact(w http.ResponseWriter, r *http.Request) {
	q, source, ok := query(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	if source == aggregate.SelectorAll {
		recs, failed, err := s.registry.CompactAll(r.Context(), q)
		if err != nil {
			s.writeUpstreamError(w, err)
			return
		}
		for _, f := range failed {
			s.log.Warn("source failed", zap.String("source", f.Source), zap.Error(f.Err))
		}
		writeJSON(w, http.StatusOK, recs)
		return
	}

	src, found := s.registry.Lookup(source)
	if !found {
		writeError(w, http.StatusBadRequest, "unknown source")
		return
	}
	recs, err := src.Compact(r.Context(), q)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// writeUpstreamError maps a fetch-layer error onto the response: an
// upstream non-200 passes its status and body excerpt through; a
// missing credential or transport failure is the service's own fault.
func (s *Server) writeUpstreamError(w http.ResponseWriter, err error) {
	if se, ok := fetch.AsStatusError(err); ok {
		writeError(w, se.StatusCode, se.Body)
		return
	}
	if errors.Is(err, config.ErrSpringerKeyMissing) {
		writeError(w, http.StatusInternalServerError, config.ErrSpringerKeyMissing.Error())
		return
	}
	s.log.Error("upstream failure", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

// ErrorResponse is the error body shape.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}
