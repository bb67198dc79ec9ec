// Package server binds the lookup engine to HTTP. Handlers are thin: they
// parse the request, call the engine, and map its outcomes onto status
// codes (miss → 404, fault → 500).
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/ohler55/ojg/oj"
	"go.uber.org/zap"

	"github.com/agentic-research/lexvault/api"
	"github.com/agentic-research/lexvault/internal/lookup"
)

// Server serves the lookup API.
type Server struct {
	engine *lookup.Engine
	log    *zap.Logger
	mux    *http.ServeMux
}

// New wires the routes for the given engine.
func New(engine *lookup.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{engine: engine, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /words/{word}", s.handleWord)
	s.mux.HandleFunc("GET /search", s.handleSearch)
	s.mux.HandleFunc("GET /manifest", s.handleManifest)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// Handler returns the full handler chain, request logging included.
func (s *Server) Handler() http.Handler {
	return s.withLogging(s.mux)
}

func (s *Server) handleWord(w http.ResponseWriter, r *http.Request) {
	word := r.PathValue("word")
	entry, err := s.engine.Lookup(r.Context(), word)
	switch {
	case errors.Is(err, lookup.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case err != nil:
		s.log.Error("lookup failed", zap.String("word", word), zap.Error(err))
		http.Error(w, "lookup failed", http.StatusInternalServerError)
	default:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(entry)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	res, err := s.engine.Prefix(r.Context(), query, limit)
	if err != nil {
		s.log.Error("prefix search failed", zap.String("query", query), zap.Error(err))
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, res)
}

// handleManifest exposes the raw manifest content verbatim. In streaming
// mode there is no manifest to show.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	if !s.engine.Sharded() {
		http.Error(w, "no manifest: streaming mode", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(oj.JSON(s.engine.Manifest())))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	mode := "streaming"
	if s.engine.Sharded() {
		mode = "sharded"
	}
	writeJSON(w, api.Health{Status: "ok", Mode: mode})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// statusRecorder captures the status code a handler wrote so the logging
// middleware can report it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("id", uuid.NewString()),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}
