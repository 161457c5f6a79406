// Package server is the HTTP/WebSocket glue around the interpreter: a JSON
// interpret endpoint, the interactive console socket, and task listing.
package server

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/vthunder/ainotes/internal/apply"
	"github.com/vthunder/ainotes/internal/interpret"
	"github.com/vthunder/ainotes/internal/logging"
	"github.com/vthunder/ainotes/internal/task"
)

const defaultTimezone = "Asia/Kuwait"

// Server holds the request-handling dependencies.
type Server struct {
	builder *interpret.Builder
	applier *apply.Applier
	store   *task.Store
	limiter *RateLimiter
}

// New creates a server over the given core components.
func New(builder *interpret.Builder, applier *apply.Applier, store *task.Store) *Server {
	return &Server{
		builder: builder,
		applier: applier,
		store:   store,
		limiter: NewRateLimiter(10, time.Minute),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.AllowAll().Handler)

	r.Post("/ai/interpret", s.rateLimited(s.handleInterpret))
	r.Get("/ws/ai", s.handleConsole)
	r.Get("/tasks", s.handleListTasks)

	return r
}

type interpretRequest struct {
	Utterance string `json:"utterance"`
	Context   struct {
		NowTZ string `json:"now_tz"`
	} `json:"context"`
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	tz := req.Context.NowTZ
	if tz == "" {
		tz = defaultTimezone
	}

	parsed, err := s.builder.Build(r.Context(), req.Utterance, tz, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, "empty_utterance")
		return
	}

	logging.Info("api", "interpret %q -> %s", logging.RedactPII(req.Utterance), parsed.Operation)
	writeJSON(w, http.StatusOK, parsed)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_error")
		return
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil || key == "" {
			key = "anon"
		}
		if !s.limiter.Allow(key) {
			writeError(w, http.StatusTooManyRequests, "rate_limited")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
