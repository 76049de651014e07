package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/ports"
	"github.com/aretw0/brownian/pkg/schema"
	"github.com/go-chi/chi/v5"
)

// Process is a process that can be served under a name.
type Process interface {
	ports.Process
	Name() string
}

// UpdateRequest is the body of POST /update.
type UpdateRequest struct {
	State    map[string]any `json:"state"`
	Interval float64        `json:"interval"`
}

// UpdateResponse is the body returned by POST /update.
type UpdateResponse struct {
	Update   map[string]any `json:"update"`
	Interval float64        `json:"interval"`
	Elapsed  string         `json:"elapsed"`
}

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Server exposes one process over HTTP.
type Server struct {
	Process Process
	Streams *StreamManager
	Version string

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLocker serialises updates across replicas with a distributed lock on the process name.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(s *Server) {
		s.locker = l
		s.lockTTL = ttl
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewServer creates a Server for proc.
func NewServer(proc Process, opts ...Option) *Server {
	s := &Server{
		Process: proc,
		Streams: NewStreamManager(),
		Version: "unknown",
		lockTTL: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates a new HTTP handler for proc.
func NewHandler(proc Process, opts ...Option) http.Handler {
	return NewServer(proc, opts...).Routes(chi.NewRouter())
}

// Routes mounts the process endpoints on r.
func (s *Server) Routes(r chi.Router) http.Handler {
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/schema", s.GetSchema)
	r.Get("/state/initial", s.GetInitialState)
	r.Post("/update", s.PostUpdate)
	r.Get("/events", s.SubscribeEvents)
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "brownian-http",
		"process": s.Process.Name(),
		"version": s.Version,
	})
}

// GetSchema handles GET /schema.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	desc, err := s.Process.Schema().Describe()
	if err != nil {
		s.fail(w, "schema", err)
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

// GetInitialState handles GET /state/initial.
func (s *Server) GetInitialState(w http.ResponseWriter, r *http.Request) {
	state, err := s.Process.InitialState()
	if err != nil {
		s.fail(w, "initial state", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// PostUpdate handles POST /update and broadcasts the result to /events subscribers.
func (s *Server) PostUpdate(w http.ResponseWriter, r *http.Request) {
	var body UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		s.logger.Warn("update: invalid request body", "error", err)
		return
	}
	if body.State == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "state is required"})
		return
	}

	ctx := r.Context()
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, s.Process.Name(), s.lockTTL)
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Kind: "lock"})
			s.logger.Error("update: lock failed", "error", err)
			return
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				s.logger.Error("update: unlock failed", "error", err)
			}
		}()
	}

	start := time.Now()
	update, err := s.Process.Update(ctx, body.State, body.Interval)
	if err != nil {
		s.fail(w, "update", err)
		return
	}

	resp := UpdateResponse{Update: update, Interval: body.Interval, Elapsed: time.Since(start).String()}
	if payload, err := json.Marshal(resp); err == nil {
		s.Streams.Broadcast(string(payload))
	}
	writeJSON(w, http.StatusOK, resp)
}

// SubscribeEvents handles GET /events, streaming each update as a server-sent event.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("sse client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: update\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status, kind := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	} else {
		s.logger.Warn(op+" rejected", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kind})
}

// classify maps domain errors to a status code and a short kind label.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, domain.ErrClosed):
		return http.StatusServiceUnavailable, "closed"
	case errors.Is(err, domain.ErrUnknownSpecies):
		return http.StatusUnprocessableEntity, "unknown_species"
	case errors.Is(err, domain.ErrMissingSpecies):
		return http.StatusUnprocessableEntity, "missing_species"
	case errors.Is(err, domain.ErrInvalidInterval),
		errors.Is(err, domain.ErrNegativeCount),
		errors.Is(err, schema.ErrInvalid):
		return http.StatusBadRequest, "invalid"
	case errors.Is(err, domain.ErrEmptyOutput):
		return http.StatusBadGateway, "empty_output"
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, "canceled"
	}
	return http.StatusInternalServerError, ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
