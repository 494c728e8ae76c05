package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/conduit"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/ports"
	"github.com/aretw0/conduit/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RequestIDHeader carries a caller-supplied request ID.
const RequestIDHeader = "X-Request-Id"

// maxBodyBytes bounds the size of a dispatch request.
const maxBodyBytes = 1 << 20

// Engine defines the dispatch surface served over HTTP.
type Engine interface {
	Handle(ctx context.Context, req conduit.Request) (domain.Outcome, error)
	Actions() []domain.ActionInfo
}

// DispatchRequest is the body of POST /dispatch.
// Intent and Confidence override the values found in Response.
// When Stream is set, the request is one response of a streamed recognition and
// early validation applies; overrides are then rejected with 400.
type DispatchRequest struct {
	Intent     string          `json:"intent,omitempty"`
	Confidence *float64        `json:"confidence,omitempty"`
	Partial    bool            `json:"partial,omitempty"`
	Stream     string          `json:"stream,omitempty"`
	Response   json.RawMessage `json:"response,omitempty"`
}

// Server serves the dispatch API.
type Server struct {
	Engine Engine

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics exposes GET /metrics from gatherer.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{
		Engine: engine,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/dispatch", server.Dispatch)
	r.Get("/actions", server.ListActions)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if server.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Dispatch handles the POST /dispatch request.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	var body DispatchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Dispatch: Invalid request body", "error", err)
		return
	}

	resp := response.Empty()
	if len(body.Response) > 0 {
		var err error
		resp, err = response.ParseBytes(body.Response)
		if err == nil && resp.Kind() != ports.KindObject {
			err = fmt.Errorf("response must be an object, got %s", resp.Kind())
		}
		if err != nil {
			http.Error(w, "Invalid response payload", http.StatusBadRequest)
			s.logger.Warn("Dispatch: Invalid response payload", "error", err)
			return
		}
	}

	ctx := r.Context()
	if id := r.Header.Get(RequestIDHeader); id != "" {
		ctx = domain.WithRequestID(ctx, id)
	}

	out, err := s.Engine.Handle(ctx, conduit.Request{
		Intent:     body.Intent,
		Confidence: body.Confidence,
		Partial:    body.Partial,
		Stream:     body.Stream,
		Response:   resp,
	})
	if errors.Is(err, domain.ErrStreamOverride) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Dispatch failed", http.StatusInternalServerError)
		s.logger.Error("Dispatch: failed", "stream", body.Stream, "error", err)
		return
	}

	writeJSON(w, s.logger, out.Report())
}

// ListActions handles the GET /actions request.
func (s *Server) ListActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, s.Engine.Actions())
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}
