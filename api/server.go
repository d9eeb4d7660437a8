package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	aguievents "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ai "github.com/spetersoncode/maildraft"
	"github.com/spetersoncode/maildraft/agui"
	"github.com/spetersoncode/maildraft/internal/render"
	"github.com/spetersoncode/maildraft/metrics"
	"github.com/spetersoncode/maildraft/workflow"
)

// DefaultHistoryPageSize is used when GET /api/history names no limit.
const DefaultHistoryPageSize = 10

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithHistory serves GET /api/history from h.
func WithHistory(h workflow.HistoryStore) ServerOption {
	return func(s *Server) {
		s.history = h
	}
}

// WithProfiles serves /api/profile from p.
func WithProfiles(p workflow.ProfileStore) ServerOption {
	return func(s *Server) {
		s.profiles = p
	}
}

// WithUsage serves GET /api/usage from acc.
func WithUsage(acc *metrics.Accumulator) ServerOption {
	return func(s *Server) {
		s.usage = acc
	}
}

// WithMetricsHandler replaces the default Prometheus handler.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		s.version = v
	}
}

// Server serves the HTTP API.
type Server struct {
	svc      *Service
	history  workflow.HistoryStore
	profiles workflow.ProfileStore
	usage    *metrics.Accumulator
	renderer *render.Renderer
	metrics  http.Handler
	logger   *slog.Logger
	version  string
}

// NewServer creates a server for svc.
func NewServer(svc *Service, opts ...ServerOption) *Server {
	s := &Server{
		svc:      svc,
		renderer: render.New(),
		metrics:  promhttp.Handler(),
		logger:   slog.Default(),
		version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/generate/stream", s.handleGenerateStream)
	mux.HandleFunc("POST /api/regenerate", s.handleRegenerate)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/profile", s.handleGetProfile)
	mux.HandleFunc("PUT /api/profile", s.handleUpdateProfile)
	mux.HandleFunc("GET /api/usage", s.handleUsage)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics)
	return corsMiddleware(mux)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := s.logger.With("path", r.URL.Path)

	req, err := DecodeGenerateRequest(r.Body)
	if err != nil {
		s.writeError(w, log, err)
		return
	}
	log = log.With("user_id", req.UserID)

	resp, err := s.svc.Generate(r.Context(), req)
	if err != nil {
		s.writeError(w, log, err)
		return
	}

	log.Info("draft generated",
		"intent", resp.Intent,
		"context_mode", resp.ContextMode,
		"word_count", resp.WordCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, resp)
}

// handleGenerateStream runs the pipeline and streams AG-UI events as SSE.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var input agui.RunAgentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.logger.Warn("invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	log := s.logger.With(
		"run_id", input.RunID,
		"thread_id", input.ThreadID,
	)

	prepared, err := input.Prepare()
	if err != nil {
		log.Warn("invalid input", "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if prepared.Request.UserID == "" {
		prepared.Request.UserID = DefaultUserID
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	mapper := agui.NewMapper(prepared.ThreadID, prepared.RunID)
	var (
		eventCount int
		writeErr   error
	)
	for ev := range mapper.MapStream(s.svc.Stream(r.Context(), prepared.Request)) {
		if writeErr != nil {
			// Drain so the pipeline goroutine can finish.
			continue
		}
		if writeErr = writeSSE(w, flusher, ev); writeErr != nil {
			log.Error("failed to write SSE event", "error", writeErr, "event_type", ev.Type())
			continue
		}
		eventCount++
	}

	log.Info("stream completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"events_sent", eventCount,
	)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With("path", r.URL.Path)

	req, err := DecodeRegenerateRequest(r.Body)
	if err != nil {
		s.writeError(w, log, err)
		return
	}

	resp, err := s.svc.Regenerate(r.Context(), req)
	if err != nil {
		s.writeError(w, log.With("user_id", req.UserID), err)
		return
	}

	log.Info("draft regenerated",
		"user_id", req.UserID,
		"workflow_type", resp.WorkflowType,
		"diff_ratio", resp.DiffRatio,
	)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "history store not configured"})
		return
	}
	userID := userParam(r)
	limit := DefaultHistoryPageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := s.history.List(r.Context(), userID, limit)
	if err != nil {
		s.writeError(w, s.logger.With("user_id", userID), err)
		return
	}
	if entries == nil {
		entries = []ai.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{UserID: userID, Entries: entries})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "profile store not configured"})
		return
	}
	userID := userParam(r)
	p, err := s.profiles.Get(r.Context(), userID)
	if err != nil {
		s.writeError(w, s.logger.With("user_id", userID), err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "profile store not configured"})
		return
	}
	userID := userParam(r)
	var u ai.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	p, err := s.profiles.Update(r.Context(), userID, u)
	if err != nil {
		s.writeError(w, s.logger.With("user_id", userID), err)
		return
	}
	s.logger.Info("profile updated", "user_id", userID)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if s.usage == nil {
		writeJSON(w, http.StatusOK, ai.MetricsSummary{})
		return
	}
	writeJSON(w, http.StatusOK, s.usage.Summary())
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	html, err := s.renderer.HTML(req.Draft)
	if err != nil {
		s.writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{HTML: html})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", AppName: "maildraft", Version: s.version})
}

// writeError maps pipeline errors to status codes. A model-service failure
// with a templated fallback returns the fallback marked as stub output.
func (s *Server) writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var (
		verr *ai.ValidationError
		serr *ai.ServiceError
	)
	switch {
	case errors.As(err, &verr):
		log.Warn("invalid request", "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.As(err, &serr):
		log.Error("model service failed", "stage", serr.Stage, "error", err)
		resp := ErrorResponse{Error: err.Error()}
		if serr.Fallback != "" {
			resp.Draft = serr.Fallback
			resp.Metadata = map[string]any{workflow.MetaSource: "stub"}
		}
		writeJSON(w, http.StatusServiceUnavailable, resp)
	default:
		log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

func userParam(r *http.Request) string {
	if v := r.URL.Query().Get("user_id"); v != "" {
		return v
	}
	return DefaultUserID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeSSE writes an AG-UI event in SSE format.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, ev aguievents.Event) error {
	data, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	// Write SSE format: event: TYPE\ndata: {json}\n\n
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type(), string(data)); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	flusher.Flush()
	return nil
}

// corsMiddleware adds CORS headers for cross-origin frontend requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
