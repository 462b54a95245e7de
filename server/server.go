// Package server provides the HTTP surface over the workflow engine.
package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/workflow"
)

// Handler exposes the engine's operations as JSON endpoints.
type Handler struct {
	engine *workflow.Engine
	logger logging.Logger
}

// Options configures a Handler.
type Options struct {
	Logger logging.Logger
}

// NewHandler creates a Handler around a wired workflow engine.
func NewHandler(engine *workflow.Engine, optFns ...func(o *Options)) *Handler {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Handler{engine: engine, logger: opts.Logger}
}

// Router builds the chi router with all routes and global middleware.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Get("/agents", h.Agents)
		r.Get("/health", h.Health)
		r.Route("/workflow", func(r chi.Router) {
			r.Get("/status/{sessionID}", h.WorkflowStatus)
			r.Delete("/{sessionID}", h.ClearWorkflow)
		})
	})

	return r
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response  string         `json:"response"`
	SessionID string         `json:"session_id"`
	Agent     string         `json:"agent,omitempty"`
	Success   bool           `json:"success"`
	Extra     map[string]any `json:"metadata,omitempty"`
}

// Chat runs one workflow turn for the posted message.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	result := h.engine.ProcessUserInput(r.Context(), req.Message, req.SessionID)
	if !result.Success {
		h.logger.Error("chat turn failed", "session_id", result.SessionID, "error", result.Error)
		JSON(w, http.StatusInternalServerError, map[string]any{
			"error":      result.Error,
			"session_id": result.SessionID,
		})
		return
	}

	JSON(w, http.StatusOK, chatResponse{
		Response:  result.Result.Content,
		SessionID: result.SessionID,
		Agent:     result.Result.Agent,
		Success:   result.Result.Success,
		Extra:     result.Result.Extra,
	})
}

// WorkflowStatus reports a snapshot for one session.
func (h *Handler) WorkflowStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	status := h.engine.Status(sessionID)
	if status.State == "not_found" {
		JSON(w, http.StatusNotFound, status)
		return
	}
	JSON(w, http.StatusOK, status)
}

// ClearWorkflow deletes one session's state.
func (h *Handler) ClearWorkflow(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if !h.engine.Clear(sessionID) {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	JSON(w, http.StatusOK, map[string]any{"cleared": true, "session_id": sessionID})
}

// Agents lists the coordinator and every registered variant.
func (h *Handler) Agents(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]any{"agents": h.engine.AvailableAgents()})
}

// Health runs the engine's capability probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.engine.HealthCheck(r.Context())
	status := http.StatusOK
	for _, svc := range health.Services {
		if svc.Status != "healthy" {
			status = http.StatusServiceUnavailable
			break
		}
	}
	JSON(w, status, health)
}
