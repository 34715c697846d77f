package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/terra-clan/intern-engine/internal/chat"
	"github.com/terra-clan/intern-engine/internal/engine"
	"github.com/terra-clan/intern-engine/internal/llm"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondEngineError maps domain errors onto envelope status codes.
// Anything unrecognized is a 500 with the detail kept in the log.
func respondEngineError(w http.ResponseWriter, err error, fallback string) {
	var upstream *llm.UpstreamError

	switch {
	case errors.Is(err, engine.ErrTaskNotFound):
		respondError(w, http.StatusNotFound, "not_found", "task not found")
	case errors.Is(err, engine.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "not_found", "user not found")
	case errors.Is(err, engine.ErrInvalidDomain),
		errors.Is(err, engine.ErrInvalidLevel),
		errors.Is(err, engine.ErrEmptySubmission),
		errors.Is(err, chat.ErrEmptyMessage):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, engine.ErrInvalidTransition):
		respondError(w, http.StatusBadRequest, "invalid_transition", err.Error())
	case errors.Is(err, engine.ErrTaskCompleted):
		respondError(w, http.StatusConflict, "task_completed", "completed tasks cannot be updated")
	case errors.As(err, &upstream), errors.Is(err, llm.ErrNoContent):
		slog.Error("model provider failure", "error", err)
		respondError(w, http.StatusBadGateway, "upstream_error", "model provider unavailable")
	default:
		slog.Error(fallback, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "database not ready")
		return
	}

	if err := s.history.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "chat store not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
