package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/intern-engine/internal/models"
)

func (s *Server) handleMentorChat(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	resp, err := s.mentor.Chat(r.Context(), user.ID, req)
	if err != nil {
		respondEngineError(w, err, "failed to reach mentor")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListChatSessions(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	sessions, err := s.history.ListSessions(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to list chat sessions", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list sessions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

func (s *Server) handleGetChatSession(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "session id is required")
		return
	}

	messages, err := s.history.Messages(r.Context(), user.ID, id)
	if err != nil {
		slog.Error("failed to load chat session", "error", err, "session_id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load session")
		return
	}

	if len(messages) == 0 {
		respondError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": id,
		"messages":   messages,
	})
}

func (s *Server) handleDeleteChatSession(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "session id is required")
		return
	}

	removed, err := s.history.DeleteSession(r.Context(), user.ID, id)
	if err != nil {
		slog.Error("failed to delete chat session", "error", err, "session_id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete session")
		return
	}

	if !removed {
		respondError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "session deleted",
	})
}
