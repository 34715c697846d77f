package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/terra-clan/intern-engine/internal/models"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, UserFromContext(r.Context()))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Field != nil && *req.Field != "" && !models.ValidDomain(*req.Field) {
		respondError(w, http.StatusBadRequest, "validation_error", "unknown internship field")
		return
	}

	if req.Level != nil && *req.Level != "" && !models.ValidLevel(*req.Level) {
		respondError(w, http.StatusBadRequest, "validation_error", "unknown internship level")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Field != nil {
		user.Field = *req.Field
	}
	if req.Level != nil {
		user.Level = *req.Level
	}

	if err := s.repo.UpdateUserProfile(r.Context(), user); err != nil {
		slog.Error("failed to update profile", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update profile")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	stats, err := s.engine.Stats(r.Context(), user.ID)
	if err != nil {
		respondEngineError(w, err, "failed to compute stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
