package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/intern-engine/internal/models"
)

func (s *Server) handleGenerateTask(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req models.GenerateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Fall back to the onboarding profile when the request leaves
	// domain or level blank
	if req.Domain == "" {
		req.Domain = user.Field
	}
	if req.Level == "" {
		req.Level = user.Level
	}

	task, err := s.engine.GenerateTask(r.Context(), user.ID, req)
	if err != nil {
		respondEngineError(w, err, "failed to generate task")
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	filters := models.TaskFilters{
		Domain: r.URL.Query().Get("domain"),
		Status: models.TaskStatus(r.URL.Query().Get("status")),
		Limit:  50, // default
	}

	if filters.Status != "" && !filters.Status.IsValid() {
		respondError(w, http.StatusBadRequest, "validation_error", "unknown status filter")
		return
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filters.Offset = offset
		}
	}

	tasks, err := s.engine.ListTasks(r.Context(), user.ID, filters)
	if err != nil {
		respondEngineError(w, err, "failed to list tasks")
		return
	}

	if tasks == nil {
		tasks = []*models.Task{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"total": len(tasks),
	})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "task id is required")
		return
	}

	task, err := s.engine.GetTask(r.Context(), user.ID, id)
	if err != nil {
		respondEngineError(w, err, "failed to get task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "task id is required")
		return
	}

	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if !req.Status.IsValid() {
		respondError(w, http.StatusBadRequest, "validation_error", "unknown status")
		return
	}

	task, err := s.engine.UpdateStatus(r.Context(), user.ID, id, req.Status)
	if err != nil {
		respondEngineError(w, err, "failed to update task status")
		return
	}

	respondJSON(w, http.StatusOK, task)
}
