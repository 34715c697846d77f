package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/intern-engine/internal/engine"
	"github.com/terra-clan/intern-engine/internal/models"
)

func (s *Server) handleCreateEvaluation(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req models.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.TaskID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "task_id is required")
		return
	}

	eval, err := s.engine.Evaluate(r.Context(), user.ID, req)
	if err != nil {
		respondEngineError(w, err, "failed to evaluate submission")
		return
	}

	respondJSON(w, http.StatusCreated, eval)
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	summaries, err := s.engine.ListEvaluations(r.Context(), user.ID)
	if err != nil {
		respondEngineError(w, err, "failed to list evaluations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"evaluations": summaries,
		"total":       len(summaries),
	})
}

// handleGetEvaluation returns the evaluation outcome stored on a task
func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "task id is required")
		return
	}

	task, err := s.engine.GetTask(r.Context(), user.ID, id)
	if err != nil {
		respondEngineError(w, err, "failed to get evaluation")
		return
	}

	if task.Score == nil {
		respondError(w, http.StatusNotFound, "not_found", "task has not been evaluated")
		return
	}

	var completedAt string
	if task.CompletedAt != nil {
		completedAt = task.CompletedAt.Format(time.RFC3339)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"task_id":      task.ID,
		"title":        task.Title,
		"domain":       task.Domain,
		"score":        *task.Score,
		"strengths":    task.Strengths,
		"weaknesses":   task.Weaknesses,
		"feedback":     task.Feedback,
		"xp_earned":    engine.EarnXP(task.XP, *task.Score),
		"submission":   task.Submission,
		"completed_at": completedAt,
	})
}
