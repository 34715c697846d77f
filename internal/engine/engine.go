package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/intern-engine/internal/llm"
	"github.com/terra-clan/intern-engine/internal/models"
	"github.com/terra-clan/intern-engine/internal/prompts"
	"github.com/terra-clan/intern-engine/internal/storage"
)

// Engine runs the evaluation-and-progression flow: task generation,
// submission evaluation, lifecycle transitions and dashboard statistics.
// It holds no per-request state; all durable state lives in the repository.
type Engine struct {
	repo    storage.Repository
	llm     llm.Client
	library *prompts.Library
	now     func() time.Time
}

// New creates an engine
func New(repo storage.Repository, client llm.Client, library *prompts.Library) *Engine {
	return &Engine{
		repo:    repo,
		llm:     client,
		library: library,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GenerateTask asks the model for a new task definition and persists it
// in the todo state with an XP budget fixed by difficulty
func (e *Engine) GenerateTask(ctx context.Context, userID string, req models.GenerateTaskRequest) (*models.Task, error) {
	if !models.ValidDomain(req.Domain) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDomain, req.Domain)
	}
	if !models.ValidLevel(req.Level) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLevel, req.Level)
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	content, err := e.llm.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: prompts.TaskDesignerSystemPrompt(language)},
			{Role: "user", Content: e.library.BuildTaskPrompt(req.Domain, req.Level, language)},
		},
		Temperature: 0.8, // higher for variety
		MaxTokens:   1024,
	})
	if err != nil {
		return nil, fmt.Errorf("task generation call failed: %w", err)
	}

	generated, err := llm.ParseGeneratedTask(content)
	if err != nil {
		return nil, fmt.Errorf("task generation reply unusable: %w", err)
	}

	requirements := []string(generated.Requirements)
	if len(requirements) == 0 {
		requirements = defaultRequirements(language)
	}

	now := e.now()
	task := &models.Task{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        generated.Title,
		Description:  generated.Description,
		Domain:       req.Domain,
		Difficulty:   req.Level,
		Requirements: requirements,
		XP:           models.XPForLevel(req.Level),
		Status:       models.TaskTodo,
		DueDays:      models.DueDaysForLevel(req.Level),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := e.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to store generated task: %w", err)
	}

	slog.Info("task generated",
		"task_id", task.ID,
		"user_id", userID,
		"domain", task.Domain,
		"difficulty", task.Difficulty,
		"xp", task.XP,
	)

	return task, nil
}

// Evaluate scores a submission through the model and moves the task to
// its terminal state. This is the only path to done. A degraded model
// reply is absorbed: the task still completes with fallback values and
// the caller sees success.
func (e *Engine) Evaluate(ctx context.Context, userID string, req models.EvaluateRequest) (*models.Evaluation, error) {
	if strings.TrimSpace(req.Submission) == "" {
		return nil, ErrEmptySubmission
	}

	task, err := e.repo.GetTask(ctx, req.TaskID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	language := prompts.DetectLanguage(task.Title)

	content, err := e.llm.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: prompts.EvaluationSystemPrompt(language)},
			{Role: "user", Content: prompts.BuildEvaluationPrompt(task, req.Submission, language)},
		},
		Temperature: 0.3, // lower for consistent evaluation
		MaxTokens:   2048,
	})
	if err != nil {
		// Upstream failure: nothing has been written yet
		return nil, fmt.Errorf("evaluation call failed: %w", err)
	}

	extracted := llm.ParseEvaluation(content)
	if extracted.Degraded {
		slog.Warn("model reply not parseable, using degraded evaluation",
			"task_id", task.ID,
			"user_id", userID,
			"reply_len", len(content),
		)
	}

	eval := ScoreEvaluation(extracted, task.XP)
	eval.TaskID = task.ID

	completedAt := e.now()
	task.Submission = req.Submission
	task.Score = &eval.Score
	task.Feedback = eval.Feedback
	task.Strengths = eval.Strengths
	task.Weaknesses = eval.Weaknesses
	task.Status = models.TaskDone
	task.CompletedAt = &completedAt
	task.UpdatedAt = completedAt
	if req.TimeSpentMin != nil && *req.TimeSpentMin > 0 {
		task.TimeSpentMin = req.TimeSpentMin
	}

	if err := e.repo.CompleteTask(ctx, task, eval.XPEarned); err != nil {
		return nil, fmt.Errorf("failed to persist evaluation: %w", err)
	}

	slog.Info("submission evaluated",
		"task_id", task.ID,
		"user_id", userID,
		"score", eval.Score,
		"xp_earned", eval.XPEarned,
		"degraded", eval.Degraded,
	)

	return &eval, nil
}

// UpdateStatus handles the explicit status-update operation. Only the
// todo/progress toggle is reachable here; done comes from Evaluate alone,
// so completion always carries an evaluation record.
func (e *Engine) UpdateStatus(ctx context.Context, userID, taskID string, status models.TaskStatus) (*models.Task, error) {
	if status != models.TaskTodo && status != models.TaskProgress {
		return nil, fmt.Errorf("%w: status %q cannot be set directly", ErrInvalidTransition, status)
	}

	task, err := e.repo.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	if task.Status == models.TaskDone {
		return nil, ErrTaskCompleted
	}
	if !task.Status.CanUpdateTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, task.Status, status)
	}

	if err := e.repo.UpdateTaskStatus(ctx, taskID, userID, status); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	task.Status = status
	return task, nil
}

// GetTask returns one task owned by the user
func (e *Engine) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := e.repo.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// ListTasks returns the user's tasks, optionally filtered by domain
func (e *Engine) ListTasks(ctx context.Context, userID string, filters models.TaskFilters) ([]*models.Task, error) {
	tasks, err := e.repo.ListTasks(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListEvaluations returns summaries of all scored tasks, newest first
func (e *Engine) ListEvaluations(ctx context.Context, userID string) ([]models.EvaluationSummary, error) {
	tasks, err := e.repo.ListTasks(ctx, userID, models.TaskFilters{ScoredOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		ti, tj := tasks[i].CompletedAt, tasks[j].CompletedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})

	summaries := make([]models.EvaluationSummary, 0, len(tasks))
	for _, t := range tasks {
		s := models.EvaluationSummary{
			TaskID: t.ID,
			Title:  t.Title,
			Domain: t.Domain,
			Score:  t.Score,
			XP:     t.XP,
		}
		if t.CompletedAt != nil {
			s.CompletedAt = t.CompletedAt.Format(time.RFC3339)
		}
		summaries = append(summaries, s)
	}

	return summaries, nil
}

// Stats recomputes the dashboard snapshot from the full task history.
// When the recomputed cumulative XP disagrees with the stored total, the
// stored total is corrected here so XP stays explainable from history.
func (e *Engine) Stats(ctx context.Context, userID string) (*models.UserStats, error) {
	user, err := e.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	tasks, err := e.repo.ListTasks(ctx, userID, models.TaskFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load task history: %w", err)
	}

	stats := ComputeStats(user, tasks, e.now())

	if stats.CurrentXP != user.TotalXP {
		slog.Info("correcting stored XP total",
			"user_id", userID,
			"stored", user.TotalXP,
			"recomputed", stats.CurrentXP,
		)
		if err := e.repo.SetUserXP(ctx, userID, stats.CurrentXP); err != nil {
			return nil, fmt.Errorf("failed to correct XP total: %w", err)
		}
	}

	return stats, nil
}

func defaultRequirements(language string) []string {
	if language == "tr" {
		return []string{
			"Kod temiz ve okunabilir olmalı",
			"Proje çalışır durumda olmalı",
			"Dokümantasyon eklenmeli",
		}
	}
	return []string{
		"Code should be clean and readable",
		"Project should be functional",
		"Documentation should be added",
	}
}
