package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/terra-clan/intern-engine/internal/llm"
	"github.com/terra-clan/intern-engine/internal/models"
	"github.com/terra-clan/intern-engine/internal/prompts"
)

// fakeRepo is an in-memory Repository for engine tests
type fakeRepo struct {
	users map[string]*models.User
	tasks map[string]*models.Task
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users: make(map[string]*models.User),
		tasks: make(map[string]*models.Task),
	}
}

func (r *fakeRepo) CreateUser(_ context.Context, u *models.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	return r.users[id], nil
}

func (r *fakeRepo) UpdateUserProfile(_ context.Context, u *models.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeRepo) SetUserXP(_ context.Context, userID string, totalXP int) error {
	if u, ok := r.users[userID]; ok {
		u.TotalXP = totalXP
	}
	return nil
}

func (r *fakeRepo) UpdateUserLastLogin(_ context.Context, userID string) error {
	return nil
}

func (r *fakeRepo) CreateTask(_ context.Context, t *models.Task) error {
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *fakeRepo) GetTask(_ context.Context, id, userID string) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRepo) UpdateTaskStatus(_ context.Context, id, userID string, status models.TaskStatus) error {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return errors.New("task not found")
	}
	t.Status = status
	return nil
}

func (r *fakeRepo) ListTasks(_ context.Context, userID string, filters models.TaskFilters) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range r.tasks {
		if t.UserID != userID {
			continue
		}
		if filters.Domain != "" && t.Domain != filters.Domain {
			continue
		}
		if filters.ScoredOnly && t.Score == nil {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRepo) CompleteTask(_ context.Context, t *models.Task, xpEarned int) error {
	cp := *t
	r.tasks[t.ID] = &cp
	if u, ok := r.users[t.UserID]; ok {
		u.TotalXP += xpEarned
	}
	return nil
}

func (r *fakeRepo) Ping(context.Context) error { return nil }
func (r *fakeRepo) Close() error               { return nil }

// fakeLLM returns a scripted reply or error
type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Complete(context.Context, llm.Request) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestEngine(repo *fakeRepo, client llm.Client) *Engine {
	e := New(repo, client, prompts.NewLibrary())
	e.now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}
	return e
}

func seedUser(repo *fakeRepo) *models.User {
	u := &models.User{ID: "user-1", Email: "intern@example.com", Name: "Intern"}
	repo.users[u.ID] = u
	return u
}

func TestGenerateSubmitEvaluateScenario(t *testing.T) {
	repo := newFakeRepo()
	user := seedUser(repo)
	ctx := context.Background()

	// Generation
	gen := &fakeLLM{reply: `{"title": "Build a rate limiter", "description": "Token bucket middleware.", "requirements": ["r1", "r2", "r3", "r4"]}`}
	e := newTestEngine(repo, gen)

	task, err := e.GenerateTask(ctx, user.ID, models.GenerateTaskRequest{Domain: "backend", Level: "mid"})
	if err != nil {
		t.Fatalf("GenerateTask failed: %v", err)
	}
	if task.XP != 200 {
		t.Fatalf("mid task must have XP budget 200, got %d", task.XP)
	}
	if task.Status != models.TaskTodo {
		t.Fatalf("new task must start in todo, got %s", task.Status)
	}
	if len(task.Requirements) != 4 {
		t.Fatalf("requirements not preserved: %v", task.Requirements)
	}

	// Evaluation: model reply parses to score 80
	e.llm = &fakeLLM{reply: "```json\n{\"score\": 80, \"strengths\": [\"works\"], \"weaknesses\": [\"no tests\"], \"mentor_feedback\": \"Decent.\"}\n```"}

	eval, err := e.Evaluate(ctx, user.ID, models.EvaluateRequest{TaskID: task.ID, Submission: "package main"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if eval.Score != 80 || eval.XPEarned != 160 {
		t.Errorf("expected score 80 / xp 160, got %d / %d", eval.Score, eval.XPEarned)
	}

	stored := repo.tasks[task.ID]
	if stored.Status != models.TaskDone {
		t.Errorf("task not done after evaluation: %s", stored.Status)
	}
	if stored.Score == nil || *stored.Score != 80 {
		t.Error("score not persisted")
	}
	if stored.CompletedAt == nil {
		t.Error("completion timestamp not set")
	}
	if user.TotalXP != 160 {
		t.Errorf("user cumulative XP should increase by exactly 160, got %d", user.TotalXP)
	}
}

func TestEvaluateDegradedReplyStillCompletes(t *testing.T) {
	repo := newFakeRepo()
	user := seedUser(repo)
	ctx := context.Background()

	taskID := "task-1"
	repo.tasks[taskID] = &models.Task{
		ID: taskID, UserID: user.ID, Title: "Thing", XP: 100, Status: models.TaskProgress,
	}

	e := newTestEngine(repo, &fakeLLM{reply: "I think this deserves a solid B+ overall, nice work!"})

	eval, err := e.Evaluate(ctx, user.ID, models.EvaluateRequest{TaskID: taskID, Submission: "code"})
	if err != nil {
		t.Fatalf("degraded parse must not fail the operation: %v", err)
	}
	if !eval.Degraded {
		t.Error("expected degraded evaluation")
	}
	if eval.Score < 0 || eval.Score > 100 {
		t.Errorf("degraded score out of range: %d", eval.Score)
	}
	if eval.Feedback == "" {
		t.Error("degraded feedback must not be empty")
	}
	if repo.tasks[taskID].Status != models.TaskDone {
		t.Error("task must still complete on degraded parse")
	}
}

func TestEvaluateUpstreamFailureMutatesNothing(t *testing.T) {
	repo := newFakeRepo()
	user := seedUser(repo)
	ctx := context.Background()

	taskID := "task-1"
	repo.tasks[taskID] = &models.Task{
		ID: taskID, UserID: user.ID, Title: "Thing", XP: 100, Status: models.TaskProgress,
	}

	upstream := &llm.UpstreamError{StatusCode: 502, Body: "bad gateway"}
	e := newTestEngine(repo, &fakeLLM{err: upstream})

	_, err := e.Evaluate(ctx, user.ID, models.EvaluateRequest{TaskID: taskID, Submission: "code"})
	var ue *llm.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	if repo.tasks[taskID].Status != models.TaskProgress {
		t.Error("task state must be untouched after upstream failure")
	}
	if user.TotalXP != 0 {
		t.Error("XP must be untouched after upstream failure")
	}
}

func TestEvaluateNoContentIsFatal(t *testing.T) {
	repo := newFakeRepo()
	user := seedUser(repo)

	taskID := "task-1"
	repo.tasks[taskID] = &models.Task{ID: taskID, UserID: user.ID, XP: 100, Status: models.TaskTodo}

	e := newTestEngine(repo, &fakeLLM{err: llm.ErrNoContent})

	_, err := e.Evaluate(context.Background(), user.ID, models.EvaluateRequest{TaskID: taskID, Submission: "code"})
	if !errors.Is(err, llm.ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestEvaluateUnknownTask(t *testing.T) {
	repo := newFakeRepo()
	user := seedUser(repo)

	e := newTestEngine(repo, &fakeLLM{reply: "{}"})

	_, err := e.Evaluate(context.Background(), user.ID, models.EvaluateRequest{TaskID: "missing", Submission: "code"})
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestUpdateStatusStateMachine(t *testing.T) {
	repo := newFakeRepo()
	user := seedUser(repo)
	ctx := context.Background()

	taskID := "task-1"
	repo.tasks[taskID] = &models.Task{ID: taskID, UserID: user.ID, XP: 100, Status: models.TaskTodo}

	e := newTestEngine(repo, &fakeLLM{})

	// todo -> progress and back are free
	if _, err := e.UpdateStatus(ctx, user.ID, taskID, models.TaskProgress); err != nil {
		t.Fatalf("todo -> progress failed: %v", err)
	}
	if _, err := e.UpdateStatus(ctx, user.ID, taskID, models.TaskTodo); err != nil {
		t.Fatalf("progress -> todo failed: %v", err)
	}

	// done is never reachable through the update operation
	if _, err := e.UpdateStatus(ctx, user.ID, taskID, models.TaskDone); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("direct done must be an invalid transition, got %v", err)
	}

	// a done task rejects any further update
	repo.tasks[taskID].Status = models.TaskDone
	if _, err := e.UpdateStatus(ctx, user.ID, taskID, models.TaskProgress); !errors.Is(err, ErrTaskCompleted) {
		t.Fatalf("update on done task must fail, got %v", err)
	}
}

func TestGenerateTaskValidation(t *testing.T) {
	repo := newFakeRepo()
	user := seedUser(repo)
	e := newTestEngine(repo, &fakeLLM{reply: "{}"})
	ctx := context.Background()

	if _, err := e.GenerateTask(ctx, user.ID, models.GenerateTaskRequest{Domain: "gamedev", Level: "mid"}); !errors.Is(err, ErrInvalidDomain) {
		t.Errorf("expected ErrInvalidDomain, got %v", err)
	}
	if _, err := e.GenerateTask(ctx, user.ID, models.GenerateTaskRequest{Domain: "backend", Level: "expert"}); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("expected ErrInvalidLevel, got %v", err)
	}
}

func TestGenerateTaskParseFailure(t *testing.T) {
	repo := newFakeRepo()
	user := seedUser(repo)
	e := newTestEngine(repo, &fakeLLM{reply: "I refuse to answer in JSON"})

	_, err := e.GenerateTask(context.Background(), user.ID, models.GenerateTaskRequest{Domain: "backend", Level: "junior"})
	if err == nil {
		t.Fatal("expected error for unparseable generation reply")
	}
	if len(repo.tasks) != 0 {
		t.Error("no task must be stored on parse failure")
	}
}

func TestGenerateTaskDefaultRequirements(t *testing.T) {
	repo := newFakeRepo()
	user := seedUser(repo)
	e := newTestEngine(repo, &fakeLLM{reply: `{"title": "T", "description": "D"}`})

	task, err := e.GenerateTask(context.Background(), user.ID, models.GenerateTaskRequest{Domain: "ai", Level: "junior"})
	if err != nil {
		t.Fatalf("GenerateTask failed: %v", err)
	}
	if len(task.Requirements) == 0 {
		t.Error("missing requirements must fall back to defaults")
	}
}

func TestStatsCorrectsStoredXP(t *testing.T) {
	repo := newFakeRepo()
	user := seedUser(repo)
	user.TotalXP = 9999 // drifted

	score80 := 80
	done := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	repo.tasks["t1"] = &models.Task{
		ID: "t1", UserID: user.ID, XP: 200, Score: &score80,
		Status: models.TaskDone, CompletedAt: &done,
	}

	e := newTestEngine(repo, &fakeLLM{})

	stats, err := e.Stats(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.CurrentXP != 160 {
		t.Errorf("expected recomputed XP 160, got %d", stats.CurrentXP)
	}
	if user.TotalXP != 160 {
		t.Errorf("stored total must be corrected to 160, got %d", user.TotalXP)
	}

	// Second run: already consistent, same result
	stats2, err := e.Stats(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("second Stats failed: %v", err)
	}
	if stats2.CurrentXP != stats.CurrentXP {
		t.Errorf("recompute not stable: %d vs %d", stats.CurrentXP, stats2.CurrentXP)
	}
}

func TestStatsUnknownUser(t *testing.T) {
	repo := newFakeRepo()
	e := newTestEngine(repo, &fakeLLM{})

	if _, err := e.Stats(context.Background(), "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestListEvaluationsNewestFirst(t *testing.T) {
	repo := newFakeRepo()
	user := seedUser(repo)

	score := 70
	d1 := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	d3 := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	repo.tasks["t-old"] = &models.Task{ID: "t-old", UserID: user.ID, XP: 100, Score: &score, Status: models.TaskDone, CompletedAt: &d1}
	repo.tasks["t-new"] = &models.Task{ID: "t-new", UserID: user.ID, XP: 100, Score: &score, Status: models.TaskDone, CompletedAt: &d3}
	repo.tasks["t-mid"] = &models.Task{ID: "t-mid", UserID: user.ID, XP: 100, Score: &score, Status: models.TaskDone, CompletedAt: &d2}
	repo.tasks["t-open"] = &models.Task{ID: "t-open", UserID: user.ID, XP: 100, Status: models.TaskTodo}

	e := newTestEngine(repo, &fakeLLM{})

	summaries, err := e.ListEvaluations(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListEvaluations failed: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("expected 3 scored tasks, got %d", len(summaries))
	}
	want := []string{"t-new", "t-mid", "t-old"}
	for i, id := range want {
		if summaries[i].TaskID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, summaries[i].TaskID)
		}
	}
}

func TestResubmissionOverwritesEvaluation(t *testing.T) {
	repo := newFakeRepo()
	user := seedUser(repo)
	ctx := context.Background()

	taskID := "task-1"
	repo.tasks[taskID] = &models.Task{ID: taskID, UserID: user.ID, Title: "Thing", XP: 100, Status: models.TaskTodo}

	e := newTestEngine(repo, &fakeLLM{reply: `{"score": 40, "mentor_feedback": "meh"}`})
	if _, err := e.Evaluate(ctx, user.ID, models.EvaluateRequest{TaskID: taskID, Submission: "v1"}); err != nil {
		t.Fatalf("first Evaluate failed: %v", err)
	}

	e.llm = &fakeLLM{reply: `{"score": 90, "mentor_feedback": "much better"}`}
	eval, err := e.Evaluate(ctx, user.ID, models.EvaluateRequest{TaskID: taskID, Submission: "v2"})
	if err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}
	if eval.Score != 90 {
		t.Errorf("expected overwritten score 90, got %d", eval.Score)
	}

	stored := repo.tasks[taskID]
	if stored.Submission != "v2" || stored.Score == nil || *stored.Score != 90 {
		t.Errorf("prior evaluation not overwritten: %+v", stored)
	}

	// The incremental total drifts on resubmission; the stats recompute
	// corrects it from history
	stats, err := e.Stats(ctx, user.ID)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.CurrentXP != 90 {
		t.Errorf("expected corrected XP 90, got %d", stats.CurrentXP)
	}
	if user.TotalXP != 90 {
		t.Errorf("stored XP not corrected after resubmission, got %d", user.TotalXP)
	}
}
