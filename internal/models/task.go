package models

import (
	"time"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskTodo     TaskStatus = "todo"
	TaskProgress TaskStatus = "progress"
	TaskDone     TaskStatus = "done"
)

// IsValid returns true if the status is one of the known states
func (s TaskStatus) IsValid() bool {
	return s == TaskTodo || s == TaskProgress || s == TaskDone
}

// IsTerminal returns true if the status is a terminal state
func (s TaskStatus) IsTerminal() bool {
	return s == TaskDone
}

// CanUpdateTo reports whether the status-update operation may move a task
// from s to target. Free toggling between todo and progress is allowed;
// done is reachable only through submission evaluation, never directly,
// and a done task accepts no further updates.
func (s TaskStatus) CanUpdateTo(target TaskStatus) bool {
	if s == TaskDone || target == TaskDone {
		return false
	}
	return target == TaskTodo || target == TaskProgress
}

// Difficulty tiers for generated tasks
const (
	LevelJunior = "junior"
	LevelMid    = "mid"
	LevelSenior = "senior"
)

// ValidLevel returns true for a known difficulty tier
func ValidLevel(level string) bool {
	return level == LevelJunior || level == LevelMid || level == LevelSenior
}

// Domains a task can belong to
const (
	DomainFrontend      = "frontend"
	DomainBackend       = "backend"
	DomainAI            = "ai"
	DomainCybersecurity = "cybersecurity"
)

// ValidDomain returns true for a known task domain
func ValidDomain(domain string) bool {
	switch domain {
	case DomainFrontend, DomainBackend, DomainAI, DomainCybersecurity:
		return true
	}
	return false
}

// XPForLevel returns the fixed XP budget assigned to a task at creation.
// The budget never changes afterwards.
func XPForLevel(level string) int {
	switch level {
	case LevelJunior:
		return 100
	case LevelMid:
		return 200
	case LevelSenior:
		return 350
	}
	return 150
}

// DueDaysForLevel returns the suggested completion window in days
func DueDaysForLevel(level string) int {
	switch level {
	case LevelJunior:
		return 3
	case LevelMid:
		return 4
	}
	return 5
}

// Task represents one unit of internship work assigned to a user.
// Score, feedback, strengths/weaknesses and CompletedAt stay unset until
// the task reaches done, and are immutable from the outside afterwards.
type Task struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Domain       string     `json:"domain"`
	Difficulty   string     `json:"difficulty"`
	Requirements []string   `json:"requirements"`
	XP           int        `json:"xp"`
	Status       TaskStatus `json:"status"`
	DueDays      int        `json:"due_days"`
	Submission   string     `json:"submission,omitempty"`
	Score        *int       `json:"score,omitempty"`
	Feedback     string     `json:"feedback,omitempty"`
	Strengths    []string   `json:"strengths,omitempty"`
	Weaknesses   []string   `json:"weaknesses,omitempty"`
	TimeSpentMin *int       `json:"time_spent_minutes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// IsCompleted returns true once the task has been evaluated
func (t *Task) IsCompleted() bool {
	return t.Status == TaskDone
}

// TaskFilters defines filters for listing tasks
type TaskFilters struct {
	Domain     string
	Status     TaskStatus
	ScoredOnly bool
	Limit      int
	Offset     int
}

// GenerateTaskRequest represents a request to generate a new task
type GenerateTaskRequest struct {
	Domain   string `json:"domain"`
	Level    string `json:"level"`
	Language string `json:"language,omitempty"` // "en" (default) or "tr"
}

// UpdateStatusRequest represents a status-update request for a task
type UpdateStatusRequest struct {
	Status TaskStatus `json:"status"`
}
