package models

// Evaluation is the canonical verdict produced for one submission attempt.
// It is never stored as a first-class entity; its fields are folded into
// the owning task on the terminal transition.
type Evaluation struct {
	TaskID     string   `json:"task_id"`
	Score      int      `json:"score"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Feedback   string   `json:"mentor_feedback"`
	XPEarned   int      `json:"xp_earned"`
	Degraded   bool     `json:"-"`
}

// EvaluateRequest represents a submission for evaluation
type EvaluateRequest struct {
	TaskID       string `json:"task_id"`
	Submission   string `json:"submission"`
	TimeSpentMin *int   `json:"time_spent_minutes,omitempty"`
}

// EvaluationSummary is the list view of a completed evaluation
type EvaluationSummary struct {
	TaskID      string `json:"id"`
	Title       string `json:"title"`
	Domain      string `json:"domain"`
	Score       *int   `json:"score"`
	XP          int    `json:"xp"`
	CompletedAt string `json:"completed_at,omitempty"`
}
