package models

import (
	"time"
)

// User represents a registered intern account
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	HashedPassword string     `json:"-"`
	Name           string     `json:"name,omitempty"`
	Role           string     `json:"role"`
	Field          string     `json:"internship_field,omitempty"`
	Level          string     `json:"internship_level,omitempty"`
	TotalXP        int        `json:"total_xp"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

// UpdateProfileRequest carries the optional onboarding fields.
// Nil means "leave unchanged".
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Field *string `json:"internship_field,omitempty"`
	Level *string `json:"internship_level,omitempty"`
}

// LevelInfo describes the progression tier derived from cumulative XP.
// Level is always recomputed from XP, never stored independently.
type LevelInfo struct {
	Level       int `json:"level"`
	CurrentXP   int `json:"current_xp"`
	LevelStart  int `json:"level_start_xp"`
	NextLevelXP int `json:"next_level_xp"`
	XPProgress  int `json:"xp_progress"`
	XPNeeded    int `json:"xp_needed"`
}

// PerformanceMetrics holds the rolling dashboard metrics with
// week-over-week deltas
type PerformanceMetrics struct {
	CodeQuality             int `json:"code_quality"`
	CodeQualityChange       int `json:"code_quality_change"`
	Speed                   int `json:"speed"`
	SpeedChange             int `json:"speed_change"`
	RequirementsMatch       int `json:"requirements_match"`
	RequirementsMatchChange int `json:"requirements_match_change"`
}

// SkillScores holds the derived per-skill scores. Every field is exactly
// zero for a user with no completed tasks.
type SkillScores struct {
	ProblemSolving int `json:"problem_solving"`
	CodeQuality    int `json:"code_quality"`
	Communication  int `json:"communication"`
	TimeManagement int `json:"time_management"`
	Teamwork       int `json:"teamwork"`
	LearningSpeed  int `json:"learning_speed"`
}

// WeeklyProgress is one 7-day bucket of the trend series, oldest first
type WeeklyProgress struct {
	Week         int `json:"week"`
	XP           int `json:"xp"`
	Tasks        int `json:"tasks"`
	CumulativeXP int `json:"cumulative_xp"`
}

// TaskCounts summarizes task history by lifecycle state
type TaskCounts struct {
	Completed    int     `json:"completed"`
	InProgress   int     `json:"in_progress"`
	Pending      int     `json:"pending"`
	AverageScore float64 `json:"average_score"`
}

// StatsProfile is the user subset embedded in a stats snapshot
type StatsProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Field string `json:"internship_field,omitempty"`
	Level string `json:"internship_level,omitempty"`
}

// UserStats is the full dashboard snapshot computed from task history
type UserStats struct {
	User           StatsProfile       `json:"user"`
	Level          int                `json:"level"`
	CurrentXP      int                `json:"current_xp"`
	NextLevelXP    int                `json:"next_level_xp"`
	XPProgress     int                `json:"xp_progress"`
	XPNeeded       int                `json:"xp_needed"`
	Metrics        PerformanceMetrics `json:"metrics"`
	Skills         SkillScores        `json:"skills"`
	WeeklyProgress []WeeklyProgress   `json:"weekly_progress"`
	TaskStats      TaskCounts         `json:"task_stats"`
}
