package engine

import (
	"math"
	"time"

	"github.com/terra-clan/intern-engine/internal/models"
)

// The aggregator derives every dashboard number from the task history
// snapshot it is given. Rule one: a user with no completed tasks shows
// exactly zero everywhere — there is no non-zero default skill level.

const trendWeeks = 7

// ComputeStats produces the dashboard snapshot for a user from the full
// task history. Pure function of (user, tasks, now).
func ComputeStats(user *models.User, tasks []*models.Task, now time.Time) *models.UserStats {
	var completed, inProgress, pending []*models.Task
	for _, t := range tasks {
		switch t.Status {
		case models.TaskDone:
			completed = append(completed, t)
		case models.TaskProgress:
			inProgress = append(inProgress, t)
		default:
			pending = append(pending, t)
		}
	}

	earned := EarnedXP(completed)
	level := CalculateLevel(earned)

	thisWeekStart := now.Add(-7 * 24 * time.Hour)
	lastWeekStart := now.Add(-14 * 24 * time.Hour)

	var thisWeek, lastWeek []*models.Task
	for _, t := range completed {
		if t.CompletedAt == nil {
			continue
		}
		switch {
		case !t.CompletedAt.Before(thisWeekStart):
			thisWeek = append(thisWeek, t)
		case !t.CompletedAt.Before(lastWeekStart):
			lastWeek = append(lastWeek, t)
		}
	}

	avgAll, _ := meanScore(completed)
	avgThis, scoredThis := meanScore(thisWeek)
	avgLast, scoredLast := meanScore(lastWeek)

	quality := roundScore(avgAll)
	qualityChange := 0
	// A delta needs a scored task in both windows; a missing baseline
	// reports zero instead of a delta against an empty set.
	if scoredThis > 0 && scoredLast > 0 {
		qualityChange = roundScore(avgThis) - roundScore(avgLast)
	}

	speed := speedScore(completed)
	speedThis := speedScore(thisWeek)
	speedLast := speedScore(lastWeek)
	speedChange := 0
	if speedThis > 0 && speedLast > 0 {
		speedChange = speedThis - speedLast
	}

	return &models.UserStats{
		User: models.StatsProfile{
			Name:  user.Name,
			Email: user.Email,
			Field: user.Field,
			Level: user.Level,
		},
		Level:       level.Level,
		CurrentXP:   level.CurrentXP,
		NextLevelXP: level.NextLevelXP,
		XPProgress:  level.XPProgress,
		XPNeeded:    level.XPNeeded,
		Metrics: models.PerformanceMetrics{
			CodeQuality:             quality,
			CodeQualityChange:       qualityChange,
			Speed:                   speed,
			SpeedChange:             speedChange,
			RequirementsMatch:       quality,
			RequirementsMatchChange: qualityChange,
		},
		Skills:         skillScores(completed, avgAll, speed),
		WeeklyProgress: weeklyTrend(completed, now),
		TaskStats: models.TaskCounts{
			Completed:    len(completed),
			InProgress:   len(inProgress),
			Pending:      len(pending),
			AverageScore: math.Round(avgAll*10) / 10,
		},
	}
}

// meanScore returns the mean of recorded scores and how many tasks
// carried one
func meanScore(tasks []*models.Task) (float64, int) {
	sum, n := 0, 0
	for _, t := range tasks {
		if t.Score != nil {
			sum += *t.Score
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return float64(sum) / float64(n), n
}

func roundScore(avg float64) int {
	return int(math.Round(avg))
}

// speedScore maps recorded solve times through a fixed decreasing step
// function. Without timing data it approximates speed as 90% of the mean
// score, capped at 90; with neither it is zero.
func speedScore(tasks []*models.Task) int {
	if len(tasks) == 0 {
		return 0
	}

	timeSum, timeN := 0, 0
	for _, t := range tasks {
		if t.TimeSpentMin != nil && *t.TimeSpentMin > 0 {
			timeSum += *t.TimeSpentMin
			timeN++
		}
	}

	if timeN == 0 {
		avg, scored := meanScore(tasks)
		if scored == 0 {
			return 0
		}
		proxy := roundScore(avg * 0.9)
		if proxy > 90 {
			return 90
		}
		return proxy
	}

	avgTime := float64(timeSum) / float64(timeN)
	switch {
	case avgTime <= 15:
		return 100
	case avgTime <= 30:
		return 95
	case avgTime <= 45:
		return 90
	case avgTime <= 60:
		return 85
	case avgTime <= 90:
		return 75
	case avgTime <= 120:
		return 65
	default:
		s := 100 - int(avgTime/2)
		if s < 40 {
			return 40
		}
		return s
	}
}

// skillScores derives the six skill values. Each one starts at zero with
// no completed tasks, grows with score and task count, and has its own cap.
func skillScores(completed []*models.Task, avgScore float64, speed int) models.SkillScores {
	total := len(completed)
	if total == 0 {
		return models.SkillScores{}
	}

	return models.SkillScores{
		ProblemSolving: capAt(95, roundScore(avgScore*0.8)+capAt(15, total*3)),
		CodeQuality:    roundScore(avgScore),
		Communication:  capAt(90, 20+total*7),
		TimeManagement: speed,
		Teamwork:       capAt(85, 15+total*6),
		LearningSpeed:  capAt(95, roundScore(avgScore*0.7)+capAt(25, total*4)),
	}
}

func capAt(limit, v int) int {
	if v > limit {
		return limit
	}
	return v
}

// weeklyTrend buckets completed tasks into trendWeeks non-overlapping
// 7-day windows ending now, oldest first. The cumulative series is
// non-decreasing by construction.
func weeklyTrend(completed []*models.Task, now time.Time) []models.WeeklyProgress {
	trend := make([]models.WeeklyProgress, 0, trendWeeks)

	cumulative := 0
	for weekNum := trendWeeks; weekNum >= 1; weekNum-- {
		weekStart := now.Add(-time.Duration(weekNum) * 7 * 24 * time.Hour)
		weekEnd := now.Add(-time.Duration(weekNum-1) * 7 * 24 * time.Hour)

		weekXP, weekTasks := 0, 0
		for _, t := range completed {
			if t.CompletedAt == nil {
				continue
			}
			done := *t.CompletedAt
			if done.Before(weekStart) || !done.Before(weekEnd) {
				continue
			}
			weekTasks++
			if t.XP > 0 {
				weekXP += taskEarnedXP(t)
			}
		}

		cumulative += weekXP
		trend = append(trend, models.WeeklyProgress{
			Week:         trendWeeks + 1 - weekNum,
			XP:           weekXP,
			Tasks:        weekTasks,
			CumulativeXP: cumulative,
		})
	}

	return trend
}
