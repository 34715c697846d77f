package engine

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/terra-clan/intern-engine/internal/models"
)

var statsNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func doneTask(score *int, xp int, completedAgo time.Duration, timeSpent *int) *models.Task {
	done := statsNow.Add(-completedAgo)
	return &models.Task{
		Status:       models.TaskDone,
		XP:           xp,
		Score:        score,
		CompletedAt:  &done,
		TimeSpentMin: timeSpent,
	}
}

func intp(v int) *int { return &v }

func TestComputeStatsZeroFloor(t *testing.T) {
	user := &models.User{Name: "Fresh", Email: "fresh@example.com"}

	tasks := []*models.Task{
		{Status: models.TaskTodo, XP: 100},
		{Status: models.TaskProgress, XP: 200},
	}

	stats := ComputeStats(user, tasks, statsNow)

	if stats.CurrentXP != 0 || stats.Level != 1 {
		t.Errorf("expected level 1 at 0 XP, got level %d at %d", stats.Level, stats.CurrentXP)
	}

	m := stats.Metrics
	if m.CodeQuality != 0 || m.Speed != 0 || m.RequirementsMatch != 0 ||
		m.CodeQualityChange != 0 || m.SpeedChange != 0 || m.RequirementsMatchChange != 0 {
		t.Errorf("metrics not zero for user with no completed tasks: %+v", m)
	}

	if stats.Skills != (models.SkillScores{}) {
		t.Errorf("skills not zero for user with no completed tasks: %+v", stats.Skills)
	}

	for _, wp := range stats.WeeklyProgress {
		if wp.XP != 0 || wp.Tasks != 0 || wp.CumulativeXP != 0 {
			t.Errorf("trend bucket not zero: %+v", wp)
		}
	}

	if stats.TaskStats.Pending != 1 || stats.TaskStats.InProgress != 1 || stats.TaskStats.Completed != 0 {
		t.Errorf("unexpected task counts: %+v", stats.TaskStats)
	}
}

func TestComputeStatsQualityAndDelta(t *testing.T) {
	user := &models.User{Email: "u@example.com"}

	tasks := []*models.Task{
		doneTask(intp(90), 200, 2*24*time.Hour, nil),  // this week
		doneTask(intp(80), 100, 3*24*time.Hour, nil),  // this week
		doneTask(intp(70), 100, 10*24*time.Hour, nil), // last week
	}

	stats := ComputeStats(user, tasks, statsNow)

	if stats.Metrics.CodeQuality != 80 {
		t.Errorf("expected quality 80, got %d", stats.Metrics.CodeQuality)
	}
	// this week mean 85, last week mean 70
	if stats.Metrics.CodeQualityChange != 15 {
		t.Errorf("expected quality delta 15, got %d", stats.Metrics.CodeQualityChange)
	}
	if stats.Metrics.RequirementsMatchChange != 15 {
		t.Errorf("expected requirements delta 15, got %d", stats.Metrics.RequirementsMatchChange)
	}
}

func TestComputeStatsDeltaMissingBaseline(t *testing.T) {
	user := &models.User{Email: "u@example.com"}

	// Scored tasks only in the current window; prior window empty
	tasks := []*models.Task{
		doneTask(intp(95), 200, 1*24*time.Hour, nil),
		doneTask(intp(85), 100, 4*24*time.Hour, nil),
	}

	stats := ComputeStats(user, tasks, statsNow)

	if stats.Metrics.CodeQualityChange != 0 {
		t.Errorf("delta with missing baseline must be 0, got %d", stats.Metrics.CodeQualityChange)
	}
	if stats.Metrics.SpeedChange != 0 {
		t.Errorf("speed delta with missing baseline must be 0, got %d", stats.Metrics.SpeedChange)
	}
}

func TestSpeedScoreStepFunction(t *testing.T) {
	cases := []struct {
		minutes int
		want    int
	}{
		{10, 100},
		{30, 95},
		{45, 90},
		{60, 85},
		{90, 75},
		{120, 65},
		{110, 65},
		{130, 40}, // 100 - 65 = 35, floored at 40
	}

	for _, c := range cases {
		tasks := []*models.Task{doneTask(intp(80), 100, 24*time.Hour, intp(c.minutes))}
		if got := speedScore(tasks); got != c.want {
			t.Errorf("speedScore(%d min) = %d, want %d", c.minutes, got, c.want)
		}
	}
}

func TestSpeedScoreProxyFromScores(t *testing.T) {
	// No timing data: speed approximates 90% of mean score, capped at 90
	tasks := []*models.Task{
		doneTask(intp(100), 100, 24*time.Hour, nil),
		doneTask(intp(100), 100, 48*time.Hour, nil),
	}
	if got := speedScore(tasks); got != 90 {
		t.Errorf("expected proxy capped at 90, got %d", got)
	}

	tasks = []*models.Task{doneTask(intp(60), 100, 24*time.Hour, nil)}
	if got := speedScore(tasks); got != 54 {
		t.Errorf("expected proxy 54, got %d", got)
	}

	// Completed but neither timing nor scores: zero
	tasks = []*models.Task{doneTask(nil, 100, 24*time.Hour, nil)}
	if got := speedScore(tasks); got != 0 {
		t.Errorf("expected 0 without timing or scores, got %d", got)
	}
}

func TestSkillScoresGrowthAndCaps(t *testing.T) {
	user := &models.User{Email: "u@example.com"}

	var tasks []*models.Task
	for i := 0; i < 20; i++ {
		tasks = append(tasks, doneTask(intp(100), 100, time.Duration(i+1)*24*time.Hour, intp(10)))
	}

	stats := ComputeStats(user, tasks, statsNow)
	s := stats.Skills

	if s.ProblemSolving != 95 {
		t.Errorf("problem solving cap: got %d, want 95", s.ProblemSolving)
	}
	if s.Communication != 90 {
		t.Errorf("communication cap: got %d, want 90", s.Communication)
	}
	if s.Teamwork != 85 {
		t.Errorf("teamwork cap: got %d, want 85", s.Teamwork)
	}
	if s.LearningSpeed != 95 {
		t.Errorf("learning speed cap: got %d, want 95", s.LearningSpeed)
	}
	if s.TimeManagement != 100 {
		t.Errorf("time management from 10-minute solves: got %d, want 100", s.TimeManagement)
	}
	if s.CodeQuality != 100 {
		t.Errorf("code quality from perfect scores: got %d, want 100", s.CodeQuality)
	}
}

func TestSkillScoresMonotonicInTaskCount(t *testing.T) {
	user := &models.User{Email: "u@example.com"}

	prev := models.SkillScores{}
	for n := 1; n <= 10; n++ {
		var tasks []*models.Task
		for i := 0; i < n; i++ {
			tasks = append(tasks, doneTask(intp(85), 100, time.Duration(i+1)*time.Hour, nil))
		}
		s := ComputeStats(user, tasks, statsNow).Skills

		if s.ProblemSolving < prev.ProblemSolving ||
			s.Communication < prev.Communication ||
			s.Teamwork < prev.Teamwork ||
			s.LearningSpeed < prev.LearningSpeed {
			t.Fatalf("skills regressed at n=%d: %+v -> %+v", n, prev, s)
		}
		prev = s
	}
}

func TestWeeklyTrendMonotoneCumulative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(t, "n")

		var tasks []*models.Task
		for i := 0; i < n; i++ {
			score := rapid.IntRange(0, 100).Draw(t, "score")
			ago := time.Duration(rapid.IntRange(0, 70).Draw(t, "days")) * 24 * time.Hour
			tasks = append(tasks, doneTask(intp(score), 100, ago, nil))
		}

		trend := weeklyTrend(tasks, statsNow)
		if len(trend) != trendWeeks {
			t.Fatalf("expected %d buckets, got %d", trendWeeks, len(trend))
		}

		for i := 1; i < len(trend); i++ {
			if trend[i].CumulativeXP < trend[i-1].CumulativeXP {
				t.Fatalf("cumulative series decreased at bucket %d: %v", i, trend)
			}
			if trend[i].Week != trend[i-1].Week+1 {
				t.Fatalf("week index not sequential: %v", trend)
			}
		}
	})
}

func TestWeeklyTrendBucketing(t *testing.T) {
	score100 := 100
	d := statsNow.Add(-8 * 24 * time.Hour) // second-to-last bucket
	tasks := []*models.Task{
		{Status: models.TaskDone, XP: 200, Score: &score100, CompletedAt: &d},
	}

	trend := weeklyTrend(tasks, statsNow)

	if got := trend[trendWeeks-2]; got.Tasks != 1 || got.XP != 200 {
		t.Errorf("expected task in bucket %d, got %+v", trendWeeks-1, trend)
	}
	if got := trend[trendWeeks-1]; got.Tasks != 0 || got.CumulativeXP != 200 {
		t.Errorf("last bucket should carry cumulative only, got %+v", got)
	}
}
