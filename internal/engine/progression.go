package engine

import (
	"github.com/terra-clan/intern-engine/internal/models"
)

// levelStep is one entry of the progression table: the cumulative XP at
// which the level starts and the XP span to the next level
type levelStep struct {
	threshold int
	span      int
}

// levelTable is the fixed ascending progression table. Levels beyond the
// table continue with defaultLevelSpan.
var levelTable = []levelStep{
	{0, 500},
	{500, 1000},
	{1500, 1500},
	{3000, 2000},
	{5000, 2500},
	{7500, 3000},
	{10500, 3500},
	{14000, 4000},
	{18000, 4500},
	{22500, 5000},
	{27500, 5500},
	{33000, 6000},
	{39000, 6500},
	{45500, 7000},
	{52500, 7500},
}

const defaultLevelSpan = 8000

// CalculateLevel derives the level descriptor for a cumulative XP total.
// The level is the highest 1-indexed table entry whose threshold is
// <= xp; past the table the span stays fixed so levels never run out.
func CalculateLevel(xp int) models.LevelInfo {
	if xp < 0 {
		xp = 0
	}

	level := 1
	for i, step := range levelTable {
		if xp >= step.threshold {
			level = i + 1
		} else {
			break
		}
	}

	levelStart := levelTable[level-1].threshold
	span := levelTable[level-1].span

	// Walk past the end of the table in fixed spans
	if last := levelTable[len(levelTable)-1]; xp >= last.threshold+last.span {
		levelStart = last.threshold + last.span
		span = defaultLevelSpan
		level = len(levelTable) + 1
		for xp >= levelStart+span {
			levelStart += span
			level++
		}
	}

	return models.LevelInfo{
		Level:       level,
		CurrentXP:   xp,
		LevelStart:  levelStart,
		NextLevelXP: levelStart + span,
		XPProgress:  xp - levelStart,
		XPNeeded:    span,
	}
}

// scorelessCreditPercent is the credit applied to a done task without a
// recorded score
const scorelessCreditPercent = 70

// EarnedXP recomputes cumulative XP from the full completed-task history.
// A pure function of the snapshot: calling it twice yields the same
// value, and the stored total is corrected whenever it disagrees.
func EarnedXP(tasks []*models.Task) int {
	total := 0
	for _, t := range tasks {
		if !t.IsCompleted() || t.XP <= 0 {
			continue
		}
		total += taskEarnedXP(t)
	}
	return total
}

func taskEarnedXP(t *models.Task) int {
	if t.Score != nil {
		return EarnXP(t.XP, *t.Score)
	}
	return t.XP * scorelessCreditPercent / 100
}
