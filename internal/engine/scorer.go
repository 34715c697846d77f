package engine

import (
	"github.com/terra-clan/intern-engine/internal/llm"
	"github.com/terra-clan/intern-engine/internal/models"
)

// ScoreEvaluation validates and clamps an extracted evaluation into the
// canonical record for a task with the given XP budget. Pure and
// deterministic: no network or storage access.
func ScoreEvaluation(ex llm.ExtractedEvaluation, xpBudget int) models.Evaluation {
	score := clampScore(int(ex.Score))

	feedback := ex.Feedback
	if feedback == "" {
		feedback = "Evaluation complete."
	}

	return models.Evaluation{
		Score:      score,
		Strengths:  normalizeList(ex.Strengths),
		Weaknesses: normalizeList(ex.Weaknesses),
		Feedback:   feedback,
		XPEarned:   EarnXP(xpBudget, score),
		Degraded:   ex.Degraded,
	}
}

// EarnXP computes floor(budget * score / 100). Always in [0, budget] for
// a clamped score.
func EarnXP(xpBudget, score int) int {
	if xpBudget < 0 {
		xpBudget = 0
	}
	return xpBudget * clampScore(score) / 100
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func normalizeList(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
