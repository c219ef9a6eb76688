package session

import "github.com/ispell/ispell/internal/vocab"

// ComputeQuota derives the session word budget from the user's daily
// targets and the backend-reported due counts: the smaller of the two
// per category, never negative.
func ComputeQuota(plan vocab.Plan, progress vocab.BookProgress) Quota {
	return Quota{
		New:    clampQuota(plan.DailyNew, progress.DueNew),
		Review: clampQuota(plan.DailyReview, progress.DueReview),
	}
}

func clampQuota(target, due int) int {
	n := min(target, due)
	if n < 0 {
		return 0
	}
	return n
}
