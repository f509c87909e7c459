package core

// Progress is the derived display state of a single goal.
type Progress struct {
	// Pct is current/target as a percentage, unbounded above 100.
	Pct float64 `json:"progressPct"`
	// Remaining is target - current; negative once the goal is exceeded.
	Remaining Money `json:"remaining"`
	Completed bool  `json:"isCompleted"`
	// DaysRemaining is nil when the goal has no deadline. Zero means due
	// today; negative means overdue (a display hint only, never a trigger
	// for side effects).
	DaysRemaining *int `json:"daysRemaining,omitempty"`
}

// GoalProgress derives completion state for a goal as of today. Target is
// guaranteed positive at creation, so no zero-division guard is needed.
func GoalProgress(g Goal, today Date) Progress {
	pct := float64(g.Current.Cents) / float64(g.Target.Cents) * 100.0

	p := Progress{
		Pct:       pct,
		Remaining: Money{Cents: g.Target.Cents - g.Current.Cents},
		Completed: pct >= 100,
	}
	if !g.Deadline.IsZero() {
		days := today.DaysUntil(g.Deadline)
		p.DaysRemaining = &days
	}
	return p
}
