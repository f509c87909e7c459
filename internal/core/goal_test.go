package core

import "testing"

func TestGoalProgress(t *testing.T) {
	today := NewDate(2024, 6, 1)

	g := Goal{ID: "g1", Name: "Viagem", Target: Money{Cents: 100000}, Current: Money{Cents: 25000}, Deadline: NewDate(2024, 6, 11)}
	p := GoalProgress(g, today)
	if p.Pct != 25.0 {
		t.Fatalf("expected 25%%, got %v", p.Pct)
	}
	if p.Completed {
		t.Fatalf("expected not completed")
	}
	if p.Remaining.Cents != 75000 {
		t.Fatalf("expected remaining 75000, got %d", p.Remaining.Cents)
	}
	if p.DaysRemaining == nil || *p.DaysRemaining != 10 {
		t.Fatalf("expected 10 days remaining, got %v", p.DaysRemaining)
	}
}

func TestGoalProgressCompleted(t *testing.T) {
	g := Goal{ID: "g", Name: "Reserva", Target: Money{Cents: 50000}, Current: Money{Cents: 50000}}
	p := GoalProgress(g, NewDate(2024, 6, 1))
	if !p.Completed || p.Pct != 100.0 {
		t.Fatalf("expected completed at 100%%, got %+v", p)
	}
	// Progress is unbounded above 100.
	g.Current = Money{Cents: 75000}
	if p := GoalProgress(g, NewDate(2024, 6, 1)); p.Pct != 150.0 || p.Remaining.Cents != -25000 {
		t.Fatalf("expected 150%% and negative remaining, got %+v", p)
	}
}

func TestGoalProgressDeadlines(t *testing.T) {
	today := NewDate(2024, 6, 1)
	base := Goal{ID: "g", Name: "x", Target: Money{Cents: 1000}}

	// No deadline: the field is absent, distinct from zero.
	if p := GoalProgress(base, today); p.DaysRemaining != nil {
		t.Fatalf("expected nil days remaining, got %d", *p.DaysRemaining)
	}

	// Due today.
	g := base
	g.Deadline = today
	if p := GoalProgress(g, today); p.DaysRemaining == nil || *p.DaysRemaining != 0 {
		t.Fatalf("expected 0 days remaining, got %v", p.DaysRemaining)
	}

	// Overdue is reported, never clamped.
	g.Deadline = NewDate(2024, 5, 29)
	if p := GoalProgress(g, today); p.DaysRemaining == nil || *p.DaysRemaining != -3 {
		t.Fatalf("expected -3 days remaining, got %v", p.DaysRemaining)
	}
}

func TestFreshGoalProgressIsZero(t *testing.T) {
	// A just-created goal starts at zero for any positive target.
	for _, target := range []int64{1, 100, 100000} {
		g := Goal{ID: "g", Name: "x", Target: Money{Cents: target}}
		p := GoalProgress(g, NewDate(2024, 1, 1))
		if p.Pct != 0 || p.Completed {
			t.Fatalf("target %d: expected zero progress, got %+v", target, p)
		}
	}
}
