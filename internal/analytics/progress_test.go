package analytics

import (
	"context"
	"math"
	"testing"

	"fintrack/internal/core"
)

func TestBudgetStatus(t *testing.T) {
	tests := []struct {
		name         string
		spent, limit int64
		wantStatus   BudgetState
		wantPct      float64
	}{
		{"well under", 1000, 10000, BudgetGood, 10},
		{"just under warning", 7999, 10000, BudgetGood, 79.99},
		{"at warning threshold", 8000, 10000, BudgetWarning, 80},
		{"just under limit", 9999, 10000, BudgetWarning, 99.99},
		{"exactly at limit", 10000, 10000, BudgetOver, 100},
		{"over limit", 15000, 10000, BudgetOver, 150},
		{"nothing spent", 0, 10000, BudgetGood, 0},
		{"zero limit", 5000, 0, BudgetGood, 0},
		{"negative limit", 5000, -100, BudgetGood, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BudgetStatus(core.Money{Cents: tt.spent}, core.Money{Cents: tt.limit})
			if got.Status != tt.wantStatus {
				t.Fatalf("status: got %s, want %s", got.Status, tt.wantStatus)
			}
			// Percentages like 79.99 are not exactly representable in a
			// float64, so compare within a tolerance.
			if math.Abs(got.Percentage-tt.wantPct) > 1e-9 {
				t.Fatalf("percentage: got %v, want %v", got.Percentage, tt.wantPct)
			}
		})
	}
}

func TestGoalStatus(t *testing.T) {
	today := core.NewDate(2025, 6, 1)
	goal := func(current, target int64, targetDate core.Date) core.SavingsGoal {
		return core.SavingsGoal{
			CurrentAmount: core.Money{Cents: current},
			TargetAmount:  core.Money{Cents: target},
			TargetDate:    targetDate,
		}
	}

	t.Run("fully funded beats overdue", func(t *testing.T) {
		p := GoalStatus(goal(10000, 10000, core.NewDate(2025, 1, 1)), today)
		if p.Status != GoalCompleted {
			t.Fatalf("got %s, want completed", p.Status)
		}
		if !p.ProgressComplete {
			t.Fatal("ProgressComplete must be set")
		}
		if p.DaysLeft != nil {
			t.Fatal("completed goal must not report days left")
		}
	})

	t.Run("overdue", func(t *testing.T) {
		p := GoalStatus(goal(5000, 10000, core.NewDate(2025, 5, 31)), today)
		if p.Status != GoalOverdue {
			t.Fatalf("got %s, want overdue", p.Status)
		}
		if p.DaysLeft == nil || *p.DaysLeft != -1 {
			t.Fatalf("days left: got %v, want -1", p.DaysLeft)
		}
	})

	t.Run("urgent at thirty days", func(t *testing.T) {
		p := GoalStatus(goal(5000, 10000, core.NewDate(2025, 7, 1)), today)
		if p.Status != GoalUrgent {
			t.Fatalf("got %s, want urgent", p.Status)
		}
		if p.DaysLeft == nil || *p.DaysLeft != 30 {
			t.Fatalf("days left: got %v, want 30", p.DaysLeft)
		}
	})

	t.Run("active past thirty days", func(t *testing.T) {
		p := GoalStatus(goal(5000, 10000, core.NewDate(2025, 7, 2)), today)
		if p.Status != GoalActive {
			t.Fatalf("got %s, want active", p.Status)
		}
	})

	t.Run("deadline today is urgent", func(t *testing.T) {
		p := GoalStatus(goal(5000, 10000, today), today)
		if p.Status != GoalUrgent {
			t.Fatalf("got %s, want urgent", p.Status)
		}
	})

	t.Run("no target date", func(t *testing.T) {
		p := GoalStatus(goal(5000, 10000, core.Date{}), today)
		if p.Status != GoalActive {
			t.Fatalf("got %s, want active", p.Status)
		}
		if p.DaysLeft != nil {
			t.Fatal("goal without deadline must not report days left")
		}
		if p.Percentage != 50 {
			t.Fatalf("percentage: got %v, want 50", p.Percentage)
		}
	})

	t.Run("zero target", func(t *testing.T) {
		p := GoalStatus(goal(5000, 0, core.Date{}), today)
		if p.Percentage != 0 {
			t.Fatalf("percentage: got %v, want 0", p.Percentage)
		}
		if p.Status != GoalActive {
			t.Fatalf("got %s, want active", p.Status)
		}
	})

	t.Run("stored flag passes through", func(t *testing.T) {
		g := goal(1000, 10000, core.Date{})
		g.Completed = true
		p := GoalStatus(g, today)
		if !p.Completed {
			t.Fatal("stored completed flag must be reported")
		}
		if p.ProgressComplete {
			t.Fatal("derived completion must stay false at 10%")
		}
	})
}

func TestPeriodWindow(t *testing.T) {
	budget := func(period core.BudgetPeriod, start, end core.Date) core.Budget {
		return core.Budget{Period: period, StartDate: start, EndDate: end}
	}
	open := core.Date{}

	t.Run("weekly starts monday", func(t *testing.T) {
		// 2025-06-04 is a Wednesday.
		w := PeriodWindow(budget(core.Weekly, core.NewDate(2025, 1, 1), open), core.NewDate(2025, 6, 4))
		if w.Start.String() != "2025-06-02" || w.End.String() != "2025-06-08" {
			t.Fatalf("got [%s, %s], want [2025-06-02, 2025-06-08]", w.Start, w.End)
		}
	})

	t.Run("weekly on a monday", func(t *testing.T) {
		w := PeriodWindow(budget(core.Weekly, core.NewDate(2025, 1, 1), open), core.NewDate(2025, 6, 2))
		if w.Start.String() != "2025-06-02" {
			t.Fatalf("monday must start its own week, got %s", w.Start)
		}
	})

	t.Run("weekly on a sunday", func(t *testing.T) {
		w := PeriodWindow(budget(core.Weekly, core.NewDate(2025, 1, 1), open), core.NewDate(2025, 6, 8))
		if w.Start.String() != "2025-06-02" || w.End.String() != "2025-06-08" {
			t.Fatalf("got [%s, %s], want [2025-06-02, 2025-06-08]", w.Start, w.End)
		}
	})

	t.Run("monthly", func(t *testing.T) {
		w := PeriodWindow(budget(core.Monthly, core.NewDate(2025, 1, 1), open), core.NewDate(2025, 2, 14))
		if w.Start.String() != "2025-02-01" || w.End.String() != "2025-02-28" {
			t.Fatalf("got [%s, %s], want [2025-02-01, 2025-02-28]", w.Start, w.End)
		}
	})

	t.Run("yearly", func(t *testing.T) {
		w := PeriodWindow(budget(core.Yearly, core.NewDate(2025, 1, 1), open), core.NewDate(2025, 6, 15))
		if w.Start.String() != "2025-01-01" || w.End.String() != "2025-12-31" {
			t.Fatalf("got [%s, %s], want [2025-01-01, 2025-12-31]", w.Start, w.End)
		}
	})

	t.Run("clipped to budget dates", func(t *testing.T) {
		w := PeriodWindow(
			budget(core.Monthly, core.NewDate(2025, 6, 10), core.NewDate(2025, 6, 20)),
			core.NewDate(2025, 6, 15))
		if w.Start.String() != "2025-06-10" || w.End.String() != "2025-06-20" {
			t.Fatalf("got [%s, %s], want [2025-06-10, 2025-06-20]", w.Start, w.End)
		}
	})
}

func TestAggregatorBudgetProgress(t *testing.T) {
	store := &fakeStore{transactions: []core.Transaction{
		tx("u1", "cat-food", "groceries", 30000, core.Expense, core.NewDate(2025, 6, 5)),
		tx("u1", "cat-food", "restaurant", 20000, core.Expense, core.NewDate(2025, 6, 10)),
		// Different category, must not count for a category budget.
		tx("u1", "cat-rent", "rent", 120000, core.Expense, core.NewDate(2025, 6, 1)),
		// Income never counts as spending.
		tx("u1", "cat-food", "refund", 5000, core.Income, core.NewDate(2025, 6, 12)),
		// Previous month.
		tx("u1", "cat-food", "old", 99900, core.Expense, core.NewDate(2025, 5, 20)),
	}}
	agg := New(store)
	today := core.NewDate(2025, 6, 15)

	t.Run("category budget", func(t *testing.T) {
		b := core.Budget{
			UserID:     "u1",
			CategoryID: "cat-food",
			Amount:     core.Money{Cents: 60000},
			Period:     core.Monthly,
			StartDate:  core.NewDate(2025, 1, 1),
		}
		p, err := agg.BudgetProgress(context.Background(), b, today)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Spent.Cents != 50000 {
			t.Fatalf("spent: got %d, want 50000", p.Spent.Cents)
		}
		if p.Status != BudgetWarning {
			t.Fatalf("status: got %s, want warning", p.Status)
		}
	})

	t.Run("overall budget counts every expense", func(t *testing.T) {
		b := core.Budget{
			UserID:    "u1",
			Amount:    core.Money{Cents: 200000},
			Period:    core.Monthly,
			StartDate: core.NewDate(2025, 1, 1),
		}
		p, err := agg.BudgetProgress(context.Background(), b, today)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Spent.Cents != 170000 {
			t.Fatalf("spent: got %d, want 170000", p.Spent.Cents)
		}
	})

	t.Run("inactive budget", func(t *testing.T) {
		b := core.Budget{
			UserID:    "u1",
			Amount:    core.Money{Cents: 10000},
			Period:    core.Monthly,
			StartDate: core.NewDate(2025, 7, 1),
		}
		p, err := agg.BudgetProgress(context.Background(), b, today)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Spent.Cents != 0 || p.Status != BudgetGood {
			t.Fatalf("inactive budget must report zero spending, got %+v", p)
		}
	})
}
