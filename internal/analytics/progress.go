package analytics

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
)

const (
	BudgetGood    BudgetState = "good"
	BudgetWarning BudgetState = "warning"
	BudgetOver    BudgetState = "over"
)

const (
	GoalCompleted GoalState = "completed"
	GoalOverdue   GoalState = "overdue"
	GoalUrgent    GoalState = "urgent"
	GoalActive    GoalState = "active"
)

// warningThreshold is the percentage at which a budget turns from good to
// warning.
const warningThreshold = 80.0

// urgentWindowDays is how close a goal deadline may be before the goal is
// flagged urgent.
const urgentWindowDays = 30

type (
	// BudgetState classifies spending against a limit.
	BudgetState string

	// GoalState classifies savings progress against a target and deadline.
	GoalState string

	// BudgetProgress is the evaluated state of one budget.
	BudgetProgress struct {
		Status     BudgetState `json:"status"`
		Percentage float64     `json:"percentage"`
		Spent      core.Money  `json:"spent"`
		Limit      core.Money  `json:"limit"`
	}

	// GoalProgress is the evaluated state of one savings goal. Completed
	// reflects the stored user-settable flag; ProgressComplete is derived
	// from amounts. The two are reported separately on purpose.
	GoalProgress struct {
		Status           GoalState  `json:"status"`
		Percentage       float64    `json:"percentage"`
		DaysLeft         *int       `json:"daysLeft,omitempty"`
		Completed        bool       `json:"completed"`
		ProgressComplete bool       `json:"progressComplete"`
		Current          core.Money `json:"current"`
		Target           core.Money `json:"target"`
	}
)

// BudgetStatus classifies spent against limit. A non-positive limit yields
// 0% and good rather than a division by zero.
func BudgetStatus(spent, limit core.Money) BudgetProgress {
	p := BudgetProgress{Status: BudgetGood, Spent: spent, Limit: limit}
	if limit.Cents <= 0 {
		return p
	}
	p.Percentage = float64(spent.Cents) / float64(limit.Cents) * 100
	switch {
	case p.Percentage >= 100:
		p.Status = BudgetOver
	case p.Percentage >= warningThreshold:
		p.Status = BudgetWarning
	}
	return p
}

// GoalStatus classifies a savings goal. Progress completion is checked before
// any date logic, so a fully funded goal is never overdue. A goal without a
// target date is simply active.
func GoalStatus(goal core.SavingsGoal, today core.Date) GoalProgress {
	p := GoalProgress{
		Status:    GoalActive,
		Completed: goal.Completed,
		Current:   goal.CurrentAmount,
		Target:    goal.TargetAmount,
	}
	if goal.TargetAmount.Cents > 0 {
		p.Percentage = float64(goal.CurrentAmount.Cents) / float64(goal.TargetAmount.Cents) * 100
	}
	if p.Percentage >= 100 {
		p.Status = GoalCompleted
		p.ProgressComplete = true
		return p
	}
	if goal.TargetDate.IsEmpty() {
		return p
	}

	daysLeft := today.DaysUntil(goal.TargetDate)
	p.DaysLeft = &daysLeft
	switch {
	case daysLeft < 0:
		p.Status = GoalOverdue
	case daysLeft <= urgentWindowDays:
		p.Status = GoalUrgent
	}
	return p
}

// PeriodWindow returns the budget's active window containing the reference
// date: the Monday-start week, calendar month, or calendar year, clipped to
// the budget's own start and end dates.
func PeriodWindow(b core.Budget, ref core.Date) core.DateRange {
	var window core.DateRange
	switch b.Period {
	case core.Weekly:
		offset := (int(ref.Weekday()) + 6) % 7 // days since Monday
		window.Start = core.NewDate(ref.Year(), ref.Month(), ref.Day()-offset)
		window.End = core.Date{Time: window.Start.AddDate(0, 0, 6)}
	case core.Yearly:
		window.Start = core.NewDate(ref.Year(), 1, 1)
		window.End = core.NewDate(ref.Year(), 12, 31)
	default: // monthly
		window.Start = core.NewDate(ref.Year(), ref.Month(), 1)
		window.End = core.Date{Time: time.Date(ref.Year(), time.Month(ref.Month())+1, 0, 0, 0, 0, 0, time.UTC)}
	}
	if window.Start.Before(b.StartDate) {
		window.Start = b.StartDate
	}
	if !b.EndDate.IsEmpty() && window.End.After(b.EndDate) {
		window.End = b.EndDate
	}
	return window
}

// BudgetProgress evaluates a budget against real spending: expense
// transactions in the budget's current period window, filtered to the
// budget's category when one is set.
func (a *Aggregator) BudgetProgress(ctx context.Context, b core.Budget, today core.Date) (BudgetProgress, error) {
	window := PeriodWindow(b, today)
	if window.Start.After(window.End) {
		// Budget not active on the reference date.
		return BudgetStatus(core.Money{}, b.Amount), nil
	}

	txs, err := a.store.ListTransactions(ctx, b.UserID, &window)
	if err != nil {
		return BudgetProgress{}, fmt.Errorf("list transactions: %w", err)
	}

	var spent core.Money
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		if b.CategoryID != "" && tx.CategoryID != b.CategoryID {
			continue
		}
		spent = spent.Add(tx.Amount)
	}
	return BudgetStatus(spent, b.Amount), nil
}
