package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

const (
	Weekly  BudgetPeriod = "weekly"
	Monthly BudgetPeriod = "monthly"
	Yearly  BudgetPeriod = "yearly"
)

type (
	// EntryType classifies a transaction or category as income or expense.
	EntryType string

	// BudgetPeriod is the recurrence window of a spending ceiling.
	BudgetPeriod string

	// Category groups transactions. Deleting a category does not cascade;
	// transactions keep the dangling reference and the aggregator resolves
	// it to a sentinel name.
	Category struct {
		ID        string
		UserID    string
		Name      string
		Icon      string
		Color     string
		Type      EntryType
		CreatedAt time.Time
	}

	// Transaction is a single income or expense record. Amount is a positive
	// magnitude; direction comes from Type. CategoryID empty means the user
	// chose not to categorize.
	Transaction struct {
		ID            string
		UserID        string
		CategoryID    string
		Description   string
		Amount        Money
		Type          EntryType
		PaymentMethod string
		Date          Date
		CreatedAt     time.Time
	}

	// Budget is a spending ceiling for a category (or all spending when
	// CategoryID is empty) over a recurring period. EndDate empty means
	// open-ended.
	Budget struct {
		ID         string
		UserID     string
		CategoryID string
		Name       string
		Amount     Money
		Period     BudgetPeriod
		StartDate  Date
		EndDate    Date
		CreatedAt  time.Time
	}

	// SavingsGoal tracks progress toward a target amount. Completed is a
	// user-settable flag, kept distinct from the derived progress-complete
	// state.
	SavingsGoal struct {
		ID            string
		UserID        string
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		Icon          string
		Color         string
		TargetDate    Date
		Completed     bool
		CreatedAt     time.Time
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidYear      = errors.New("invalid year")
	ErrInvalidRange     = errors.New("invalid date range")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid entry type")
	ErrInvalidPeriod    = errors.New("invalid budget period")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyUser        = errors.New("empty user id")
	ErrNotFound         = errors.New("record not found")
)

func (t EntryType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (p BudgetPeriod) Validate() error {
	switch p {
	case Weekly, Monthly, Yearly:
		return nil
	}
	return ErrInvalidPeriod
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return ErrEmptyUser
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return c.Type.Validate()
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUser
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return t.Type.Validate()
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrEmptyUser
	}
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if err := b.Period.Validate(); err != nil {
		return err
	}
	if err := b.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	if !b.EndDate.IsEmpty() && b.EndDate.Before(b.StartDate) {
		return errors.New("end date must not precede start date")
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.UserID) == "" {
		return ErrEmptyUser
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
