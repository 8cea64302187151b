package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"

	"github.com/google/uuid"
)

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, fmt.Errorf("validate budget: %w", err)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, category_id, name, amount_cents, period, start_date, end_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, nullable(b.CategoryID), b.Name, b.Amount.Cents,
		string(b.Period), b.StartDate.String(), nullableDate(b.EndDate), formatInstant(b.CreatedAt))
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget created",
		"id", b.ID,
		"user_id", b.UserID,
		"name", b.Name,
		"period", b.Period,
		"limit_cents", b.Amount.Cents)
	return b, nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("validate budget: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets
		 SET category_id = ?, name = ?, amount_cents = ?, period = ?, start_date = ?, end_date = ?
		 WHERE id = ? AND user_id = ?`,
		nullable(b.CategoryID), b.Name, b.Amount.Cents, string(b.Period),
		b.StartDate.String(), nullableDate(b.EndDate), b.ID, b.UserID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	if err := requireRowAffected(res, "update budget"); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Budget updated", "id", b.ID, "user_id", b.UserID)
	return nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if err := requireRowAffected(res, "delete budget"); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Budget deleted", "id", id, "user_id", userID)
	return nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, userID, id string) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, selectBudget+` WHERE id = ? AND user_id = ?`, id, userID)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	return b, err
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, selectBudget+` WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

const selectBudget = `SELECT id, user_id, category_id, name, amount_cents, period, start_date, end_date, created_at
	 FROM budgets`

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b          core.Budget
		categoryID sql.NullString
		period     string
		startDate  string
		endDate    sql.NullString
		createdAt  string
	)
	err := row.Scan(&b.ID, &b.UserID, &categoryID, &b.Name, &b.Amount.Cents,
		&period, &startDate, &endDate, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Budget{}, err
		}
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}
	b.CategoryID = categoryID.String
	b.Period = core.BudgetPeriod(period)
	b.EndDate = dateFromNullable(endDate)
	b.CreatedAt = parseInstant(createdAt)
	if b.StartDate, err = core.ParseDate(startDate); err != nil {
		return core.Budget{}, fmt.Errorf("parse budget start date %q: %w", startDate, err)
	}
	return b, nil
}
