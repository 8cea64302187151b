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

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("validate goal: %w", err)
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals
		   (id, user_id, name, target_cents, current_cents, icon, color, target_date, completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		g.Icon, g.Color, nullableDate(g.TargetDate), g.Completed, formatInstant(g.CreatedAt))
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("insert goal: %w", err)
	}

	slog.InfoContext(ctx, "Savings goal created",
		"id", g.ID,
		"user_id", g.UserID,
		"name", g.Name,
		"target_cents", g.TargetAmount.Cents)
	return g, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.SavingsGoal) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("validate goal: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals
		 SET name = ?, target_cents = ?, current_cents = ?, icon = ?, color = ?, target_date = ?, completed = ?
		 WHERE id = ? AND user_id = ?`,
		g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents, g.Icon, g.Color,
		nullableDate(g.TargetDate), g.Completed, g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if err := requireRowAffected(res, "update goal"); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Savings goal updated", "id", g.ID, "user_id", g.UserID)
	return nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if err := requireRowAffected(res, "delete goal"); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Savings goal deleted", "id", id, "user_id", userID)
	return nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, userID, id string) (core.SavingsGoal, error) {
	row := r.db.QueryRowContext(ctx, selectGoal+` WHERE id = ? AND user_id = ?`, id, userID)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsGoal{}, core.ErrNotFound
	}
	return g, err
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, selectGoal+` WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

const selectGoal = `SELECT id, user_id, name, target_cents, current_cents, icon, color, target_date, completed, created_at
	 FROM savings_goals`

func scanGoal(row rowScanner) (core.SavingsGoal, error) {
	var (
		g          core.SavingsGoal
		targetDate sql.NullString
		createdAt  string
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
		&g.Icon, &g.Color, &targetDate, &g.Completed, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.SavingsGoal{}, err
		}
		return core.SavingsGoal{}, fmt.Errorf("scan goal: %w", err)
	}
	g.TargetDate = dateFromNullable(targetDate)
	g.CreatedAt = parseInstant(createdAt)
	return g, nil
}
