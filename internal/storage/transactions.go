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

// Sync states for the async export pipeline.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions
		   (id, user_id, category_id, description, amount_cents, type, payment_method, tx_date, created_at, sync_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, nullable(t.CategoryID), t.Description, t.Amount.Cents,
		string(t.Type), t.PaymentMethod, t.Date.String(), formatInstant(t.CreatedAt), SyncPending)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", t.ID,
		"user_id", t.UserID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.String())
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET category_id = ?, description = ?, amount_cents = ?, type = ?, payment_method = ?, tx_date = ?
		 WHERE id = ? AND user_id = ?`,
		nullable(t.CategoryID), t.Description, t.Amount.Cents, string(t.Type),
		t.PaymentMethod, t.Date.String(), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if err := requireRowAffected(res, "update transaction"); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction updated", "id", t.ID, "user_id", t.UserID)
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if err := requireRowAffected(res, "delete transaction"); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "user_id", userID)
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, selectTransaction+` WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, err
}

// GetTransactionByID looks a transaction up without user scoping. It exists
// for the sync worker, which processes queue messages rather than user
// requests; HTTP handlers must use GetTransaction.
func (r *SQLiteRepository) GetTransactionByID(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, selectTransaction+` WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, err
}

// ListTransactions returns the user's transactions, optionally bounded by an
// inclusive date range, ordered by date then creation time. The YYYY-MM-DD
// storage format makes the BETWEEN comparison chronologically correct.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, dateRange *core.DateRange) ([]core.Transaction, error) {
	query := selectTransaction + ` WHERE user_id = ?`
	args := []any{userID}
	if dateRange != nil {
		query += ` AND tx_date BETWEEN ? AND ?`
		args = append(args, dateRange.Start.String(), dateRange.End.String())
	}
	query += ` ORDER BY tx_date, created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// PendingSyncTransactions returns transactions not yet exported, oldest
// first. Used by the worker as a recovery scan for lost queue messages.
func (r *SQLiteRepository) PendingSyncTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		selectTransaction+` WHERE sync_status = ? ORDER BY created_at LIMIT ?`,
		SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending sync transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ?, synced_at = ? WHERE id = ?`,
		SyncDone, formatInstant(time.Now()), id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	if err := requireRowAffected(res, "mark synced"); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncError, id)
	if err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	if err := requireRowAffected(res, "mark sync error"); err != nil {
		return err
	}

	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

const selectTransaction = `SELECT id, user_id, category_id, description, amount_cents, type, payment_method, tx_date, created_at
	 FROM transactions`

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		categoryID sql.NullString
		entryType  string
		txDate     string
		createdAt  string
	)
	err := row.Scan(&t.ID, &t.UserID, &categoryID, &t.Description, &t.Amount.Cents,
		&entryType, &t.PaymentMethod, &txDate, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.CategoryID = categoryID.String
	t.Type = core.EntryType(entryType)
	t.CreatedAt = parseInstant(createdAt)
	if t.Date, err = core.ParseDate(txDate); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", txDate, err)
	}
	return t, nil
}
