// Package worker runs the export pipeline: it consumes sync messages, mirrors
// transactions to the configured spreadsheet and flags budgets that the new
// spending pushed into warning or over.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/storage"
)

type SyncWorker struct {
	storage    *storage.SQLiteRepository
	exporter   export.TransactionWriter
	aggregator *analytics.Aggregator
	batchSize  int
}

func NewSyncWorker(storage *storage.SQLiteRepository, exporter export.TransactionWriter, aggregator *analytics.Aggregator, batchSize int) *SyncWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:    storage,
		exporter:   exporter,
		aggregator: aggregator,
		batchSize:  batchSize,
	}
}

// HandleSyncMessage exports the transaction referenced by a queue message.
// Export failures mark the record sync_status=error and ack the message;
// requeueing a persistently failing export would spin the consumer.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	tx, err := w.storage.GetTransactionByID(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Deleted before the worker got to it; nothing to export.
			slog.WarnContext(ctx, "Transaction vanished before sync", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("load transaction: %w", err)
	}

	if err := w.exportTransaction(ctx, tx); err != nil {
		slog.ErrorContext(ctx, "Failed to export transaction",
			"id", tx.ID,
			"error", err)
		if markErr := w.storage.MarkSyncError(ctx, tx.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", tx.ID, "error", markErr)
		}
		return nil
	}

	w.checkBudgetAlerts(ctx, tx)
	return nil
}

// ProcessPendingTransactions exports one batch of pending transactions and
// returns how many were attempted. Called by the periodic scan, it also
// recovers records whose publish was lost.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) (int, error) {
	pending, err := w.storage.PendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))
	for _, tx := range pending {
		if err := w.exportTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending transaction",
				"id", tx.ID,
				"error", err)
			if markErr := w.storage.MarkSyncError(ctx, tx.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", tx.ID, "error", markErr)
			}
			continue
		}
		w.checkBudgetAlerts(ctx, tx)
	}
	return len(pending), nil
}

// StartupSyncCheck drains whatever was left pending while the worker was
// down.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	slog.InfoContext(ctx, "Running startup sync check")
	total := 0
	for {
		n, err := w.ProcessPendingTransactions(ctx)
		if err != nil {
			return err
		}
		total += n
		if n < w.batchSize {
			break
		}
	}
	slog.InfoContext(ctx, "Startup sync check complete", "processed", total)
	return nil
}

// RunPeriodicSync scans for pending transactions on the configured interval
// until ctx is cancelled.
func (w *SyncWorker) RunPeriodicSync(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping periodic sync", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessPendingTransactions(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic sync pass failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) exportTransaction(ctx context.Context, tx core.Transaction) error {
	categoryName, err := w.resolveCategoryName(ctx, tx.UserID, tx.CategoryID)
	if err != nil {
		return err
	}

	rowRef, err := w.exporter.Append(ctx, tx, categoryName)
	if err != nil {
		return fmt.Errorf("append to spreadsheet: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, tx.ID); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"id", tx.ID,
		"row", rowRef)
	return nil
}

func (w *SyncWorker) resolveCategoryName(ctx context.Context, userID, categoryID string) (string, error) {
	if categoryID == "" {
		return analytics.UncategorizedName, nil
	}
	categories, err := w.storage.CategoriesByIDs(ctx, userID, []string{categoryID})
	if err != nil {
		return "", fmt.Errorf("resolve category: %w", err)
	}
	if cat, ok := categories[categoryID]; ok {
		return cat.Name, nil
	}
	return analytics.UnknownCategoryName, nil
}

// checkBudgetAlerts evaluates the user's budgets after an expense lands and
// logs the ones no longer in good standing. Alerting is log-only; the API
// serves the same evaluation on demand.
func (w *SyncWorker) checkBudgetAlerts(ctx context.Context, tx core.Transaction) {
	if tx.Type != core.Expense {
		return
	}

	budgets, err := w.storage.ListBudgets(ctx, tx.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list budgets for alert check", "error", err)
		return
	}

	today := core.Today()
	for _, b := range budgets {
		if b.CategoryID != "" && b.CategoryID != tx.CategoryID {
			continue
		}
		progress, err := w.aggregator.BudgetProgress(ctx, b, today)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to evaluate budget", "budget_id", b.ID, "error", err)
			continue
		}
		switch progress.Status {
		case analytics.BudgetOver:
			slog.WarnContext(ctx, "Budget exceeded",
				"budget_id", b.ID,
				"budget_name", b.Name,
				"spent", progress.Spent.String(),
				"limit", progress.Limit.String())
		case analytics.BudgetWarning:
			slog.WarnContext(ctx, "Budget nearing limit",
				"budget_id", b.ID,
				"budget_name", b.Name,
				"percentage", progress.Percentage)
		}
	}
}
