package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// fakeExporter records appended rows and can be told to fail.
type fakeExporter struct {
	appended []string
	fail     bool
}

func (f *fakeExporter) Append(_ context.Context, t core.Transaction, categoryName string) (string, error) {
	if f.fail {
		return "", errors.New("spreadsheet unavailable")
	}
	f.appended = append(f.appended, t.ID+"/"+categoryName)
	return "Transactions!A2:E2", nil
}

func newWorkerFixture(t *testing.T, exporter *fakeExporter) (*SyncWorker, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewSyncWorker(repo, exporter, analytics.New(repo), 10), repo
}

func createPendingTransaction(t *testing.T, repo *storage.SQLiteRepository, categoryID string) core.Transaction {
	t.Helper()
	tx, err := repo.CreateTransaction(context.Background(), core.Transaction{
		UserID:      "u1",
		CategoryID:  categoryID,
		Description: "Groceries",
		Amount:      core.Money{Cents: 4250},
		Type:        core.Expense,
		Date:        core.NewDate(2025, 6, 15),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tx
}

func TestHandleSyncMessage(t *testing.T) {
	exporter := &fakeExporter{}
	w, repo := newWorkerFixture(t, exporter)
	ctx := context.Background()

	tx := createPendingTransaction(t, repo, "")

	err := w.HandleSyncMessage(ctx, &amqp.TransactionSyncMessage{ID: tx.ID, UserID: tx.UserID})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(exporter.appended) != 1 {
		t.Fatalf("got %d exports, want 1", len(exporter.appended))
	}
	if exporter.appended[0] != tx.ID+"/"+analytics.UncategorizedName {
		t.Fatalf("got %q, want uncategorized sentinel row", exporter.appended[0])
	}

	pending, err := repo.PendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("exported transaction must leave the pending set, got %d", len(pending))
	}
}

func TestHandleSyncMessageExportFailure(t *testing.T) {
	exporter := &fakeExporter{fail: true}
	w, repo := newWorkerFixture(t, exporter)
	ctx := context.Background()

	tx := createPendingTransaction(t, repo, "")

	// A failed export marks the record and acks the message.
	if err := w.HandleSyncMessage(ctx, &amqp.TransactionSyncMessage{ID: tx.ID, UserID: tx.UserID}); err != nil {
		t.Fatalf("handle: %v", err)
	}

	pending, err := repo.PendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("errored transaction must not stay pending, got %d", len(pending))
	}
}

func TestHandleSyncMessageMissingTransaction(t *testing.T) {
	w, _ := newWorkerFixture(t, &fakeExporter{})

	// Deleted before the worker got to it; the message is dropped quietly.
	err := w.HandleSyncMessage(context.Background(), &amqp.TransactionSyncMessage{ID: "gone", UserID: "u1"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
}

func TestProcessPendingTransactions(t *testing.T) {
	exporter := &fakeExporter{}
	w, repo := newWorkerFixture(t, exporter)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{UserID: "u1", Name: "Food", Type: core.Expense})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	createPendingTransaction(t, repo, cat.ID)
	createPendingTransaction(t, repo, "")

	n, err := w.ProcessPendingTransactions(ctx)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if n != 2 {
		t.Fatalf("got %d processed, want 2", n)
	}
	if len(exporter.appended) != 2 {
		t.Fatalf("got %d exports, want 2", len(exporter.appended))
	}

	// Second pass finds nothing.
	n, err = w.ProcessPendingTransactions(ctx)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if n != 0 {
		t.Fatalf("got %d processed, want 0", n)
	}
}

func TestStartupSyncCheck(t *testing.T) {
	exporter := &fakeExporter{}
	w, repo := newWorkerFixture(t, exporter)

	for range 3 {
		createPendingTransaction(t, repo, "")
	}

	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	if len(exporter.appended) != 3 {
		t.Fatalf("got %d exports, want 3", len(exporter.appended))
	}
}
