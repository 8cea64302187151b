// Package analytics computes read-side projections over a user's transaction
// log: monthly balances, per-category totals, and budget/goal progress.
// Every function here is a pure projection of the record store; nothing is
// mutated and no state is cached, so concurrent calls need no coordination.
package analytics

import (
	"context"
	"fmt"
	"sort"

	"fintrack/internal/core"
)

// Sentinel display names for unresolvable categories. "Uncategorized" means
// the user chose not to categorize; "Unknown Category" means the referenced
// category record no longer exists. The two states are never merged.
const (
	UncategorizedName   = "Uncategorized"
	UnknownCategoryName = "Unknown Category"
)

// Store is the record-store contract the aggregator reads from. Ids missing
// from CategoriesByIDs, including ids owned by another user, are simply
// absent from the result map.
type Store interface {
	ListTransactions(ctx context.Context, userID string, r *core.DateRange) ([]core.Transaction, error)
	CategoriesByIDs(ctx context.Context, userID string, ids []string) (map[string]core.Category, error)
}

// Aggregator derives summaries from stored transactions. It holds no state
// beyond the injected store.
type Aggregator struct {
	store Store
}

func New(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// MonthlyBalance is the income/expense/net summary of one calendar month.
type MonthlyBalance struct {
	Income   core.Money `json:"income"`
	Expenses core.Money `json:"expenses"`
	Balance  core.Money `json:"balance"`
}

// CategoryTotal is one aggregation group: the sum of all transactions of one
// (category, type) pair within the requested window. CategoryID is empty for
// uncategorized transactions.
type CategoryTotal struct {
	CategoryID   string         `json:"-"`
	CategoryName string         `json:"categoryName"`
	Total        core.Money     `json:"total"`
	Type         core.EntryType `json:"type"`
}

// MonthlyBalance sums income and expenses over one calendar month, bounds
// inclusive. Month is 1-indexed. A month with no transactions yields zeros.
func (a *Aggregator) MonthlyBalance(ctx context.Context, userID string, year, month int) (MonthlyBalance, error) {
	first, last, err := core.MonthRange(year, month)
	if err != nil {
		return MonthlyBalance{}, err
	}

	txs, err := a.store.ListTransactions(ctx, userID, &core.DateRange{Start: first, End: last})
	if err != nil {
		return MonthlyBalance{}, fmt.Errorf("list transactions: %w", err)
	}

	var balance MonthlyBalance
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			balance.Income = balance.Income.Add(tx.Amount)
		case core.Expense:
			balance.Expenses = balance.Expenses.Add(tx.Amount)
		}
	}
	balance.Balance = balance.Income.Sub(balance.Expenses)
	return balance, nil
}

// groupKey pairs category and type. Grouping on the pair guards against a
// category that ends up referenced by both income and expense transactions.
type groupKey struct {
	categoryID string
	entryType  core.EntryType
}

// CategoryTotals sums transactions per (category, type) over the inclusive
// window [start, end]. Both bounds are required; resolving a default range is
// the caller's job. Referenced categories are resolved in one batch lookup,
// and results are ordered by total descending (ties keep discovery order).
func (a *Aggregator) CategoryTotals(ctx context.Context, userID string, start, end core.Date) ([]CategoryTotal, error) {
	window := core.DateRange{Start: start, End: end}
	if err := window.Validate(); err != nil {
		return nil, err
	}

	txs, err := a.store.ListTransactions(ctx, userID, &window)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	totals := make(map[groupKey]int64)
	var order []groupKey
	for _, tx := range txs {
		key := groupKey{categoryID: tx.CategoryID, entryType: tx.Type}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		totals[key] += tx.Amount.Cents
	}

	names, err := a.resolveCategoryNames(ctx, userID, order)
	if err != nil {
		return nil, err
	}

	results := make([]CategoryTotal, 0, len(order))
	for _, key := range order {
		results = append(results, CategoryTotal{
			CategoryID:   key.categoryID,
			CategoryName: names[key.categoryID],
			Total:        core.Money{Cents: totals[key]},
			Type:         key.entryType,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Total.Cents > results[j].Total.Cents
	})
	return results, nil
}

// resolveCategoryNames maps every referenced category id to a display name
// with a single batch lookup, avoiding a per-transaction query. The lookup is
// scoped to the user, so a foreign category id reads as unknown.
func (a *Aggregator) resolveCategoryNames(ctx context.Context, userID string, keys []groupKey) (map[string]string, error) {
	ids := make([]string, 0, len(keys))
	seen := make(map[string]bool)
	for _, key := range keys {
		if key.categoryID == "" || seen[key.categoryID] {
			continue
		}
		seen[key.categoryID] = true
		ids = append(ids, key.categoryID)
	}

	names := map[string]string{"": UncategorizedName}
	if len(ids) == 0 {
		return names, nil
	}

	categories, err := a.store.CategoriesByIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve categories: %w", err)
	}
	for _, id := range ids {
		if cat, ok := categories[id]; ok {
			names[id] = cat.Name
		} else {
			// Referenced category was deleted; keep the drift visible.
			names[id] = UnknownCategoryName
		}
	}
	return names, nil
}
