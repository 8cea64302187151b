// Package export defines the outbound port for mirroring transactions to an
// external spreadsheet.
package export

import (
	"context"

	"fintrack/internal/core"
)

// TransactionWriter appends one transaction row to the export target and
// returns a reference to the written row.
type TransactionWriter interface {
	Append(ctx context.Context, t core.Transaction, categoryName string) (rowRef string, err error)
}
