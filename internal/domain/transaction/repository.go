package transaction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"donortrack/internal/domain/donor"
	"donortrack/internal/domain/search"
)

// Repository defines data access for transactions. Writes that change a
// donor's giving history carry the recomputed summary so both land in one
// database transaction.
type Repository interface {
	Create(ctx context.Context, t *Transaction, s donor.Summary) (*Transaction, error)
	// CreateBatch inserts all rows and writes the recomputed summary for
	// every affected donor atomically.
	CreateBatch(ctx context.Context, rows []*Transaction, summaries map[int64]donor.Summary) ([]*Transaction, error)
	GetByID(ctx context.Context, id int64) (*Transaction, error)
	ListByDonorID(ctx context.Context, donorID int64) ([]*Transaction, error)
	// UpdateWithSummary rewrites one transaction and its donor's summary
	// in a single database transaction.
	UpdateWithSummary(ctx context.Context, t *Transaction, s donor.Summary) error

	Search(ctx context.Context, q search.Query, limit, offset int) ([]*Transaction, error)
	CountSearch(ctx context.Context, q search.Query) (int64, error)
	// SumSearch totals trans_amount over every row the query matches,
	// not just the current page.
	SumSearch(ctx context.Context, q search.Query) (decimal.Decimal, error)

	// DonorIDsWithActivitySince lists donors having at least one
	// transaction on or after the cutoff date.
	DonorIDsWithActivitySince(ctx context.Context, cutoff time.Time) ([]int64, error)
}
