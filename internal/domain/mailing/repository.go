package mailing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"donortrack/internal/domain/donor"
)

// Repository defines the read-side queries the eligibility rules run.
// Each method returns donor IDs only; the engine does the set algebra.
type Repository interface {
	// DonorIDsWithActivity lists donors having at least one transaction
	// inside the window, restricted to the given newsletter statuses and
	// excluding the given donor statuses.
	DonorIDsWithActivity(ctx context.Context, w Window, newsletterIn, donorStatusNotIn []string) ([]int64, error)

	// DonorIDsWithGiftAtLeast lists donors with a single transaction of
	// at least min inside the window, restricted by status the same way.
	DonorIDsWithGiftAtLeast(ctx context.Context, w Window, min decimal.Decimal, newsletterIn, donorStatusNotIn []string) ([]int64, error)

	// DonorIDsWithLatestActivityIn lists donors whose stored latest gift
	// date falls inside the window.
	DonorIDsWithLatestActivityIn(ctx context.Context, w Window) ([]int64, error)

	// DonorIDsWithPublication lists donors whose house-publications field
	// matches any given pattern, with the given exact status pair. An
	// empty donorStatus matches every donor status.
	DonorIDsWithPublication(ctx context.Context, patterns []string, donorStatus, newsletterStatus string) ([]int64, error)

	// FilterMailable keeps only donors not already flagged for active
	// mailing and not deceased.
	FilterMailable(ctx context.Context, ids []int64) ([]int64, error)

	// ListByIDs loads full donor records for export, in ID order.
	ListByIDs(ctx context.Context, ids []int64) ([]*donor.Donor, error)

	// ListActiveMailing loads every donor currently flagged for active
	// mailing whose mailing_until_date, when set, has not passed.
	ListActiveMailing(ctx context.Context, asOf time.Time) ([]*donor.Donor, error)
}
