package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"donortrack/internal/domain/donor"
	"donortrack/internal/domain/mailing"
)

type MailingRepository struct {
	db *DB
}

func NewMailingRepository(db *DB) *MailingRepository {
	return &MailingRepository{db: db}
}

func (r *MailingRepository) scanIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *MailingRepository) DonorIDsWithActivity(ctx context.Context, w mailing.Window, newsletterIn, donorStatusNotIn []string) ([]int64, error) {
	query := `
		SELECT DISTINCT d.donor_id
		FROM donors d
		JOIN transactions t ON t.donor_id = d.donor_id
		WHERE t.trans_date >= $1 AND t.trans_date <= $2
		  AND d.newsletter_status = ANY($3)
		  AND (d.donor_status IS NULL OR d.donor_status != ALL($4))
		ORDER BY d.donor_id`

	ids, err := r.scanIDs(ctx, query, w.Start, w.End, pq.Array(newsletterIn), pq.Array(donorStatusNotIn))
	if err != nil {
		return nil, fmt.Errorf("failed to query donors with activity: %w", err)
	}
	return ids, nil
}

func (r *MailingRepository) DonorIDsWithGiftAtLeast(ctx context.Context, w mailing.Window, min decimal.Decimal, newsletterIn, donorStatusNotIn []string) ([]int64, error) {
	query := `
		SELECT DISTINCT d.donor_id
		FROM donors d
		JOIN transactions t ON t.donor_id = d.donor_id
		WHERE t.trans_date >= $1 AND t.trans_date <= $2
		  AND t.trans_amount >= $3
		  AND d.newsletter_status = ANY($4)
		  AND (d.donor_status IS NULL OR d.donor_status != ALL($5))
		ORDER BY d.donor_id`

	ids, err := r.scanIDs(ctx, query, w.Start, w.End, min, pq.Array(newsletterIn), pq.Array(donorStatusNotIn))
	if err != nil {
		return nil, fmt.Errorf("failed to query major donors: %w", err)
	}
	return ids, nil
}

func (r *MailingRepository) DonorIDsWithLatestActivityIn(ctx context.Context, w mailing.Window) ([]int64, error) {
	query := `
		SELECT donor_id FROM donors
		WHERE latest_date >= $1 AND latest_date <= $2
		ORDER BY donor_id`

	ids, err := r.scanIDs(ctx, query, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest activity: %w", err)
	}
	return ids, nil
}

func (r *MailingRepository) DonorIDsWithPublication(ctx context.Context, patterns []string, donorStatus, newsletterStatus string) ([]int64, error) {
	query := `
		SELECT donor_id FROM donors
		WHERE UPPER(house_publications) LIKE ANY($1)
		  AND ($2 = '' OR donor_status = $2)
		  AND newsletter_status = $3
		ORDER BY donor_id`

	like := make([]string, len(patterns))
	for i, p := range patterns {
		like[i] = "%" + p + "%"
	}
	ids, err := r.scanIDs(ctx, query, pq.Array(like), donorStatus, newsletterStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to query publication subscribers: %w", err)
	}
	return ids, nil
}

func (r *MailingRepository) FilterMailable(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT donor_id FROM donors
		WHERE donor_id = ANY($1)
		  AND mailing_list_status = FALSE
		  AND (donor_status IS NULL OR donor_status != $2)
		ORDER BY donor_id`

	out, err := r.scanIDs(ctx, query, pq.Array(ids), mailing.DonorStatusDead)
	if err != nil {
		return nil, fmt.Errorf("failed to filter mailable donors: %w", err)
	}
	return out, nil
}

func (r *MailingRepository) ListByIDs(ctx context.Context, ids []int64) ([]*donor.Donor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + donorColumnList + ` FROM donors d WHERE d.donor_id = ANY($1) ORDER BY d.donor_id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load donors: %w", err)
	}
	defer rows.Close()

	var donors []*donor.Donor
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donor: %w", err)
		}
		donors = append(donors, d)
	}
	return donors, rows.Err()
}

func (r *MailingRepository) ListActiveMailing(ctx context.Context, asOf time.Time) ([]*donor.Donor, error) {
	query := `SELECT ` + donorColumnList + `
		FROM donors d
		WHERE d.mailing_list_status = TRUE
		  AND (d.mailing_until_date IS NULL OR d.mailing_until_date >= $1)
		ORDER BY d.donor_id`

	rows, err := r.db.QueryContext(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load active mailing list: %w", err)
	}
	defer rows.Close()

	var donors []*donor.Donor
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donor: %w", err)
		}
		donors = append(donors, d)
	}
	return donors, rows.Err()
}
