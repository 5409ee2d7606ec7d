package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"donortrack/internal/domain/donor"
	"donortrack/internal/domain/search"
)

type DonorRepository struct {
	db *DB
}

func NewDonorRepository(db *DB) *DonorRepository {
	return &DonorRepository{db: db}
}

const donorColumnList = `
	d.donor_id, d.old_donor_id, d.alternate_id,
	d.name_prefix, d.first_name, d.last_name, d.suffix, d.formatted_full_name,
	d.secondary_title, d.secondary_first_name, d.secondary_last_name, d.secondary_suffix, d.secondary_full_name,
	d.address_company, d.address_secondary, d.address_primary, d.city, d.state, d.zip_plus4,
	d.phone, d.work_phone, d.cell_phone, d.salutation, d.email_address,
	d.newsletter_status, d.newsletter_status_desc, d.donor_status, d.donor_status_desc,
	d.date_added, d.expiration_date, d.house_publications,
	d.mailing_list_status, d.mailing_until_date, d.gifted_to_donor_id,
	d.latest_date, d.latest_amount, d.largest_date, d.largest_amount,
	d.inception_date, d.inception_amount,
	d.total_dollar_amount, d.total_responses_includes_zero, d.total_responses_non_zero`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonor(row rowScanner) (*donor.Donor, error) {
	var d donor.Donor
	var oldID, giftedTo sql.NullInt64
	var strs [26]sql.NullString
	var dateAdded, expiration, mailingUntil sql.NullTime
	var latestDate, largestDate, inceptionDate sql.NullTime
	var latestAmt, largestAmt, inceptionAmt decimal.NullDecimal

	err := row.Scan(
		&d.ID, &oldID, &strs[0],
		&strs[1], &strs[2], &strs[3], &strs[4], &strs[5],
		&strs[6], &strs[7], &strs[8], &strs[9], &strs[10],
		&strs[11], &strs[12], &strs[13], &strs[14], &strs[15], &strs[16],
		&strs[17], &strs[18], &strs[19], &strs[20], &strs[21],
		&strs[22], &strs[23], &strs[24], &strs[25],
		&dateAdded, &expiration, &d.HousePublications,
		&d.MailingListStatus, &mailingUntil, &giftedTo,
		&latestDate, &latestAmt, &largestDate, &largestAmt,
		&inceptionDate, &inceptionAmt,
		&d.Summary.TotalAmount, &d.Summary.TotalResponses, &d.Summary.GiftResponses,
	)
	if err != nil {
		return nil, err
	}

	assign := func(dst **string, src sql.NullString) {
		if src.Valid {
			v := src.String
			*dst = &v
		}
	}
	assign(&d.AlternateID, strs[0])
	assign(&d.NamePrefix, strs[1])
	assign(&d.FirstName, strs[2])
	assign(&d.LastName, strs[3])
	assign(&d.Suffix, strs[4])
	assign(&d.FormattedFullName, strs[5])
	assign(&d.SecondaryTitle, strs[6])
	assign(&d.SecondaryFirstName, strs[7])
	assign(&d.SecondaryLastName, strs[8])
	assign(&d.SecondarySuffix, strs[9])
	assign(&d.SecondaryFullName, strs[10])
	assign(&d.AddressCompany, strs[11])
	assign(&d.AddressSecondary, strs[12])
	assign(&d.AddressPrimary, strs[13])
	assign(&d.City, strs[14])
	assign(&d.State, strs[15])
	assign(&d.ZipPlus4, strs[16])
	assign(&d.Phone, strs[17])
	assign(&d.WorkPhone, strs[18])
	assign(&d.CellPhone, strs[19])
	assign(&d.Salutation, strs[20])
	assign(&d.Email, strs[21])
	assign(&d.NewsletterStatus, strs[22])
	assign(&d.NewsletterStatusDesc, strs[23])
	assign(&d.DonorStatus, strs[24])
	assign(&d.DonorStatusDesc, strs[25])

	if oldID.Valid {
		v := oldID.Int64
		d.OldDonorID = &v
	}
	if giftedTo.Valid {
		v := giftedTo.Int64
		d.GiftedToDonorID = &v
	}
	if dateAdded.Valid {
		v := dateAdded.Time
		d.DateAdded = &v
	}
	if expiration.Valid {
		v := expiration.Time
		d.ExpirationDate = &v
	}
	if mailingUntil.Valid {
		v := mailingUntil.Time
		d.MailingUntilDate = &v
	}
	if latestDate.Valid && latestAmt.Valid {
		d.Summary.Latest = &donor.Gift{Date: latestDate.Time, Amount: latestAmt.Decimal}
	}
	if largestDate.Valid && largestAmt.Valid {
		d.Summary.Largest = &donor.Gift{Date: largestDate.Time, Amount: largestAmt.Decimal}
	}
	if inceptionDate.Valid && inceptionAmt.Valid {
		d.Summary.Inception = &donor.Gift{Date: inceptionDate.Time, Amount: inceptionAmt.Decimal}
	}
	return &d, nil
}

const donorInsert = `
	INSERT INTO donors (
		donor_id, old_donor_id, alternate_id,
		name_prefix, first_name, last_name, suffix, formatted_full_name,
		secondary_title, secondary_first_name, secondary_last_name, secondary_suffix, secondary_full_name,
		address_company, address_secondary, address_primary, city, state, zip_plus4,
		phone, work_phone, cell_phone, salutation, email_address,
		newsletter_status, newsletter_status_desc, donor_status, donor_status_desc,
		date_added, expiration_date, house_publications,
		mailing_list_status, mailing_until_date, gifted_to_donor_id
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		$18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34
	)`

func donorInsertArgs(d *donor.Donor) []any {
	return []any{
		d.ID, d.OldDonorID, d.AlternateID,
		d.NamePrefix, d.FirstName, d.LastName, d.Suffix, d.FormattedFullName,
		d.SecondaryTitle, d.SecondaryFirstName, d.SecondaryLastName, d.SecondarySuffix, d.SecondaryFullName,
		d.AddressCompany, d.AddressSecondary, d.AddressPrimary, d.City, d.State, d.ZipPlus4,
		d.Phone, d.WorkPhone, d.CellPhone, d.Salutation, d.Email,
		d.NewsletterStatus, d.NewsletterStatusDesc, d.DonorStatus, d.DonorStatusDesc,
		d.DateAdded, d.ExpirationDate, d.HousePublications,
		d.MailingListStatus, d.MailingUntilDate, d.GiftedToDonorID,
	}
}

func (r *DonorRepository) Create(ctx context.Context, d *donor.Donor) error {
	if _, err := r.db.ExecContext(ctx, donorInsert, donorInsertArgs(d)...); err != nil {
		return fmt.Errorf("failed to insert donor: %w", err)
	}
	return nil
}

func (r *DonorRepository) CreateBatch(ctx context.Context, donors []*donor.Donor) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, d := range donors {
		if _, err := tx.ExecContext(ctx, donorInsert, donorInsertArgs(d)...); err != nil {
			return fmt.Errorf("failed to insert donor %d: %w", d.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit donor batch: %w", err)
	}
	return nil
}

func (r *DonorRepository) GetByID(ctx context.Context, id int64) (*donor.Donor, error) {
	query := `SELECT ` + donorColumnList + ` FROM donors d WHERE d.donor_id = $1`

	d, err := scanDonor(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, donor.ErrDonorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get donor: %w", err)
	}
	return d, nil
}

func (r *DonorRepository) Update(ctx context.Context, d *donor.Donor) error {
	query := `
		UPDATE donors SET
			alternate_id = $2,
			name_prefix = $3, first_name = $4, last_name = $5, suffix = $6, formatted_full_name = $7,
			secondary_title = $8, secondary_first_name = $9, secondary_last_name = $10,
			secondary_suffix = $11, secondary_full_name = $12,
			address_company = $13, address_secondary = $14, address_primary = $15,
			city = $16, state = $17, zip_plus4 = $18,
			phone = $19, work_phone = $20, cell_phone = $21, salutation = $22, email_address = $23,
			newsletter_status = $24, newsletter_status_desc = $25, donor_status = $26, donor_status_desc = $27,
			date_added = $28, expiration_date = $29, house_publications = $30,
			mailing_list_status = $31, mailing_until_date = $32, gifted_to_donor_id = $33
		WHERE donor_id = $1`

	result, err := r.db.ExecContext(ctx, query,
		d.ID, d.AlternateID,
		d.NamePrefix, d.FirstName, d.LastName, d.Suffix, d.FormattedFullName,
		d.SecondaryTitle, d.SecondaryFirstName, d.SecondaryLastName,
		d.SecondarySuffix, d.SecondaryFullName,
		d.AddressCompany, d.AddressSecondary, d.AddressPrimary,
		d.City, d.State, d.ZipPlus4,
		d.Phone, d.WorkPhone, d.CellPhone, d.Salutation, d.Email,
		d.NewsletterStatus, d.NewsletterStatusDesc, d.DonorStatus, d.DonorStatusDesc,
		d.DateAdded, d.ExpirationDate, d.HousePublications,
		d.MailingListStatus, d.MailingUntilDate, d.GiftedToDonorID,
	)
	if err != nil {
		return fmt.Errorf("failed to update donor: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return donor.ErrDonorNotFound
	}
	return nil
}

func (r *DonorRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM donors WHERE donor_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check donor existence: %w", err)
	}
	return exists, nil
}

func (r *DonorRepository) NextID(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(donor_id), 0) + 1 FROM donors`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next donor ID: %w", err)
	}
	return next, nil
}

func (r *DonorRepository) Search(ctx context.Context, q search.Query, limit, offset int) ([]*donor.Donor, error) {
	where, args, err := buildWhere(q)
	if err != nil {
		return nil, fmt.Errorf("failed to build search query: %w", err)
	}

	query := `SELECT DISTINCT ` + donorColumnList + ` FROM donors d`
	if q.JoinTransactions {
		query += ` JOIN transactions t ON t.donor_id = d.donor_id`
	}
	if where != "" {
		query += ` WHERE ` + where
	}
	query += fmt.Sprintf(` ORDER BY d.donor_id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search donors: %w", err)
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

func (r *DonorRepository) CountSearch(ctx context.Context, q search.Query) (int64, error) {
	where, args, err := buildWhere(q)
	if err != nil {
		return 0, fmt.Errorf("failed to build search query: %w", err)
	}

	query := `SELECT COUNT(DISTINCT d.donor_id) FROM donors d`
	if q.JoinTransactions {
		query += ` JOIN transactions t ON t.donor_id = d.donor_id`
	}
	if where != "" {
		query += ` WHERE ` + where
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count donors: %w", err)
	}
	return count, nil
}

const summaryUpdate = `
	UPDATE donors SET
		latest_date = $2, latest_amount = $3,
		largest_date = $4, largest_amount = $5,
		inception_date = $6, inception_amount = $7,
		total_dollar_amount = $8,
		total_responses_includes_zero = $9,
		total_responses_non_zero = $10
	WHERE donor_id = $1`

func summaryUpdateArgs(id int64, s donor.Summary) []any {
	var latestDate, largestDate, inceptionDate *time.Time
	var latestAmt, largestAmt, inceptionAmt *decimal.Decimal
	if s.Latest != nil {
		latestDate, latestAmt = &s.Latest.Date, &s.Latest.Amount
	}
	if s.Largest != nil {
		largestDate, largestAmt = &s.Largest.Date, &s.Largest.Amount
	}
	if s.Inception != nil {
		inceptionDate, inceptionAmt = &s.Inception.Date, &s.Inception.Amount
	}
	return []any{
		id, latestDate, latestAmt, largestDate, largestAmt, inceptionDate, inceptionAmt,
		s.TotalAmount, s.TotalResponses, s.GiftResponses,
	}
}

func (r *DonorRepository) UpdateSummary(ctx context.Context, id int64, s donor.Summary) error {
	result, err := r.db.ExecContext(ctx, summaryUpdate, summaryUpdateArgs(id, s)...)
	if err != nil {
		return fmt.Errorf("failed to update donor summary: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return donor.ErrDonorNotFound
	}
	return nil
}

func (r *DonorRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT donor_id FROM donors ORDER BY donor_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list donor IDs: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan donor ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
