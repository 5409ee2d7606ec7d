package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"donortrack/internal/domain/donor"
	"donortrack/internal/domain/search"
	"donortrack/internal/domain/transaction"
)

type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumnList = `
	t.transaction_id, t.donor_id, t.trans_date, t.trans_amount,
	t.appeal_code, t.appeal_description, t.payment_type, t.payment_method,
	t.update_batch_num, t.job_description, t.list_description`

const transactionInsert = `
	INSERT INTO transactions (
		donor_id, trans_date, trans_amount,
		appeal_code, appeal_description, payment_type, payment_method,
		update_batch_num, job_description, list_description
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING transaction_id`

func transactionInsertArgs(t *transaction.Transaction) []any {
	return []any{
		t.DonorID, t.Date, t.Amount,
		t.AppealCode, t.AppealDescription, t.PaymentType, t.PaymentMethod,
		t.UpdateBatchNum, t.JobDescription, t.ListDescription,
	}
}

func scanTransaction(row rowScanner) (*transaction.Transaction, error) {
	var t transaction.Transaction
	var strs [7]sql.NullString

	err := row.Scan(
		&t.ID, &t.DonorID, &t.Date, &t.Amount,
		&strs[0], &strs[1], &strs[2], &strs[3],
		&strs[4], &strs[5], &strs[6],
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
	assign(&t.AppealCode, strs[0])
	assign(&t.AppealDescription, strs[1])
	assign(&t.PaymentType, strs[2])
	assign(&t.PaymentMethod, strs[3])
	assign(&t.UpdateBatchNum, strs[4])
	assign(&t.JobDescription, strs[5])
	assign(&t.ListDescription, strs[6])
	return &t, nil
}

// Create inserts one transaction and writes the donor's summary in the
// same database transaction.
func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction, s donor.Summary) (*transaction.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, transactionInsert, transactionInsertArgs(t)...).Scan(&t.ID); err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, summaryUpdate, summaryUpdateArgs(t.DonorID, s)...); err != nil {
		return nil, fmt.Errorf("failed to update donor summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return t, nil
}

// CreateBatch inserts every row and every affected donor's summary in a
// single database transaction. Either all of it commits or none does.
func (r *TransactionRepository) CreateBatch(ctx context.Context, rows []*transaction.Transaction, summaries map[int64]donor.Summary) ([]*transaction.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range rows {
		if err := tx.QueryRowContext(ctx, transactionInsert, transactionInsertArgs(t)...).Scan(&t.ID); err != nil {
			return nil, fmt.Errorf("failed to insert transaction for donor %d: %w", t.DonorID, err)
		}
	}
	for id, s := range summaries {
		if _, err := tx.ExecContext(ctx, summaryUpdate, summaryUpdateArgs(id, s)...); err != nil {
			return nil, fmt.Errorf("failed to update summary for donor %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction batch: %w", err)
	}
	return rows, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumnList + ` FROM transactions t WHERE t.transaction_id = $1`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

func (r *TransactionRepository) ListByDonorID(ctx context.Context, donorID int64) ([]*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumnList + `
		FROM transactions t
		WHERE t.donor_id = $1
		ORDER BY t.trans_date DESC, t.transaction_id DESC`

	rows, err := r.db.QueryContext(ctx, query, donorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var ts []*transaction.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		ts = append(ts, t)
	}
	return ts, rows.Err()
}

// UpdateWithSummary rewrites one transaction and its donor's summary in
// a single database transaction.
func (r *TransactionRepository) UpdateWithSummary(ctx context.Context, t *transaction.Transaction, s donor.Summary) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE transactions SET
			trans_date = $2, trans_amount = $3,
			appeal_code = $4, appeal_description = $5,
			payment_type = $6, payment_method = $7,
			update_batch_num = $8, job_description = $9, list_description = $10
		WHERE transaction_id = $1`

	result, err := tx.ExecContext(ctx, query,
		t.ID, t.Date, t.Amount,
		t.AppealCode, t.AppealDescription,
		t.PaymentType, t.PaymentMethod,
		t.UpdateBatchNum, t.JobDescription, t.ListDescription,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return transaction.ErrTransactionNotFound
	}

	if _, err := tx.ExecContext(ctx, summaryUpdate, summaryUpdateArgs(t.DonorID, s)...); err != nil {
		return fmt.Errorf("failed to update donor summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction update: %w", err)
	}
	return nil
}

func (r *TransactionRepository) Search(ctx context.Context, q search.Query, limit, offset int) ([]*transaction.Transaction, error) {
	where, args, err := buildWhere(q)
	if err != nil {
		return nil, fmt.Errorf("failed to build search query: %w", err)
	}

	query := `SELECT ` + transactionColumnList + ` FROM transactions t`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += fmt.Sprintf(` ORDER BY t.trans_date DESC, t.transaction_id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search transactions: %w", err)
	}
	defer rows.Close()

	var ts []*transaction.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		ts = append(ts, t)
	}
	return ts, rows.Err()
}

func (r *TransactionRepository) CountSearch(ctx context.Context, q search.Query) (int64, error) {
	where, args, err := buildWhere(q)
	if err != nil {
		return 0, fmt.Errorf("failed to build search query: %w", err)
	}

	query := `SELECT COUNT(*) FROM transactions t`
	if where != "" {
		query += ` WHERE ` + where
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *TransactionRepository) SumSearch(ctx context.Context, q search.Query) (decimal.Decimal, error) {
	where, args, err := buildWhere(q)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build search query: %w", err)
	}

	query := `SELECT COALESCE(SUM(t.trans_amount), 0) FROM transactions t`
	if where != "" {
		query += ` WHERE ` + where
	}

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to total transactions: %w", err)
	}
	return total, nil
}

func (r *TransactionRepository) DonorIDsWithActivitySince(ctx context.Context, cutoff time.Time) ([]int64, error) {
	query := `SELECT DISTINCT donor_id FROM transactions WHERE trans_date >= $1 ORDER BY donor_id`

	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list active donors: %w", err)
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
