package transaction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"donortrack/internal/domain/donor"
	"donortrack/internal/domain/search"
)

// Service handles transaction business logic and keeps donor summaries in
// step with the transaction history.
type Service struct {
	repo      Repository
	donorRepo donor.Repository
}

func NewService(repo Repository, donorRepo donor.Repository) *Service {
	return &Service{repo: repo, donorRepo: donorRepo}
}

// AddTransaction records one transaction and folds it into the donor's
// summary. The row insert and the summary update land together.
func (s *Service) AddTransaction(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	d, err := s.donorRepo.GetByID(ctx, params.DonorID)
	if err != nil {
		if errors.Is(err, donor.ErrDonorNotFound) {
			return nil, donor.ErrDonorNotFound
		}
		return nil, fmt.Errorf("failed to load donor: %w", err)
	}

	t := &Transaction{
		DonorID:           params.DonorID,
		Date:              params.Date,
		Amount:            params.Amount,
		AppealCode:        params.AppealCode,
		AppealDescription: withDefaultDescription(params.AppealCode, params.AppealDescription),
		PaymentType:       params.PaymentType,
		PaymentMethod:     params.PaymentMethod,
		UpdateBatchNum:    params.UpdateBatchNum,
		JobDescription:    params.JobDescription,
		ListDescription:   params.ListDescription,
	}

	created, err := s.repo.Create(ctx, t, d.Summary.Apply(t.Date, t.Amount))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return created, nil
}

// AddBatch records a gift-entry batch atomically. Every row is validated
// first; any failure rejects the whole batch with per-row errors. Blank
// appeal descriptions default from the appeal code, and a blank batch
// number gets a generated one shared by all rows.
func (s *Service) AddBatch(ctx context.Context, params BatchParams) ([]*Transaction, error) {
	if len(params.Rows) == 0 {
		return nil, &ValidationError{Field: "rows", Message: "at least one batch row is required"}
	}
	if params.Date.IsZero() {
		return nil, &ValidationError{Field: "trans_date", Message: "batch date is required"}
	}

	batchNum := params.UpdateBatchNum
	if batchNum == "" {
		batchNum = uuid.New().String()
	}

	var batchErr BatchError
	rows := make([]*Transaction, 0, len(params.Rows))
	donors := make(map[int64]*donor.Donor)
	for i, row := range params.Rows {
		if row.DonorID <= 0 {
			batchErr.Rows = append(batchErr.Rows, RowError{Row: i, Message: "donor ID must be a positive number"})
			continue
		}
		if row.Amount.IsNegative() {
			batchErr.Rows = append(batchErr.Rows, RowError{Row: i, Message: "amount must not be negative"})
			continue
		}
		if _, ok := donors[row.DonorID]; !ok {
			d, err := s.donorRepo.GetByID(ctx, row.DonorID)
			if err != nil {
				if errors.Is(err, donor.ErrDonorNotFound) {
					batchErr.Rows = append(batchErr.Rows, RowError{Row: i, Message: fmt.Sprintf("donor %d not found", row.DonorID)})
					continue
				}
				return nil, fmt.Errorf("failed to load donor %d: %w", row.DonorID, err)
			}
			donors[row.DonorID] = d
		}

		date := params.Date
		if row.Date != nil {
			date = *row.Date
		}
		paymentMethod := params.PaymentMethod
		rows = append(rows, &Transaction{
			DonorID:           row.DonorID,
			Date:              date,
			Amount:            row.Amount,
			AppealCode:        row.AppealCode,
			AppealDescription: withDefaultDescription(row.AppealCode, row.AppealDescription),
			PaymentType:       row.PaymentType,
			PaymentMethod:     optional(paymentMethod),
			UpdateBatchNum:    &batchNum,
			JobDescription:    row.JobDescription,
			ListDescription:   row.ListDescription,
		})
	}
	if len(batchErr.Rows) > 0 {
		return nil, &batchErr
	}

	summaries := make(map[int64]donor.Summary, len(donors))
	for id, d := range donors {
		summaries[id] = d.Summary
	}
	for _, t := range rows {
		summaries[t.DonorID] = summaries[t.DonorID].Apply(t.Date, t.Amount)
	}

	created, err := s.repo.CreateBatch(ctx, rows, summaries)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction batch: %w", err)
	}

	log.Printf("Recorded batch %s: %d transactions across %d donors", batchNum, len(created), len(summaries))
	return created, nil
}

func (s *Service) GetTransaction(ctx context.Context, id int64) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// ListByDonor returns a donor's full transaction history, newest first.
func (s *Service) ListByDonor(ctx context.Context, donorID int64) ([]*Transaction, error) {
	if donorID <= 0 {
		return nil, &ValidationError{Field: "donor_id", Message: "donor ID must be a positive number"}
	}
	ts, err := s.repo.ListByDonorID(ctx, donorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return ts, nil
}

// EditTransaction rewrites a transaction's fields and rebuilds the donor's
// summary from the post-edit history. An incremental fold cannot undo a
// changed date or amount, so the summary is recomputed from scratch.
func (s *Service) EditTransaction(ctx context.Context, id int64, params UpdateParams) (*Transaction, error) {
	t, err := s.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Date != nil {
		if params.Date.IsZero() {
			return nil, &ValidationError{Field: "trans_date", Message: "transaction date is required"}
		}
		t.Date = *params.Date
	}
	if params.Amount != nil {
		if params.Amount.IsNegative() {
			return nil, &ValidationError{Field: "trans_amount", Message: "amount must not be negative"}
		}
		t.Amount = *params.Amount
	}
	if params.AppealCode != nil {
		t.AppealCode = params.AppealCode
	}
	if params.AppealDescription != nil {
		t.AppealDescription = params.AppealDescription
	}
	if params.PaymentType != nil {
		t.PaymentType = params.PaymentType
	}
	if params.PaymentMethod != nil {
		t.PaymentMethod = params.PaymentMethod
	}
	if params.UpdateBatchNum != nil {
		t.UpdateBatchNum = params.UpdateBatchNum
	}
	if params.JobDescription != nil {
		t.JobDescription = params.JobDescription
	}
	if params.ListDescription != nil {
		t.ListDescription = params.ListDescription
	}

	history, err := s.repo.ListByDonorID(ctx, t.DonorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	gifts := make([]donor.Gift, 0, len(history))
	for _, h := range history {
		if h.ID == t.ID {
			gifts = append(gifts, donor.Gift{Date: t.Date, Amount: t.Amount})
		} else {
			gifts = append(gifts, donor.Gift{Date: h.Date, Amount: h.Amount})
		}
	}

	if err := s.repo.UpdateWithSummary(ctx, t, donor.ComputeSummary(gifts)); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return t, nil
}

// SearchResult is one page of transaction search results. TotalAmount
// covers every matching row, not just the page shown.
type SearchResult struct {
	Transactions []*Transaction  `json:"transactions"`
	Page         int             `json:"page"`
	TotalPages   int             `json:"totalPages"`
	TotalCount   int64           `json:"totalCount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Warnings     []string        `json:"warnings,omitempty"`
}

// Search runs a transaction-rooted search with the fixed page size.
func (s *Service) Search(ctx context.Context, c search.TransactionCriteria, page int) (*SearchResult, error) {
	if page < 1 {
		page = 1
	}

	q := c.Normalize()
	if !q.AnyCriterion {
		return nil, &ValidationError{Field: "criteria", Message: "at least one search criterion is required"}
	}

	count, err := s.repo.CountSearch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	result := &SearchResult{
		Page:       page,
		TotalPages: search.TotalPages(count),
		TotalCount: count,
		Warnings:   q.Warnings,
	}
	if count == 0 {
		return result, nil
	}

	total, err := s.repo.SumSearch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to total transactions: %w", err)
	}
	result.TotalAmount = total

	ts, err := s.repo.Search(ctx, q, search.PageSize, search.Offset(page))
	if err != nil {
		return nil, fmt.Errorf("failed to search transactions: %w", err)
	}
	result.Transactions = ts
	return result, nil
}

// SearchAll fetches every transaction matched by the criteria, page by
// page. Used by the export path.
func (s *Service) SearchAll(ctx context.Context, c search.TransactionCriteria) ([]*Transaction, error) {
	q := c.Normalize()
	if !q.AnyCriterion {
		return nil, &ValidationError{Field: "criteria", Message: "at least one search criterion is required"}
	}

	var all []*Transaction
	for offset := 0; ; offset += search.PageSize {
		page, err := s.repo.Search(ctx, q, search.PageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to search transactions: %w", err)
		}
		all = append(all, page...)
		if len(page) < search.PageSize {
			return all, nil
		}
	}
}

// RefreshSummaries recomputes stored summaries from scratch, in batches.
// A positive cutoffDays restricts the pass to donors with activity in the
// cutoff window; zero or negative means every donor. The pass is
// idempotent; donors whose stored summary already matches are rewritten
// all the same.
func (s *Service) RefreshSummaries(ctx context.Context, cutoffDays, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 50
	}

	var ids []int64
	var err error
	if cutoffDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -cutoffDays)
		ids, err = s.repo.DonorIDsWithActivitySince(ctx, cutoff)
	} else {
		ids, err = s.donorRepo.ListIDs(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to list donors for refresh: %w", err)
	}

	refreshed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}

		history, err := s.repo.ListByDonorID(ctx, id)
		if err != nil {
			log.Printf("Summary refresh: failed to list transactions for donor %d: %v", id, err)
			continue
		}
		gifts := make([]donor.Gift, 0, len(history))
		for _, h := range history {
			gifts = append(gifts, donor.Gift{Date: h.Date, Amount: h.Amount})
		}
		if err := s.donorRepo.UpdateSummary(ctx, id, donor.ComputeSummary(gifts)); err != nil {
			log.Printf("Summary refresh: failed to update donor %d: %v", id, err)
			continue
		}

		refreshed++
		if refreshed%batchSize == 0 {
			log.Printf("Summary refresh: %d/%d donors done", refreshed, len(ids))
		}
	}

	log.Printf("Summary refresh complete: %d/%d donors updated", refreshed, len(ids))
	return refreshed, nil
}

func withDefaultDescription(code, desc *string) *string {
	if desc != nil && *desc != "" {
		return desc
	}
	if code != nil {
		if d, ok := AppealDescriptions[*code]; ok {
			return &d
		}
	}
	return desc
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
