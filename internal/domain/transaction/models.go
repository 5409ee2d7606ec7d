package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// ValidationError reports a field-level input problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// BatchError aggregates per-row failures for an atomic batch add. The
// presence of any row error rejects the whole batch.
type BatchError struct {
	Rows []RowError
}

type RowError struct {
	Row     int
	Message string
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch rejected: %d row(s) failed validation", len(e.Rows))
}

// AppealDescriptions maps single-letter appeal codes to their default
// descriptions, applied when a batch row leaves the description blank.
var AppealDescriptions = map[string]string{
	"N": "SUBS P.S. REPORT",
	"M": "PURCH MATERIALS ETF",
	"G": "EAGLE TRUST FUND",
	"L": "EFELDF (TAX-DEDUCTIBLE)",
	"E": "PS EAGLES",
	"C": "REG EAGLE COUNCIL",
	"O": "PURCH MATERIALS EFELDF",
}

// Transaction is one recorded donation, payment, or membership response.
// Amounts are non-negative; a zero amount records a response without a
// gift.
type Transaction struct {
	ID      int64 `json:"id"`
	DonorID int64 `json:"donorId"`

	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`

	AppealCode        *string `json:"appealCode,omitempty"`
	AppealDescription *string `json:"appealDescription,omitempty"`
	PaymentType       *string `json:"paymentType,omitempty"`
	PaymentMethod     *string `json:"paymentMethod,omitempty"`
	UpdateBatchNum    *string `json:"updateBatchNum,omitempty"`
	JobDescription    *string `json:"jobDescription,omitempty"`
	ListDescription   *string `json:"listDescription,omitempty"`
}

// CreateParams contains parameters for recording one transaction.
type CreateParams struct {
	DonorID int64
	Date    time.Time
	Amount  decimal.Decimal

	AppealCode        *string
	AppealDescription *string
	PaymentType       *string
	PaymentMethod     *string
	UpdateBatchNum    *string
	JobDescription    *string
	ListDescription   *string
}

func (p CreateParams) Validate() error {
	if p.DonorID <= 0 {
		return &ValidationError{Field: "donor_id", Message: "donor ID must be a positive number"}
	}
	if p.Date.IsZero() {
		return &ValidationError{Field: "trans_date", Message: "transaction date is required"}
	}
	if p.Amount.IsNegative() {
		return &ValidationError{Field: "trans_amount", Message: "amount must not be negative"}
	}
	return nil
}

// UpdateParams contains parameters for editing a transaction. Nil fields
// are left unchanged.
type UpdateParams struct {
	Date   *time.Time
	Amount *decimal.Decimal

	AppealCode        *string
	AppealDescription *string
	PaymentType       *string
	PaymentMethod     *string
	UpdateBatchNum    *string
	JobDescription    *string
	ListDescription   *string
}

// BatchParams describes a gift-entry batch: shared header values plus one
// row per donor response. Row-level fields override the header.
type BatchParams struct {
	Date           time.Time
	UpdateBatchNum string
	PaymentMethod  string
	Rows           []BatchRow
}

// BatchRow is one line of a gift-entry batch.
type BatchRow struct {
	DonorID int64
	Amount  decimal.Decimal

	Date              *time.Time
	AppealCode        *string
	AppealDescription *string
	PaymentType       *string
	JobDescription    *string
	ListDescription   *string
}
