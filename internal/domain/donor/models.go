package donor

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrDonorNotFound = errors.New("donor not found")
	ErrDuplicateID   = errors.New("donor ID already exists")
)

// ValidationError reports a field-level input problem. The operation that
// produced it made no state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// BatchError aggregates per-row validation failures for an atomic batch.
// The presence of any row error rejects the whole batch.
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

// Donor is the donor/member entity. The ID is caller-assigned, positive,
// and never reassigned or reused. The summary fields are derived from the
// donor's transactions and must always equal ComputeSummary over them.
type Donor struct {
	ID          int64   `json:"donorId"`
	OldDonorID  *int64  `json:"oldDonorId,omitempty"`
	AlternateID *string `json:"alternateId,omitempty"`

	NamePrefix        *string `json:"namePrefix,omitempty"`
	FirstName         *string `json:"firstName,omitempty"`
	LastName          *string `json:"lastName,omitempty"`
	Suffix            *string `json:"suffix,omitempty"`
	FormattedFullName *string `json:"formattedFullName,omitempty"`

	SecondaryTitle     *string `json:"secondaryTitle,omitempty"`
	SecondaryFirstName *string `json:"secondaryFirstName,omitempty"`
	SecondaryLastName  *string `json:"secondaryLastName,omitempty"`
	SecondarySuffix    *string `json:"secondarySuffix,omitempty"`
	SecondaryFullName  *string `json:"secondaryFullName,omitempty"`

	AddressCompany   *string `json:"addressCompany,omitempty"`
	AddressSecondary *string `json:"addressSecondary,omitempty"`
	AddressPrimary   *string `json:"addressPrimary,omitempty"`
	City             *string `json:"city,omitempty"`
	State            *string `json:"state,omitempty"`
	ZipPlus4         *string `json:"zipPlus4,omitempty"`

	Phone      *string `json:"phone,omitempty"`
	WorkPhone  *string `json:"workPhone,omitempty"`
	CellPhone  *string `json:"cellPhone,omitempty"`
	Salutation *string `json:"salutation,omitempty"`
	Email      *string `json:"email,omitempty"`

	NewsletterStatus     *string `json:"newsletterStatus,omitempty"`
	NewsletterStatusDesc *string `json:"newsletterStatusDesc,omitempty"`
	DonorStatus          *string `json:"donorStatus,omitempty"`
	DonorStatusDesc      *string `json:"donorStatusDesc,omitempty"`

	DateAdded         *time.Time `json:"dateAdded,omitempty"`
	ExpirationDate    *time.Time `json:"expirationDate,omitempty"`
	HousePublications *string    `json:"housePublications,omitempty"`

	MailingListStatus bool       `json:"mailingListStatus"`
	MailingUntilDate  *time.Time `json:"mailingUntilDate,omitempty"`
	GiftedToDonorID   *int64     `json:"giftedToDonorId,omitempty"`

	Summary Summary `json:"summary"`
}

// CreateParams contains parameters for creating a donor. ID zero means
// "assign the next available ID".
type CreateParams struct {
	ID          int64
	OldDonorID  *int64
	AlternateID *string

	NamePrefix        *string
	FirstName         *string
	LastName          *string
	Suffix            *string
	FormattedFullName *string

	SecondaryTitle     *string
	SecondaryFirstName *string
	SecondaryLastName  *string
	SecondarySuffix    *string
	SecondaryFullName  *string

	AddressCompany   *string
	AddressSecondary *string
	AddressPrimary   *string
	City             *string
	State            *string
	ZipPlus4         *string

	Phone      *string
	WorkPhone  *string
	CellPhone  *string
	Salutation *string
	Email      *string

	NewsletterStatus     *string
	NewsletterStatusDesc *string
	DonorStatus          *string
	DonorStatusDesc      *string

	DateAdded         *time.Time
	ExpirationDate    *time.Time
	HousePublications *string

	MailingListStatus bool
	MailingUntilDate  *time.Time
	GiftedToDonorID   *int64
}

// Validate checks the required fields for donor creation.
func (p CreateParams) Validate() error {
	if p.LastName == nil || *p.LastName == "" {
		return &ValidationError{Field: "last_name", Message: "last name is required"}
	}
	if p.ID < 0 {
		return &ValidationError{Field: "donor_id", Message: "donor ID must be a positive number"}
	}
	if p.GiftedToDonorID != nil && *p.GiftedToDonorID <= 0 {
		return &ValidationError{Field: "gifted_to_donor_id", Message: "gift link must reference a positive donor ID"}
	}
	return nil
}

// UpdateParams contains parameters for updating a donor. Nil fields are
// left unchanged; the ID itself is immutable.
type UpdateParams struct {
	AlternateID *string

	NamePrefix        *string
	FirstName         *string
	LastName          *string
	Suffix            *string
	FormattedFullName *string

	SecondaryTitle     *string
	SecondaryFirstName *string
	SecondaryLastName  *string
	SecondarySuffix    *string
	SecondaryFullName  *string

	AddressCompany   *string
	AddressSecondary *string
	AddressPrimary   *string
	City             *string
	State            *string
	ZipPlus4         *string

	Phone      *string
	WorkPhone  *string
	CellPhone  *string
	Salutation *string
	Email      *string

	NewsletterStatus     *string
	NewsletterStatusDesc *string
	DonorStatus          *string
	DonorStatusDesc      *string

	DateAdded         *time.Time
	ExpirationDate    *time.Time
	HousePublications *string

	MailingListStatus *bool
	MailingUntilDate  *time.Time
	GiftedToDonorID   *int64
}

// Gift is one dated amount, as tracked by the summary views.
type Gift struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}
