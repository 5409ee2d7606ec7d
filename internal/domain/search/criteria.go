package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PageSize is the fixed number of rows per result page.
const PageSize = 50

// Exclusion markers matched (case-insensitively, whole value) by the
// always-on filter toggles.
const (
	DeceasedMarker = "DECEASED OR UNDELIVERABLE"
	NonDonorMarker = "NON DONOR (DO NOT SOLICIT)"
)

const dateLayout = "2006-01-02"

// rangeSeparator splits "X to Y" range inputs.
const rangeSeparator = " to "

// Criteria holds the raw string inputs of a donor search, exactly as
// submitted. Normalize turns them into typed predicates; empty fields
// contribute nothing.
type Criteria struct {
	DonorID     string `json:"donor_id"`
	AlternateID string `json:"alternate_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`

	// Comma-separated multi-value fields.
	City             string `json:"city"`
	State            string `json:"state"`
	Zip              string `json:"zip_code"`
	DonorStatus      string `json:"donor_status"`
	NewsletterStatus string `json:"newsletter_status"`

	// "X to Y" range fields; a bare value means an exact match.
	TotalAmountRange    string `json:"total_amount_range"`
	DateAddedRange      string `json:"date_added_range"`
	ExpirationDateRange string `json:"expiration_date_range"`

	// Transaction-level fields; any of these forces the join.
	TransDate       string `json:"trans_date"`
	TransAmount     string `json:"trans_amount"`
	AppealCode      string `json:"appeal_code"`
	PaymentType     string `json:"payment_type"`
	UpdateBatchNum  string `json:"update_batch_num"`
	JobDescription  string `json:"job_description"`
	ListDescription string `json:"list_description"`

	// Filter toggles. These never count as search criteria.
	ExcludeDeceased  bool `json:"exclude_deceased"`
	ExcludeNonDonors bool `json:"exclude_non_donors"`
}

// ParseMultiValues splits a comma-separated field into trimmed, non-empty
// values. An empty input yields nil.
func ParseMultiValues(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ParseDateRange parses a date or "X to Y" date range. Either side of a
// range may be blank for an unbounded side. A single value sets both
// bounds. Any unparsable token drops the whole range.
func ParseDateRange(s string) (min, max *time.Time) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if strings.Contains(s, rangeSeparator) {
		parts := strings.SplitN(s, rangeSeparator, 2)
		lo, hi := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if lo != "" {
			t, err := time.Parse(dateLayout, lo)
			if err != nil {
				return nil, nil
			}
			min = &t
		}
		if hi != "" {
			t, err := time.Parse(dateLayout, hi)
			if err != nil {
				return nil, nil
			}
			max = &t
		}
		return min, max
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, nil
	}
	return &t, &t
}

// ParseAmountRange parses an amount or "X to Y" amount range with the same
// rules as ParseDateRange.
func ParseAmountRange(s string) (min, max *decimal.Decimal) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if strings.Contains(s, rangeSeparator) {
		parts := strings.SplitN(s, rangeSeparator, 2)
		lo, hi := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if lo != "" {
			d, err := decimal.NewFromString(lo)
			if err != nil {
				return nil, nil
			}
			min = &d
		}
		if hi != "" {
			d, err := decimal.NewFromString(hi)
			if err != nil {
				return nil, nil
			}
			max = &d
		}
		return min, max
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, nil
	}
	return &d, &d
}

// Normalize converts the raw criteria into a Query. Unparsable range
// bounds are silently dropped; unparsable transaction date/amount
// literals surface as warnings and are dropped.
func (c Criteria) Normalize() Query {
	var q Query

	if c.ExcludeDeceased {
		q.Filters = append(q.Filters, NotMatch{Field: FieldNewsletterStatusDesc, Value: DeceasedMarker})
	}
	if c.ExcludeNonDonors {
		q.Filters = append(q.Filters, NotMatch{Field: FieldDonorStatusDesc, Value: NonDonorMarker})
	}

	addSubstring := func(f Field, raw string) {
		if v := strings.TrimSpace(raw); v != "" {
			q.add(Substring{Field: f, Value: v})
		}
	}
	addMembership := func(f Field, raw string) {
		if vs := ParseMultiValues(raw); len(vs) > 0 {
			q.add(Membership{Field: f, Values: vs})
		}
	}

	addSubstring(FieldAlternateID, c.AlternateID)
	addSubstring(FieldFirstName, c.FirstName)
	addSubstring(FieldLastName, c.LastName)
	addSubstring(FieldEmail, c.Email)

	addMembership(FieldCity, c.City)
	addMembership(FieldState, c.State)
	addMembership(FieldZip, c.Zip)
	addMembership(FieldDonorStatus, c.DonorStatus)
	addMembership(FieldNewsletterStatus, c.NewsletterStatus)

	if v := strings.TrimSpace(c.Phone); v != "" {
		q.add(Or{Preds: []Predicate{
			Substring{Field: FieldPhone, Value: v},
			Substring{Field: FieldWorkPhone, Value: v},
			Substring{Field: FieldCellPhone, Value: v},
		}})
	}

	if min, max := ParseAmountRange(c.TotalAmountRange); min != nil || max != nil {
		q.add(rangePredicate(FieldTotalAmount, min, max))
	}
	if min, max := ParseDateRange(c.DateAddedRange); min != nil || max != nil {
		q.add(dateRangePredicate(FieldDateAdded, min, max))
	}
	if min, max := ParseDateRange(c.ExpirationDateRange); min != nil || max != nil {
		q.add(dateRangePredicate(FieldExpirationDate, min, max))
	}

	if v := strings.TrimSpace(c.TransDate); v != "" {
		if t, err := time.Parse(dateLayout, v); err == nil {
			q.add(Equality{Field: FieldTransDate, Value: t})
		} else {
			q.Warnings = append(q.Warnings, fmt.Sprintf("invalid transaction date %q, expected YYYY-MM-DD; criterion ignored", v))
		}
	}
	if v := strings.TrimSpace(c.TransAmount); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			q.add(Equality{Field: FieldTransAmount, Value: d})
		} else {
			q.Warnings = append(q.Warnings, fmt.Sprintf("invalid transaction amount %q; criterion ignored", v))
		}
	}

	addSubstring(FieldAppealCode, c.AppealCode)
	addSubstring(FieldPaymentType, c.PaymentType)
	addSubstring(FieldUpdateBatchNum, c.UpdateBatchNum)
	addSubstring(FieldJobDescription, c.JobDescription)
	addSubstring(FieldListDescription, c.ListDescription)

	return q
}

func rangePredicate(f Field, min, max *decimal.Decimal) Range {
	p := Range{Field: f}
	if min != nil {
		p.Min = *min
	}
	if max != nil {
		p.Max = *max
	}
	return p
}

func dateRangePredicate(f Field, min, max *time.Time) Range {
	p := Range{Field: f}
	if min != nil {
		p.Min = *min
	}
	if max != nil {
		p.Max = *max
	}
	return p
}

// SetField assigns a single named criterion, used by refine-search to fold
// one new field into an existing criteria set. Unknown names are an error.
func (c *Criteria) SetField(name, value string) error {
	switch name {
	case "donor_id":
		c.DonorID = value
	case "alternate_id":
		c.AlternateID = value
	case "first_name":
		c.FirstName = value
	case "last_name":
		c.LastName = value
	case "email":
		c.Email = value
	case "phone":
		c.Phone = value
	case "city":
		c.City = value
	case "state":
		c.State = value
	case "zip_code":
		c.Zip = value
	case "donor_status":
		c.DonorStatus = value
	case "newsletter_status":
		c.NewsletterStatus = value
	case "total_amount_range":
		c.TotalAmountRange = value
	case "date_added_range":
		c.DateAddedRange = value
	case "expiration_date_range":
		c.ExpirationDateRange = value
	case "trans_date":
		c.TransDate = value
	case "trans_amount":
		c.TransAmount = value
	case "appeal_code":
		c.AppealCode = value
	case "payment_type":
		c.PaymentType = value
	case "update_batch_num":
		c.UpdateBatchNum = value
	case "job_description":
		c.JobDescription = value
	case "list_description":
		c.ListDescription = value
	default:
		return fmt.Errorf("unknown search field %q", name)
	}
	return nil
}

// TotalPages returns the page count for n rows at PageSize rows per page.
func TotalPages(n int64) int {
	if n <= 0 {
		return 0
	}
	return int((n + PageSize - 1) / PageSize)
}

// Offset returns the row offset for a 1-based page number.
func Offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}
