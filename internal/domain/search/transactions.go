package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCriteria holds the raw inputs of a transaction-rooted search.
// Unlike the donor search, date and amount bounds arrive as individual
// fields rather than "X to Y" ranges.
type TransactionCriteria struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	MinAmount string `json:"min_amount"`
	MaxAmount string `json:"max_amount"`

	AppealCode      string `json:"appeal_code"`
	PaymentType     string `json:"payment_type"`
	UpdateBatchNum  string `json:"update_batch_num"`
	JobDescription  string `json:"job_description"`
	ListDescription string `json:"list_description"`
}

// Normalize converts the raw criteria into a Query. Bad date or amount
// bounds degrade to warnings with the predicate dropped.
func (c TransactionCriteria) Normalize() Query {
	var q Query

	bound := func(f Field, raw, which string) {
		v := strings.TrimSpace(raw)
		if v == "" {
			return
		}
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			q.Warnings = append(q.Warnings, fmt.Sprintf("invalid %s date %q, expected YYYY-MM-DD; bound ignored", which, v))
			return
		}
		p := Range{Field: f}
		if which == "start" {
			p.Min = t
		} else {
			p.Max = t
		}
		q.add(p)
	}
	bound(FieldTransDate, c.StartDate, "start")
	bound(FieldTransDate, c.EndDate, "end")

	amount := func(raw, which string) {
		v := strings.TrimSpace(raw)
		if v == "" {
			return
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			q.Warnings = append(q.Warnings, fmt.Sprintf("invalid %s amount %q; bound ignored", which, v))
			return
		}
		p := Range{Field: FieldTransAmount}
		if which == "minimum" {
			p.Min = d
		} else {
			p.Max = d
		}
		q.add(p)
	}
	amount(c.MinAmount, "minimum")
	amount(c.MaxAmount, "maximum")

	addSubstring := func(f Field, raw string) {
		if v := strings.TrimSpace(raw); v != "" {
			q.add(Substring{Field: f, Value: v})
		}
	}
	addSubstring(FieldAppealCode, c.AppealCode)
	addSubstring(FieldPaymentType, c.PaymentType)
	addSubstring(FieldUpdateBatchNum, c.UpdateBatchNum)
	addSubstring(FieldJobDescription, c.JobDescription)
	addSubstring(FieldListDescription, c.ListDescription)

	return q
}
