package donor

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds the derived giving history for a donor: the latest gift,
// the largest gift, the first (inception) gift, the lifetime total, and
// response counts. All fields are fully determined by the donor's
// transaction set, so recomputing from scratch always yields the same
// values regardless of the order entries were recorded in.
type Summary struct {
	Latest    *Gift `json:"latest,omitempty"`
	Largest   *Gift `json:"largest,omitempty"`
	Inception *Gift `json:"inception,omitempty"`

	TotalAmount    decimal.Decimal `json:"totalAmount"`
	TotalResponses int             `json:"totalResponses"`
	GiftResponses  int             `json:"giftResponses"`
}

// Apply folds one dated amount into the summary. Every view moves on a
// deterministic total order so that folding a set of gifts in any
// sequence converges on the same summary: the latest view prefers the
// newer date, breaking equal dates by greater amount; the largest view
// prefers the greater amount, breaking equal amounts by earlier date;
// the inception view prefers the earlier date, breaking equal dates by
// lesser amount.
func (s Summary) Apply(date time.Time, amount decimal.Decimal) Summary {
	g := Gift{Date: date, Amount: amount}

	if s.Latest == nil ||
		date.After(s.Latest.Date) ||
		(date.Equal(s.Latest.Date) && amount.GreaterThan(s.Latest.Amount)) {
		s.Latest = &g
	}
	if s.Largest == nil ||
		amount.GreaterThan(s.Largest.Amount) ||
		(amount.Equal(s.Largest.Amount) && date.Before(s.Largest.Date)) {
		s.Largest = &g
	}
	if s.Inception == nil ||
		date.Before(s.Inception.Date) ||
		(date.Equal(s.Inception.Date) && amount.LessThan(s.Inception.Amount)) {
		s.Inception = &g
	}

	s.TotalAmount = s.TotalAmount.Add(amount)
	s.TotalResponses++
	if amount.GreaterThan(decimal.Zero) {
		s.GiftResponses++
	}
	return s
}

// ComputeSummary rebuilds a summary from the full set of gifts by
// folding Apply over them. Keeping this a literal fold is what
// guarantees the incremental add path and the rebuild path can never
// disagree.
func ComputeSummary(gifts []Gift) Summary {
	var s Summary
	for _, g := range gifts {
		s = s.Apply(g.Date, g.Amount)
	}
	return s
}
