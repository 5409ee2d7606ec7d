package mailing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MajorDonorThreshold is the minimum single-gift amount for the
// historical major-donor rule.
var MajorDonorThreshold = decimal.NewFromInt(100)

// PublicationPatterns are the legacy formatting variants of the house
// publication; any one of them counts as a subscription match.
var PublicationPatterns = []string{
	"SUBS P.S. REPORT",
	"P.S. REPORT",
	"PS REPORT",
	"P.S.R.",
	"PSR",
}

// Status code sets used by the eligibility rules.
const (
	NewsletterActive  = "A"
	NewsletterEagles  = "E"
	DonorStatusLife   = "L"
	DonorStatusDead   = "D"
	DonorStatusMember = "M"
	DonorStatusNon    = "N"
)

// ValidationError reports a bad eligibility parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Window is an inclusive date range. A zero End means open-ended.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Valid() bool {
	return !w.Start.IsZero() && (w.End.IsZero() || !w.End.Before(w.Start))
}

// Params configures one eligibility run. Zero-value defaults: End is
// today, HistoricalStart is three years before Start.
type Params struct {
	// Title labels the run and prefixes the export filename.
	Title string

	Start           time.Time
	End             time.Time
	HistoricalStart time.Time

	// Exclusion suppresses historical major donors whose most recent
	// activity falls inside it. Optional.
	Exclusion *Window
}

func (p *Params) defaults(now time.Time) {
	if p.End.IsZero() {
		p.End = now
	}
	if p.HistoricalStart.IsZero() {
		p.HistoricalStart = p.Start.AddDate(-3, 0, 0)
	}
}

func (p Params) validate() error {
	if p.Start.IsZero() {
		return &ValidationError{Field: "start_date", Message: "start date is required"}
	}
	if p.End.Before(p.Start) {
		return &ValidationError{Field: "end_date", Message: "end date must not precede start date"}
	}
	return nil
}

// Result is the outcome of one eligibility run: the final donor-ID set
// plus per-rule contribution counts for reporting.
type Result struct {
	DonorIDs []int64 `json:"donorIds"`

	RecentActivityCount    int `json:"recentActivityCount"`
	MajorDonorCount        int `json:"majorDonorCount"`
	LifePublicationCount   int `json:"lifePublicationCount"`
	EaglesPublicationCount int `json:"eaglesPublicationCount"`

	// RuleErrors lists rules that failed and contributed an empty set.
	RuleErrors []string `json:"ruleErrors,omitempty"`
}
