package mailing

import (
	"context"
	"fmt"
	"log"
	"time"

	"donortrack/internal/domain/donor"
)

// Engine computes mailing-list eligibility by set algebra over the four
// inclusion rules.
type Engine struct {
	repo Repository
	now  func() time.Time
}

func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo, now: time.Now}
}

// Generate runs every rule, unions the survivors, and filters the union
// down to mailable donors. A rule failure is logged and contributes an
// empty set; only a parameter error aborts the run.
func (e *Engine) Generate(ctx context.Context, p Params) (*Result, error) {
	p.defaults(e.now())
	if err := p.validate(); err != nil {
		return nil, err
	}

	rules := []rule{
		e.recentActivity(p),
		e.historicalMajorDonor(p),
		e.lifePublication(),
		e.eaglesPublication(),
	}

	result := &Result{}
	counts := make([]int, len(rules))
	eligible := make(idSet)
	for i, r := range rules {
		s, err := r.eval(ctx)
		if err != nil {
			log.Printf("Mailing rule %q failed: %v", r.name, err)
			result.RuleErrors = append(result.RuleErrors, fmt.Sprintf("%s: %v", r.name, err))
			continue
		}
		counts[i] = len(s)
		eligible = union(eligible, s)
	}
	result.RecentActivityCount = counts[0]
	result.MajorDonorCount = counts[1]
	result.LifePublicationCount = counts[2]
	result.EaglesPublicationCount = counts[3]

	mailable, err := e.repo.FilterMailable(ctx, sorted(eligible))
	if err != nil {
		return nil, fmt.Errorf("failed to filter mailable donors: %w", err)
	}
	result.DonorIDs = mailable

	log.Printf("Mailing run %q: %d eligible, %d mailable (rules: %d/%d/%d/%d)",
		p.Title, len(eligible), len(mailable), counts[0], counts[1], counts[2], counts[3])
	return result, nil
}

// ListEligible loads the full donor records for a generated result.
func (e *Engine) ListEligible(ctx context.Context, r *Result) ([]*donor.Donor, error) {
	if len(r.DonorIDs) == 0 {
		return nil, nil
	}
	donors, err := e.repo.ListByIDs(ctx, r.DonorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load eligible donors: %w", err)
	}
	return donors, nil
}

// ActiveMailingList loads every donor currently flagged for active
// mailing. This is a direct read, not an eligibility computation.
func (e *Engine) ActiveMailingList(ctx context.Context) ([]*donor.Donor, error) {
	donors, err := e.repo.ListActiveMailing(ctx, e.now())
	if err != nil {
		return nil, fmt.Errorf("failed to load active mailing list: %w", err)
	}
	return donors, nil
}
