package mailing

import (
	"context"
	"sort"
)

// idSet is the working representation inside the engine.
type idSet map[int64]struct{}

func setOf(ids []int64) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func union(dst, src idSet) idSet {
	for id := range src {
		dst[id] = struct{}{}
	}
	return dst
}

func subtract(dst, src idSet) idSet {
	for id := range src {
		delete(dst, id)
	}
	return dst
}

func sorted(s idSet) []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// rule is one independent eligibility criterion. Rules never see each
// other; the engine unions their outputs.
type rule struct {
	name string
	eval func(ctx context.Context) (idSet, error)
}

// recentActivity: at least one transaction inside the reference window,
// newsletter status A or E, donor status neither M nor N.
func (e *Engine) recentActivity(p Params) rule {
	return rule{
		name: "recent activity",
		eval: func(ctx context.Context) (idSet, error) {
			ids, err := e.repo.DonorIDsWithActivity(ctx,
				Window{Start: p.Start, End: p.End},
				[]string{NewsletterActive, NewsletterEagles},
				[]string{DonorStatusMember, DonorStatusNon})
			if err != nil {
				return nil, err
			}
			return setOf(ids), nil
		},
	}
}

// historicalMajorDonor: a single gift at or above the threshold inside
// the historical window, newsletter status A, donor status not N, minus
// donors whose latest activity falls inside the exclusion window.
func (e *Engine) historicalMajorDonor(p Params) rule {
	return rule{
		name: "historical major donor",
		eval: func(ctx context.Context) (idSet, error) {
			ids, err := e.repo.DonorIDsWithGiftAtLeast(ctx,
				Window{Start: p.HistoricalStart, End: p.Start},
				MajorDonorThreshold,
				[]string{NewsletterActive},
				[]string{DonorStatusNon})
			if err != nil {
				return nil, err
			}
			s := setOf(ids)

			if p.Exclusion != nil {
				if !p.Exclusion.Valid() {
					return nil, &ValidationError{Field: "exclusion_window", Message: "exclusion window is malformed"}
				}
				excluded, err := e.repo.DonorIDsWithLatestActivityIn(ctx, *p.Exclusion)
				if err != nil {
					return nil, err
				}
				s = subtract(s, setOf(excluded))
			}
			return s, nil
		},
	}
}

// lifePublication: lifetime donors (status L, newsletter A) subscribed
// to the house publication under any of its legacy spellings.
func (e *Engine) lifePublication() rule {
	return rule{
		name: "life publication",
		eval: func(ctx context.Context) (idSet, error) {
			ids, err := e.repo.DonorIDsWithPublication(ctx, PublicationPatterns, DonorStatusLife, NewsletterActive)
			if err != nil {
				return nil, err
			}
			return setOf(ids), nil
		},
	}
}

// eaglesPublication: the same publication match for newsletter status E,
// any donor status.
func (e *Engine) eaglesPublication() rule {
	return rule{
		name: "eagles publication",
		eval: func(ctx context.Context) (idSet, error) {
			ids, err := e.repo.DonorIDsWithPublication(ctx, PublicationPatterns, "", NewsletterEagles)
			if err != nil {
				return nil, err
			}
			return setOf(ids), nil
		},
	}
}
