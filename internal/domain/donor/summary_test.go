package donor

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func TestComputeSummary(t *testing.T) {
	gifts := []Gift{
		{Date: day(t, "2023-01-01"), Amount: decimal.NewFromInt(50)},
		{Date: day(t, "2023-06-01"), Amount: decimal.NewFromInt(500)},
		{Date: day(t, "2024-01-01"), Amount: decimal.NewFromInt(10)},
	}

	s := ComputeSummary(gifts)

	if s.Latest == nil || !s.Latest.Date.Equal(day(t, "2024-01-01")) || !s.Latest.Amount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("latest = %+v, want 2024-01-01 / 10", s.Latest)
	}
	if s.Largest == nil || !s.Largest.Date.Equal(day(t, "2023-06-01")) || !s.Largest.Amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("largest = %+v, want 2023-06-01 / 500", s.Largest)
	}
	if s.Inception == nil || !s.Inception.Date.Equal(day(t, "2023-01-01")) || !s.Inception.Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("inception = %+v, want 2023-01-01 / 50", s.Inception)
	}
	if !s.TotalAmount.Equal(decimal.NewFromInt(560)) {
		t.Errorf("total = %v, want 560", s.TotalAmount)
	}
	if s.TotalResponses != 3 {
		t.Errorf("total responses = %d, want 3", s.TotalResponses)
	}
	if s.GiftResponses != 3 {
		t.Errorf("gift responses = %d, want 3", s.GiftResponses)
	}
}

func TestComputeSummaryEmpty(t *testing.T) {
	s := ComputeSummary(nil)
	if s.Latest != nil || s.Largest != nil || s.Inception != nil {
		t.Error("empty history should have no gift views")
	}
	if !s.TotalAmount.Equal(decimal.Zero) {
		t.Errorf("total = %v, want 0", s.TotalAmount)
	}
	if s.TotalResponses != 0 || s.GiftResponses != 0 {
		t.Errorf("responses = %d/%d, want 0/0", s.TotalResponses, s.GiftResponses)
	}
}

func TestComputeSummaryOrderIndependent(t *testing.T) {
	gifts := []Gift{
		{Date: day(t, "2023-01-01"), Amount: decimal.NewFromInt(50)},
		{Date: day(t, "2023-06-01"), Amount: decimal.NewFromInt(500)},
		{Date: day(t, "2024-01-01"), Amount: decimal.NewFromInt(10)},
		{Date: day(t, "2023-09-15"), Amount: decimal.NewFromInt(25)},
	}

	perms := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}

	base := ComputeSummary(gifts)
	for _, perm := range perms {
		shuffled := make([]Gift, len(gifts))
		for i, j := range perm {
			shuffled[i] = gifts[j]
		}
		got := ComputeSummary(shuffled)
		if !summariesEqual(got, base) {
			t.Errorf("permutation %v produced a different summary:\n got %+v\nwant %+v", perm, got, base)
		}
	}
}

func TestComputeSummaryLargestTieKeepsEarliest(t *testing.T) {
	gifts := []Gift{
		{Date: day(t, "2023-06-01"), Amount: decimal.NewFromInt(100)},
		{Date: day(t, "2023-01-01"), Amount: decimal.NewFromInt(100)},
	}
	s := ComputeSummary(gifts)
	if s.Largest == nil || !s.Largest.Date.Equal(day(t, "2023-01-01")) {
		t.Errorf("largest = %+v, want the earlier of the tie", s.Largest)
	}
}

func TestComputeSummaryZeroAmountCountsResponseOnly(t *testing.T) {
	gifts := []Gift{
		{Date: day(t, "2023-01-01"), Amount: decimal.NewFromInt(50)},
		{Date: day(t, "2023-02-01"), Amount: decimal.Zero},
	}
	s := ComputeSummary(gifts)
	if s.TotalResponses != 2 {
		t.Errorf("total responses = %d, want 2", s.TotalResponses)
	}
	if s.GiftResponses != 1 {
		t.Errorf("gift responses = %d, want 1", s.GiftResponses)
	}
	if !s.TotalAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("total = %v, want 50", s.TotalAmount)
	}
}

func TestApplyMatchesCompute(t *testing.T) {
	gifts := []Gift{
		{Date: day(t, "2023-01-01"), Amount: decimal.NewFromInt(50)},
		{Date: day(t, "2023-06-01"), Amount: decimal.NewFromInt(500)},
		{Date: day(t, "2024-01-01"), Amount: decimal.NewFromInt(10)},
	}

	var incremental Summary
	for _, g := range gifts {
		incremental = incremental.Apply(g.Date, g.Amount)
	}
	full := ComputeSummary(gifts)

	if !summariesEqual(incremental, full) {
		t.Errorf("incremental %+v differs from recomputed %+v", incremental, full)
	}
}

func TestApplySameDateTies(t *testing.T) {
	// Two gifts on the same day must converge on the same summary no
	// matter which path records them or in which order they arrive.
	g1 := Gift{Date: day(t, "2023-06-01"), Amount: decimal.NewFromInt(50)}
	g2 := Gift{Date: day(t, "2023-06-01"), Amount: decimal.NewFromInt(10)}

	var fwd Summary
	fwd = fwd.Apply(g1.Date, g1.Amount)
	fwd = fwd.Apply(g2.Date, g2.Amount)

	var rev Summary
	rev = rev.Apply(g2.Date, g2.Amount)
	rev = rev.Apply(g1.Date, g1.Amount)

	if !summariesEqual(fwd, rev) {
		t.Errorf("apply order changed the summary:\n fwd %+v\n rev %+v", fwd, rev)
	}
	if !summariesEqual(fwd, ComputeSummary([]Gift{g1, g2})) {
		t.Errorf("incremental %+v differs from recomputed %+v", fwd, ComputeSummary([]Gift{g1, g2}))
	}

	if fwd.Latest == nil || !fwd.Latest.Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("latest = %+v, want the greater amount of the same-day pair", fwd.Latest)
	}
	if fwd.Inception == nil || !fwd.Inception.Amount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("inception = %+v, want the lesser amount of the same-day pair", fwd.Inception)
	}
}

func TestApplyMatchesComputeWithTies(t *testing.T) {
	gifts := []Gift{
		{Date: day(t, "2023-06-01"), Amount: decimal.NewFromInt(100)},
		{Date: day(t, "2023-06-01"), Amount: decimal.NewFromInt(25)},
		{Date: day(t, "2023-01-01"), Amount: decimal.NewFromInt(100)},
		{Date: day(t, "2023-01-01"), Amount: decimal.NewFromInt(25)},
	}

	perms := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}

	base := ComputeSummary(gifts)
	for _, perm := range perms {
		var incremental Summary
		for _, j := range perm {
			incremental = incremental.Apply(gifts[j].Date, gifts[j].Amount)
		}
		if !summariesEqual(incremental, base) {
			t.Errorf("permutation %v: incremental %+v differs from recomputed %+v", perm, incremental, base)
		}
	}

	if base.Latest == nil || !base.Latest.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("latest = %+v, want 2023-06-01 / 100", base.Latest)
	}
	if base.Largest == nil || !base.Largest.Date.Equal(day(t, "2023-01-01")) {
		t.Errorf("largest = %+v, want the earlier of the equal maxima", base.Largest)
	}
	if base.Inception == nil || !base.Inception.Amount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("inception = %+v, want 2023-01-01 / 25", base.Inception)
	}
}

func summariesEqual(a, b Summary) bool {
	return giftPtrEqual(a.Latest, b.Latest) &&
		giftPtrEqual(a.Largest, b.Largest) &&
		giftPtrEqual(a.Inception, b.Inception) &&
		a.TotalAmount.Equal(b.TotalAmount) &&
		a.TotalResponses == b.TotalResponses &&
		a.GiftResponses == b.GiftResponses
}

func giftPtrEqual(a, b *Gift) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Date.Equal(b.Date) && a.Amount.Equal(b.Amount)
}
