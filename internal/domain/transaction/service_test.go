package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"donortrack/internal/domain/donor"
	"donortrack/internal/domain/search"
)

// MockRepository implements Repository for tests.
type MockRepository struct {
	CreateFunc                    func(ctx context.Context, t *Transaction, s donor.Summary) (*Transaction, error)
	CreateBatchFunc               func(ctx context.Context, rows []*Transaction, summaries map[int64]donor.Summary) ([]*Transaction, error)
	GetByIDFunc                   func(ctx context.Context, id int64) (*Transaction, error)
	ListByDonorIDFunc             func(ctx context.Context, donorID int64) ([]*Transaction, error)
	UpdateWithSummaryFunc         func(ctx context.Context, t *Transaction, s donor.Summary) error
	SearchFunc                    func(ctx context.Context, q search.Query, limit, offset int) ([]*Transaction, error)
	CountSearchFunc               func(ctx context.Context, q search.Query) (int64, error)
	SumSearchFunc                 func(ctx context.Context, q search.Query) (decimal.Decimal, error)
	DonorIDsWithActivitySinceFunc func(ctx context.Context, cutoff time.Time) ([]int64, error)
}

func (m *MockRepository) Create(ctx context.Context, t *Transaction, s donor.Summary) (*Transaction, error) {
	return m.CreateFunc(ctx, t, s)
}

func (m *MockRepository) CreateBatch(ctx context.Context, rows []*Transaction, summaries map[int64]donor.Summary) ([]*Transaction, error) {
	return m.CreateBatchFunc(ctx, rows, summaries)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*Transaction, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *MockRepository) ListByDonorID(ctx context.Context, donorID int64) ([]*Transaction, error) {
	return m.ListByDonorIDFunc(ctx, donorID)
}

func (m *MockRepository) UpdateWithSummary(ctx context.Context, t *Transaction, s donor.Summary) error {
	return m.UpdateWithSummaryFunc(ctx, t, s)
}

func (m *MockRepository) Search(ctx context.Context, q search.Query, limit, offset int) ([]*Transaction, error) {
	return m.SearchFunc(ctx, q, limit, offset)
}

func (m *MockRepository) CountSearch(ctx context.Context, q search.Query) (int64, error) {
	return m.CountSearchFunc(ctx, q)
}

func (m *MockRepository) SumSearch(ctx context.Context, q search.Query) (decimal.Decimal, error) {
	return m.SumSearchFunc(ctx, q)
}

func (m *MockRepository) DonorIDsWithActivitySince(ctx context.Context, cutoff time.Time) ([]int64, error) {
	return m.DonorIDsWithActivitySinceFunc(ctx, cutoff)
}

// mockDonorRepo is a minimal donor.Repository for transaction tests.
type mockDonorRepo struct {
	donors    map[int64]*donor.Donor
	summaries map[int64]donor.Summary
}

func newMockDonorRepo(donors ...*donor.Donor) *mockDonorRepo {
	m := &mockDonorRepo{
		donors:    make(map[int64]*donor.Donor),
		summaries: make(map[int64]donor.Summary),
	}
	for _, d := range donors {
		m.donors[d.ID] = d
	}
	return m
}

func (m *mockDonorRepo) Create(ctx context.Context, d *donor.Donor) error { return nil }

func (m *mockDonorRepo) CreateBatch(ctx context.Context, ds []*donor.Donor) error { return nil }

func (m *mockDonorRepo) GetByID(ctx context.Context, id int64) (*donor.Donor, error) {
	d, ok := m.donors[id]
	if !ok {
		return nil, donor.ErrDonorNotFound
	}
	return d, nil
}

func (m *mockDonorRepo) Update(ctx context.Context, d *donor.Donor) error { return nil }

func (m *mockDonorRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := m.donors[id]
	return ok, nil
}

func (m *mockDonorRepo) NextID(ctx context.Context) (int64, error) { return 1, nil }

func (m *mockDonorRepo) Search(ctx context.Context, q search.Query, limit, offset int) ([]*donor.Donor, error) {
	return nil, nil
}

func (m *mockDonorRepo) CountSearch(ctx context.Context, q search.Query) (int64, error) {
	return 0, nil
}

func (m *mockDonorRepo) UpdateSummary(ctx context.Context, id int64, s donor.Summary) error {
	m.summaries[id] = s
	return nil
}

func (m *mockDonorRepo) ListIDs(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(m.donors))
	for id := range m.donors {
		ids = append(ids, id)
	}
	return ids, nil
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func TestAddTransaction(t *testing.T) {
	t.Run("folds the gift into the donor summary", func(t *testing.T) {
		d := &donor.Donor{ID: 10}
		var gotSummary donor.Summary
		repo := &MockRepository{
			CreateFunc: func(ctx context.Context, tr *Transaction, s donor.Summary) (*Transaction, error) {
				gotSummary = s
				tr.ID = 1
				return tr, nil
			},
		}
		svc := NewService(repo, newMockDonorRepo(d))

		created, err := svc.AddTransaction(context.Background(), CreateParams{
			DonorID: 10,
			Date:    date(t, "2024-01-01"),
			Amount:  decimal.NewFromInt(25),
		})
		if err != nil {
			t.Fatalf("AddTransaction: %v", err)
		}
		if created.ID != 1 {
			t.Errorf("ID = %d, want 1", created.ID)
		}
		if !gotSummary.TotalAmount.Equal(decimal.NewFromInt(25)) {
			t.Errorf("summary total = %v, want 25", gotSummary.TotalAmount)
		}
		if gotSummary.TotalResponses != 1 || gotSummary.GiftResponses != 1 {
			t.Errorf("responses = %d/%d, want 1/1", gotSummary.TotalResponses, gotSummary.GiftResponses)
		}
	})

	t.Run("defaults the appeal description from the code", func(t *testing.T) {
		d := &donor.Donor{ID: 10}
		var created *Transaction
		repo := &MockRepository{
			CreateFunc: func(ctx context.Context, tr *Transaction, s donor.Summary) (*Transaction, error) {
				created = tr
				return tr, nil
			},
		}
		svc := NewService(repo, newMockDonorRepo(d))

		code := "G"
		_, err := svc.AddTransaction(context.Background(), CreateParams{
			DonorID:    10,
			Date:       date(t, "2024-01-01"),
			Amount:     decimal.NewFromInt(25),
			AppealCode: &code,
		})
		if err != nil {
			t.Fatalf("AddTransaction: %v", err)
		}
		if created.AppealDescription == nil || *created.AppealDescription != "EAGLE TRUST FUND" {
			t.Errorf("appeal description = %v, want EAGLE TRUST FUND", created.AppealDescription)
		}
	})

	t.Run("rejects a negative amount", func(t *testing.T) {
		svc := NewService(&MockRepository{}, newMockDonorRepo())
		_, err := svc.AddTransaction(context.Background(), CreateParams{
			DonorID: 10,
			Date:    date(t, "2024-01-01"),
			Amount:  decimal.NewFromInt(-5),
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unknown donor", func(t *testing.T) {
		svc := NewService(&MockRepository{}, newMockDonorRepo())
		_, err := svc.AddTransaction(context.Background(), CreateParams{
			DonorID: 99,
			Date:    date(t, "2024-01-01"),
			Amount:  decimal.NewFromInt(5),
		})
		if !errors.Is(err, donor.ErrDonorNotFound) {
			t.Errorf("expected ErrDonorNotFound, got %v", err)
		}
	})
}

func TestAddBatch(t *testing.T) {
	t.Run("shares header values and computes per-donor summaries", func(t *testing.T) {
		d1 := &donor.Donor{ID: 1}
		d2 := &donor.Donor{ID: 2}
		var gotRows []*Transaction
		var gotSummaries map[int64]donor.Summary
		repo := &MockRepository{
			CreateBatchFunc: func(ctx context.Context, rows []*Transaction, summaries map[int64]donor.Summary) ([]*Transaction, error) {
				gotRows = rows
				gotSummaries = summaries
				return rows, nil
			},
		}
		svc := NewService(repo, newMockDonorRepo(d1, d2))

		_, err := svc.AddBatch(context.Background(), BatchParams{
			Date:          date(t, "2024-03-01"),
			PaymentMethod: "CHECK",
			Rows: []BatchRow{
				{DonorID: 1, Amount: decimal.NewFromInt(100)},
				{DonorID: 1, Amount: decimal.NewFromInt(50)},
				{DonorID: 2, Amount: decimal.NewFromInt(20)},
			},
		})
		if err != nil {
			t.Fatalf("AddBatch: %v", err)
		}
		if len(gotRows) != 3 {
			t.Fatalf("rows = %d, want 3", len(gotRows))
		}

		// Blank batch number gets one generated value shared by all rows.
		batchNum := gotRows[0].UpdateBatchNum
		if batchNum == nil || *batchNum == "" {
			t.Fatal("expected a generated batch number")
		}
		for i, r := range gotRows {
			if r.UpdateBatchNum == nil || *r.UpdateBatchNum != *batchNum {
				t.Errorf("row %d batch number = %v, want %q", i, r.UpdateBatchNum, *batchNum)
			}
			if r.PaymentMethod == nil || *r.PaymentMethod != "CHECK" {
				t.Errorf("row %d payment method = %v, want CHECK", i, r.PaymentMethod)
			}
		}

		if !gotSummaries[1].TotalAmount.Equal(decimal.NewFromInt(150)) {
			t.Errorf("donor 1 total = %v, want 150", gotSummaries[1].TotalAmount)
		}
		if !gotSummaries[2].TotalAmount.Equal(decimal.NewFromInt(20)) {
			t.Errorf("donor 2 total = %v, want 20", gotSummaries[2].TotalAmount)
		}
	})

	t.Run("any bad row rejects the whole batch", func(t *testing.T) {
		d1 := &donor.Donor{ID: 1}
		called := false
		repo := &MockRepository{
			CreateBatchFunc: func(ctx context.Context, rows []*Transaction, summaries map[int64]donor.Summary) ([]*Transaction, error) {
				called = true
				return rows, nil
			},
		}
		svc := NewService(repo, newMockDonorRepo(d1))

		_, err := svc.AddBatch(context.Background(), BatchParams{
			Date: date(t, "2024-03-01"),
			Rows: []BatchRow{
				{DonorID: 1, Amount: decimal.NewFromInt(100)},
				{DonorID: 99, Amount: decimal.NewFromInt(50)},
			},
		})
		var bErr *BatchError
		if !errors.As(err, &bErr) {
			t.Fatalf("expected BatchError, got %v", err)
		}
		if len(bErr.Rows) != 1 || bErr.Rows[0].Row != 1 {
			t.Errorf("row errors = %+v", bErr.Rows)
		}
		if called {
			t.Error("repository must not be written on validation failure")
		}
	})

	t.Run("rejects an empty batch", func(t *testing.T) {
		svc := NewService(&MockRepository{}, newMockDonorRepo())
		_, err := svc.AddBatch(context.Background(), BatchParams{Date: date(t, "2024-03-01")})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestEditTransaction(t *testing.T) {
	t.Run("rebuilds the summary from the post-edit history", func(t *testing.T) {
		existing := []*Transaction{
			{ID: 1, DonorID: 10, Date: date(t, "2023-01-01"), Amount: decimal.NewFromInt(50)},
			{ID: 2, DonorID: 10, Date: date(t, "2023-06-01"), Amount: decimal.NewFromInt(500)},
		}
		var gotSummary donor.Summary
		repo := &MockRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*Transaction, error) {
				cp := *existing[1]
				return &cp, nil
			},
			ListByDonorIDFunc: func(ctx context.Context, donorID int64) ([]*Transaction, error) {
				return existing, nil
			},
			UpdateWithSummaryFunc: func(ctx context.Context, tr *Transaction, s donor.Summary) error {
				gotSummary = s
				return nil
			},
		}
		svc := NewService(repo, newMockDonorRepo())

		newAmount := decimal.NewFromInt(5)
		_, err := svc.EditTransaction(context.Background(), 2, UpdateParams{Amount: &newAmount})
		if err != nil {
			t.Fatalf("EditTransaction: %v", err)
		}

		// The 500 gift became 5, so the largest view falls back to 50.
		if gotSummary.Largest == nil || !gotSummary.Largest.Amount.Equal(decimal.NewFromInt(50)) {
			t.Errorf("largest = %+v, want amount 50", gotSummary.Largest)
		}
		if !gotSummary.TotalAmount.Equal(decimal.NewFromInt(55)) {
			t.Errorf("total = %v, want 55", gotSummary.TotalAmount)
		}
	})

	t.Run("unknown transaction", func(t *testing.T) {
		repo := &MockRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*Transaction, error) {
				return nil, ErrTransactionNotFound
			},
		}
		svc := NewService(repo, newMockDonorRepo())
		_, err := svc.EditTransaction(context.Background(), 99, UpdateParams{})
		if !errors.Is(err, ErrTransactionNotFound) {
			t.Errorf("expected ErrTransactionNotFound, got %v", err)
		}
	})
}

func TestSearchTotalsAllMatches(t *testing.T) {
	repo := &MockRepository{
		CountSearchFunc: func(ctx context.Context, q search.Query) (int64, error) { return 75, nil },
		SumSearchFunc: func(ctx context.Context, q search.Query) (decimal.Decimal, error) {
			return decimal.NewFromInt(12345), nil
		},
		SearchFunc: func(ctx context.Context, q search.Query, limit, offset int) ([]*Transaction, error) {
			return []*Transaction{{ID: 1}}, nil
		},
	}
	svc := NewService(repo, newMockDonorRepo())

	res, err := svc.Search(context.Background(), search.TransactionCriteria{AppealCode: "N"}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !res.TotalAmount.Equal(decimal.NewFromInt(12345)) {
		t.Errorf("total amount = %v, want 12345", res.TotalAmount)
	}
	if res.TotalPages != 2 {
		t.Errorf("total pages = %d, want 2", res.TotalPages)
	}
}

func TestRefreshSummaries(t *testing.T) {
	donorRepo := newMockDonorRepo()
	repo := &MockRepository{
		DonorIDsWithActivitySinceFunc: func(ctx context.Context, cutoff time.Time) ([]int64, error) {
			return []int64{10, 20}, nil
		},
		ListByDonorIDFunc: func(ctx context.Context, donorID int64) ([]*Transaction, error) {
			if donorID == 10 {
				return []*Transaction{
					{ID: 1, DonorID: 10, Date: date(t, "2024-01-01"), Amount: decimal.NewFromInt(30)},
				}, nil
			}
			return nil, nil
		},
	}
	svc := NewService(repo, donorRepo)

	n, err := svc.RefreshSummaries(context.Background(), 30, 50)
	if err != nil {
		t.Fatalf("RefreshSummaries: %v", err)
	}
	if n != 2 {
		t.Errorf("refreshed = %d, want 2", n)
	}
	if !donorRepo.summaries[10].TotalAmount.Equal(decimal.NewFromInt(30)) {
		t.Errorf("donor 10 total = %v, want 30", donorRepo.summaries[10].TotalAmount)
	}
	// A donor with no remaining history gets a cleared summary.
	if donorRepo.summaries[20].TotalResponses != 0 {
		t.Errorf("donor 20 responses = %d, want 0", donorRepo.summaries[20].TotalResponses)
	}
}

func TestRefreshSummariesAllDonors(t *testing.T) {
	// With no cutoff the pass walks every donor on file, not just those
	// with recent activity.
	donorRepo := newMockDonorRepo(&donor.Donor{ID: 10}, &donor.Donor{ID: 20}, &donor.Donor{ID: 30})
	repo := &MockRepository{
		DonorIDsWithActivitySinceFunc: func(ctx context.Context, cutoff time.Time) ([]int64, error) {
			t.Error("activity window must not be consulted for a full refresh")
			return nil, nil
		},
		ListByDonorIDFunc: func(ctx context.Context, donorID int64) ([]*Transaction, error) {
			if donorID == 30 {
				return []*Transaction{
					{ID: 1, DonorID: 30, Date: date(t, "2018-05-01"), Amount: decimal.NewFromInt(75)},
				}, nil
			}
			return nil, nil
		},
	}
	svc := NewService(repo, donorRepo)

	n, err := svc.RefreshSummaries(context.Background(), 0, 50)
	if err != nil {
		t.Fatalf("RefreshSummaries: %v", err)
	}
	if n != 3 {
		t.Errorf("refreshed = %d, want 3", n)
	}
	if !donorRepo.summaries[30].TotalAmount.Equal(decimal.NewFromInt(75)) {
		t.Errorf("donor 30 total = %v, want 75", donorRepo.summaries[30].TotalAmount)
	}
}
