package donor

import (
	"context"

	"donortrack/internal/domain/search"
)

// Repository defines data access for donors.
type Repository interface {
	Create(ctx context.Context, d *Donor) error
	// CreateBatch inserts several donors in one transaction. Either all
	// rows land or none do.
	CreateBatch(ctx context.Context, donors []*Donor) error
	GetByID(ctx context.Context, id int64) (*Donor, error)
	Update(ctx context.Context, d *Donor) error
	Exists(ctx context.Context, id int64) (bool, error)
	// NextID returns one greater than the highest assigned donor ID.
	NextID(ctx context.Context) (int64, error)

	Search(ctx context.Context, q search.Query, limit, offset int) ([]*Donor, error)
	CountSearch(ctx context.Context, q search.Query) (int64, error)

	UpdateSummary(ctx context.Context, id int64, s Summary) error
	ListIDs(ctx context.Context) ([]int64, error)
}
