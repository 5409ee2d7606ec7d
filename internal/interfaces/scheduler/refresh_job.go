package scheduler

import (
	"context"
	"fmt"
	"time"

	"donortrack/internal/domain/transaction"
)

// RefreshJob recomputes donor summaries for recently active donors. The
// recomputation is idempotent, so a job cut short by shutdown simply
// picks up where it converged on the next run.
type RefreshJob struct {
	service    *transaction.Service
	cutoffDays int
	batchSize  int
	runAt      time.Time
}

func NewRefreshJob(service *transaction.Service, cutoffDays, batchSize int) *RefreshJob {
	return &RefreshJob{
		service:    service,
		cutoffDays: cutoffDays,
		batchSize:  batchSize,
		runAt:      time.Now(),
	}
}

func (j *RefreshJob) Name() string {
	return fmt.Sprintf("summary-refresh-%s", j.runAt.Format("20060102-1504"))
}

func (j *RefreshJob) Description() string {
	return "donor summary refresh"
}

func (j *RefreshJob) Execute(ctx context.Context) error {
	_, err := j.service.RefreshSummaries(ctx, j.cutoffDays, j.batchSize)
	return err
}
