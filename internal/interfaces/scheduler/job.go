package scheduler

import "context"

// Job is one unit of scheduled work.
type Job interface {
	// Name identifies the job instance in logs and traces.
	Name() string
	// Description is the human-readable job kind.
	Description() string
	Execute(ctx context.Context) error
}
