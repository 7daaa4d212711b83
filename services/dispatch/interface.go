package dispatch

import (
	"context"
	"fmt"
	"time"

	"fundi/services/tasks"

	"github.com/hibiken/asynq"
)

// Outcome reports what a search job did. It is observability only: queue
// semantics do not depend on it.
type Outcome string

const (
	// OutcomeSkipped: the request moved past searching; stale or duplicate
	// delivery, nothing to do.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeExpanded: no candidates; the radius was widened and the job
	// re-enqueued.
	OutcomeExpanded Outcome = "expanded"
	// OutcomeFound: candidates were offered and notified.
	OutcomeFound Outcome = "found"
	// OutcomeExhausted: no candidates and bounds reached; terminal
	// no-provider-found.
	OutcomeExhausted Outcome = "exhausted"
)

// DispatchService matches searching requests to nearby providers, widening
// the radius on empty attempts via delayed jobs on the durable queue.
type DispatchService interface {
	EnqueueSearch(ctx context.Context, requestID string, delay time.Duration) error
	RunSearch(ctx context.Context, requestID string) (Outcome, error)
}

// Enqueuer schedules search jobs. Split from the engine so tests can stub
// the queue.
type Enqueuer interface {
	EnqueueSearch(ctx context.Context, requestID string, delay time.Duration) error
}

// AsynqEnqueuer schedules search jobs on the shared redis-backed queue.
type AsynqEnqueuer struct {
	Client *asynq.Client
}

func (e *AsynqEnqueuer) EnqueueSearch(ctx context.Context, requestID string, delay time.Duration) error {
	task, opts, err := tasks.NewSearchTask(requestID, delay)
	if err != nil {
		return fmt.Errorf("failed to build search task: %w", err)
	}
	if _, err := e.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue search task: %w", err)
	}
	return nil
}
