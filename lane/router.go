package lane

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/staggerhq/stagger"
	"github.com/staggerhq/stagger/ext"
	"github.com/staggerhq/stagger/job"
)

// Router fans a batch out to per-worker inboxes. Routing preserves batch
// order within each worker, which is what the lanes' FIFO guarantee
// rests on.
type Router struct {
	inboxes    map[string]*Inbox
	extensions *ext.Registry
	logger     *slog.Logger
}

// NewRouter creates a router over the given worker inboxes.
func NewRouter(inboxes map[string]*Inbox, extensions *ext.Registry, logger *slog.Logger) *Router {
	return &Router{
		inboxes:    inboxes,
		extensions: extensions,
		logger:     logger,
	}
}

// Dispatch validates the whole batch against the worker set, then routes
// each job into its worker's inbox and closes every inbox. A job naming
// an unknown worker aborts the run before anything is submitted: no lane
// receives any job and the batch error wraps stagger.ErrUnknownWorker.
func (r *Router) Dispatch(ctx context.Context, batch []*job.Job) error {
	for _, j := range batch {
		if _, ok := r.inboxes[j.Worker]; !ok {
			return fmt.Errorf("%w: %q (job %d)", stagger.ErrUnknownWorker, j.Worker, j.ID)
		}
	}

	for _, j := range batch {
		if err := r.inboxes[j.Worker].Put(j); err != nil {
			// Inboxes are only closed below, after routing.
			return fmt.Errorf("route job %d: %w", j.ID, err)
		}
		r.logger.Debug("job submitted",
			slog.Int64("job_id", j.ID),
			slog.String("worker", j.Worker),
			slog.String("category", j.Category),
		)
		r.extensions.EmitJobSubmitted(ctx, j)
	}

	// The batch is fixed: once routed, each lane's workload is final.
	for _, inbox := range r.inboxes {
		inbox.Close()
	}
	return nil
}
