package lane

import (
	"context"
	"log/slog"
	"sync"

	"github.com/staggerhq/stagger/admission"
	"github.com/staggerhq/stagger/ext"
	"github.com/staggerhq/stagger/job"
	"github.com/staggerhq/stagger/ratelimit"
)

// Runner is the independent-lanes dispatch strategy: a goroutine per
// worker, each draining its own inbox. Lanes only meet at the shared
// rate limiters and the admission gate.
type Runner struct {
	lanes  []*Lane
	router *Router
	logger *slog.Logger
}

// NewRunner builds a lane per worker and the router over their inboxes.
func NewRunner(
	workers []string,
	limits *ratelimit.Registry,
	gate *admission.Gate,
	executor *Executor,
	extensions *ext.Registry,
	logger *slog.Logger,
) *Runner {
	inboxes := make(map[string]*Inbox, len(workers))
	lanes := make([]*Lane, 0, len(workers))
	for _, w := range workers {
		inbox := NewInbox()
		inboxes[w] = inbox
		lanes = append(lanes, NewLane(w, inbox, limits, gate, executor, extensions, logger))
	}
	return &Runner{
		lanes:  lanes,
		router: NewRouter(inboxes, extensions, logger),
		logger: logger,
	}
}

// Name identifies the strategy in logs.
func (r *Runner) Name() string { return "lanes" }

// Run routes the batch and drains every lane to completion. It returns
// after the last lane has finished; a validation failure aborts before
// any lane sees a job.
func (r *Runner) Run(ctx context.Context, batch []*job.Job) error {
	if err := r.router.Dispatch(ctx, batch); err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, l := range r.lanes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Run(ctx)
		}()
	}
	wg.Wait()

	r.logger.Debug("all lanes drained", slog.Int("lanes", len(r.lanes)))
	return nil
}
