package ordered

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/staggerhq/stagger"
	"github.com/staggerhq/stagger/admission"
	"github.com/staggerhq/stagger/ext"
	"github.com/staggerhq/stagger/job"
	"github.com/staggerhq/stagger/lane"
	"github.com/staggerhq/stagger/ratelimit"
)

// Runner is the globally-ordered dispatch strategy. One coordinator
// goroutine owns all per-worker queues; executions run concurrently up
// to the admission gate's capacity.
type Runner struct {
	workers    []string
	limits     *ratelimit.Registry
	gate       *admission.Gate
	executor   *lane.Executor
	extensions *ext.Registry
	logger     *slog.Logger
}

// NewRunner creates the ordered strategy over the given worker set.
func NewRunner(
	workers []string,
	limits *ratelimit.Registry,
	gate *admission.Gate,
	executor *lane.Executor,
	extensions *ext.Registry,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		workers:    workers,
		limits:     limits,
		gate:       gate,
		executor:   executor,
		extensions: extensions,
		logger:     logger,
	}
}

// Name identifies the strategy in logs.
func (r *Runner) Name() string { return "ordered" }

// Run validates and routes the batch, then drives the coordinator loop
// until every queue is empty and every execution has finished.
func (r *Runner) Run(ctx context.Context, batch []*job.Job) error {
	queues := make(map[string][]*job.Job, len(r.workers))
	for _, w := range r.workers {
		queues[w] = nil
	}

	for _, j := range batch {
		if _, ok := queues[j.Worker]; !ok {
			return fmt.Errorf("%w: %q (job %d)", stagger.ErrUnknownWorker, j.Worker, j.ID)
		}
	}
	for _, j := range batch {
		queues[j.Worker] = append(queues[j.Worker], j)
		r.extensions.EmitJobSubmitted(ctx, j)
	}

	busy := make(map[string]bool, len(r.workers))
	inflight := 0
	// Buffered so a finished execution never blocks handing its worker
	// back while the coordinator is parked on an acquisition.
	done := make(chan string, r.gate.Capacity())

	for {
		// Collect finished workers without blocking.
	drain:
		for {
			select {
			case w := <-done:
				busy[w] = false
				inflight--
			default:
				break drain
			}
		}

		w, ok := r.pick(ctx, queues, busy)
		if !ok {
			if inflight == 0 && remaining(queues) == 0 {
				break
			}
			w := <-done
			busy[w] = false
			inflight--
			continue
		}

		j := queues[w][0]
		queues[w] = queues[w][1:]

		slot, ok := r.admit(ctx, j)
		if !ok {
			continue
		}

		busy[w] = true
		inflight++
		go func() {
			defer slot.Release()
			_ = r.executor.Execute(ctx, j)
			done <- w
		}()
	}

	for _, w := range r.workers {
		r.extensions.EmitLaneDrained(ctx, w)
	}
	r.logger.Debug("ordered run complete", slog.Int("workers", len(r.workers)))
	return nil
}

// remaining counts the queued jobs across all workers.
func remaining(queues map[string][]*job.Job) int {
	n := 0
	for _, q := range queues {
		n += len(q)
	}
	return n
}

// pick returns the idle worker whose queue head has the shortest
// estimated rate wait. Heads that can never run (unknown category, dead
// context) are skipped in place until a runnable head surfaces or the
// queue empties. The estimate from When is advisory; the winner still
// goes through the blocking acquisition path.
func (r *Runner) pick(ctx context.Context, queues map[string][]*job.Job, busy map[string]bool) (string, bool) {
	var (
		best      string
		bestDelay time.Duration
		found     bool
	)
	for _, w := range r.workers {
		if busy[w] {
			continue
		}
		for len(queues[w]) > 0 {
			j := queues[w][0]

			if err := ctx.Err(); err != nil {
				queues[w] = queues[w][1:]
				r.extensions.EmitJobSkipped(ctx, j, err)
				continue
			}
			delay, err := r.limits.When(j.Category)
			if err != nil {
				queues[w] = queues[w][1:]
				r.logger.Warn("skipping job with unknown category",
					slog.Int64("job_id", j.ID),
					slog.String("category", j.Category),
				)
				r.extensions.EmitJobSkipped(ctx, j, err)
				continue
			}
			if !found || delay < bestDelay {
				best, bestDelay, found = w, delay, true
			}
			break
		}
	}
	return best, found
}

// admit takes j through the blocking acquisitions, rate permit first.
// On success the returned slot travels with the execution; the caller
// releases it when the facade returns. Reports false when the job was
// skipped instead of admitted.
func (r *Runner) admit(ctx context.Context, j *job.Job) (*admission.Slot, bool) {
	r.extensions.EmitRateWaitStarted(ctx, j)
	if err := r.limits.Acquire(ctx, j.Category); err != nil {
		r.extensions.EmitJobSkipped(ctx, j, err)
		return nil, false
	}
	slot, err := r.gate.Acquire(ctx)
	if err != nil {
		r.extensions.EmitJobSkipped(ctx, j, err)
		return nil, false
	}
	r.extensions.EmitJobAdmitted(ctx, j)
	return slot, true
}
