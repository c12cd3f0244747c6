package lane

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/staggerhq/stagger"
	"github.com/staggerhq/stagger/admission"
	"github.com/staggerhq/stagger/ext"
	"github.com/staggerhq/stagger/job"
	"github.com/staggerhq/stagger/ratelimit"
)

// Lane executes one worker's jobs strictly in arrival order. A job only
// starts after the previous job on the same lane has finished, after the
// job's category rate limiter grants a start permit, and after a global
// concurrency slot is held.
type Lane struct {
	worker     string
	inbox      *Inbox
	limits     *ratelimit.Registry
	gate       *admission.Gate
	executor   *Executor
	extensions *ext.Registry
	logger     *slog.Logger
}

// NewLane creates a lane for the named worker.
func NewLane(
	worker string,
	inbox *Inbox,
	limits *ratelimit.Registry,
	gate *admission.Gate,
	executor *Executor,
	extensions *ext.Registry,
	logger *slog.Logger,
) *Lane {
	return &Lane{
		worker:     worker,
		inbox:      inbox,
		limits:     limits,
		gate:       gate,
		executor:   executor,
		extensions: extensions,
		logger:     logger.With(slog.String("worker", worker)),
	}
}

// Worker returns the lane's worker name.
func (l *Lane) Worker() string { return l.worker }

// Run drains the inbox until it is closed and empty, then emits
// LaneDrained. Cancellation is honored at the suspension points: a
// cancelled context skips the remaining jobs without executing them.
func (l *Lane) Run(ctx context.Context) {
	for {
		j, ok := l.inbox.Next()
		if !ok {
			break
		}
		l.process(ctx, j)
	}

	l.logger.Debug("lane drained")
	l.extensions.EmitLaneDrained(ctx, l.worker)
}

// process takes one job through validation, rate wait, admission, and
// execution. Skips are terminal for the job only; the lane continues.
func (l *Lane) process(ctx context.Context, j *job.Job) {
	if err := ctx.Err(); err != nil {
		l.extensions.EmitJobSkipped(ctx, j, err)
		return
	}

	if !l.limits.Known(j.Category) {
		reason := fmt.Errorf("%w: %q", stagger.ErrUnknownCategory, j.Category)
		l.logger.Warn("skipping job with unknown category",
			slog.Int64("job_id", j.ID),
			slog.String("category", j.Category),
		)
		l.extensions.EmitJobSkipped(ctx, j, reason)
		return
	}

	// Rate permit first, concurrency slot second. Holding a slot while
	// parked on a limiter would starve other lanes.
	l.extensions.EmitRateWaitStarted(ctx, j)
	if err := l.limits.Acquire(ctx, j.Category); err != nil {
		l.extensions.EmitJobSkipped(ctx, j, err)
		return
	}

	slot, err := l.gate.Acquire(ctx)
	if err != nil {
		l.extensions.EmitJobSkipped(ctx, j, err)
		return
	}
	defer slot.Release()

	l.extensions.EmitJobAdmitted(ctx, j)

	// Execution errors are already emitted and recorded per job.
	_ = l.executor.Execute(ctx, j)
}
