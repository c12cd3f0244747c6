package ext

import (
	"context"
	"time"

	"github.com/staggerhq/stagger/job"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Job lifecycle hooks
// ──────────────────────────────────────────────────

// JobSubmitted is called when the dispatcher routes a job into its
// worker's lane.
type JobSubmitted interface {
	OnJobSubmitted(ctx context.Context, j *job.Job) error
}

// JobSkipped is called when a lane rejects a job without executing it
// (unknown category). The lane continues with its next job.
type JobSkipped interface {
	OnJobSkipped(ctx context.Context, j *job.Job, reason error) error
}

// RateWaitStarted is called when a lane begins waiting on the job's
// category rate limiter.
type RateWaitStarted interface {
	OnRateWaitStarted(ctx context.Context, j *job.Job) error
}

// JobAdmitted is called once the job holds both its category start
// permit and a global concurrency slot.
type JobAdmitted interface {
	OnJobAdmitted(ctx context.Context, j *job.Job) error
}

// JobStarted is called immediately before the execution facade is
// invoked.
type JobStarted interface {
	OnJobStarted(ctx context.Context, j *job.Job) error
}

// JobCompleted is called after the facade returns successfully.
type JobCompleted interface {
	OnJobCompleted(ctx context.Context, j *job.Job, outcome string, elapsed time.Duration) error
}

// JobFailed is called when the facade reports an execution failure.
// The failure is recorded against the job only; sibling jobs proceed.
type JobFailed interface {
	OnJobFailed(ctx context.Context, j *job.Job, err error) error
}

// ──────────────────────────────────────────────────
// Run lifecycle hooks
// ──────────────────────────────────────────────────

// LaneDrained is called when a worker's lane has executed everything in
// its inbox and terminated.
type LaneDrained interface {
	OnLaneDrained(ctx context.Context, worker string) error
}

// Shutdown is called after every lane has drained and the run is over.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
