package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/staggerhq/stagger/job"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type jobSubmittedEntry struct {
	name string
	hook JobSubmitted
}

type jobSkippedEntry struct {
	name string
	hook JobSkipped
}

type rateWaitStartedEntry struct {
	name string
	hook RateWaitStarted
}

type jobAdmittedEntry struct {
	name string
	hook JobAdmitted
}

type jobStartedEntry struct {
	name string
	hook JobStarted
}

type jobCompletedEntry struct {
	name string
	hook JobCompleted
}

type jobFailedEntry struct {
	name string
	hook JobFailed
}

type laneDrainedEntry struct {
	name string
	hook LaneDrained
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	jobSubmitted    []jobSubmittedEntry
	jobSkipped      []jobSkippedEntry
	rateWaitStarted []rateWaitStartedEntry
	jobAdmitted     []jobAdmittedEntry
	jobStarted      []jobStartedEntry
	jobCompleted    []jobCompletedEntry
	jobFailed       []jobFailedEntry
	laneDrained     []laneDrainedEntry
	shutdown        []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(JobSubmitted); ok {
		r.jobSubmitted = append(r.jobSubmitted, jobSubmittedEntry{name, h})
	}
	if h, ok := e.(JobSkipped); ok {
		r.jobSkipped = append(r.jobSkipped, jobSkippedEntry{name, h})
	}
	if h, ok := e.(RateWaitStarted); ok {
		r.rateWaitStarted = append(r.rateWaitStarted, rateWaitStartedEntry{name, h})
	}
	if h, ok := e.(JobAdmitted); ok {
		r.jobAdmitted = append(r.jobAdmitted, jobAdmittedEntry{name, h})
	}
	if h, ok := e.(JobStarted); ok {
		r.jobStarted = append(r.jobStarted, jobStartedEntry{name, h})
	}
	if h, ok := e.(JobCompleted); ok {
		r.jobCompleted = append(r.jobCompleted, jobCompletedEntry{name, h})
	}
	if h, ok := e.(JobFailed); ok {
		r.jobFailed = append(r.jobFailed, jobFailedEntry{name, h})
	}
	if h, ok := e.(LaneDrained); ok {
		r.laneDrained = append(r.laneDrained, laneDrainedEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// ──────────────────────────────────────────────────
// Job event emitters
// ──────────────────────────────────────────────────

// EmitJobSubmitted notifies all extensions that implement JobSubmitted.
func (r *Registry) EmitJobSubmitted(ctx context.Context, j *job.Job) {
	for _, e := range r.jobSubmitted {
		if err := e.hook.OnJobSubmitted(ctx, j); err != nil {
			r.logHookError("OnJobSubmitted", e.name, err)
		}
	}
}

// EmitJobSkipped notifies all extensions that implement JobSkipped.
func (r *Registry) EmitJobSkipped(ctx context.Context, j *job.Job, reason error) {
	for _, e := range r.jobSkipped {
		if err := e.hook.OnJobSkipped(ctx, j, reason); err != nil {
			r.logHookError("OnJobSkipped", e.name, err)
		}
	}
}

// EmitRateWaitStarted notifies all extensions that implement RateWaitStarted.
func (r *Registry) EmitRateWaitStarted(ctx context.Context, j *job.Job) {
	for _, e := range r.rateWaitStarted {
		if err := e.hook.OnRateWaitStarted(ctx, j); err != nil {
			r.logHookError("OnRateWaitStarted", e.name, err)
		}
	}
}

// EmitJobAdmitted notifies all extensions that implement JobAdmitted.
func (r *Registry) EmitJobAdmitted(ctx context.Context, j *job.Job) {
	for _, e := range r.jobAdmitted {
		if err := e.hook.OnJobAdmitted(ctx, j); err != nil {
			r.logHookError("OnJobAdmitted", e.name, err)
		}
	}
}

// EmitJobStarted notifies all extensions that implement JobStarted.
func (r *Registry) EmitJobStarted(ctx context.Context, j *job.Job) {
	for _, e := range r.jobStarted {
		if err := e.hook.OnJobStarted(ctx, j); err != nil {
			r.logHookError("OnJobStarted", e.name, err)
		}
	}
}

// EmitJobCompleted notifies all extensions that implement JobCompleted.
func (r *Registry) EmitJobCompleted(ctx context.Context, j *job.Job, outcome string, elapsed time.Duration) {
	for _, e := range r.jobCompleted {
		if err := e.hook.OnJobCompleted(ctx, j, outcome, elapsed); err != nil {
			r.logHookError("OnJobCompleted", e.name, err)
		}
	}
}

// EmitJobFailed notifies all extensions that implement JobFailed.
func (r *Registry) EmitJobFailed(ctx context.Context, j *job.Job, jobErr error) {
	for _, e := range r.jobFailed {
		if err := e.hook.OnJobFailed(ctx, j, jobErr); err != nil {
			r.logHookError("OnJobFailed", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Run event emitters
// ──────────────────────────────────────────────────

// EmitLaneDrained notifies all extensions that implement LaneDrained.
func (r *Registry) EmitLaneDrained(ctx context.Context, worker string) {
	for _, e := range r.laneDrained {
		if err := e.hook.OnLaneDrained(ctx, worker); err != nil {
			r.logHookError("OnLaneDrained", e.name, err)
		}
	}
}

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the run.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
