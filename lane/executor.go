package lane

import (
	"context"
	"log/slog"
	"time"

	"github.com/staggerhq/stagger"
	"github.com/staggerhq/stagger/ext"
	"github.com/staggerhq/stagger/job"
	"github.com/staggerhq/stagger/middleware"
)

// Executor runs a single job through the middleware chain and the
// execution facade, emitting lifecycle events around the call.
type Executor struct {
	facade     stagger.Facade
	extensions *ext.Registry
	mw         middleware.Middleware
	logger     *slog.Logger
}

// NewExecutor creates an Executor with the given dependencies.
func NewExecutor(
	facade stagger.Facade,
	extensions *ext.Registry,
	logger *slog.Logger,
	mws ...middleware.Middleware,
) *Executor {
	return &Executor{
		facade:     facade,
		extensions: extensions,
		mw:         middleware.Chain(mws...),
		logger:     logger,
	}
}

// Execute invokes the facade for j through the middleware chain.
// On success it emits JobCompleted with the facade's outcome; on failure
// it emits JobFailed and returns the error. The failure is the job's
// alone; callers continue with their next job.
func (e *Executor) Execute(ctx context.Context, j *job.Job) error {
	e.extensions.EmitJobStarted(ctx, j)

	start := time.Now()

	var outcome string
	terminal := func(ctx context.Context) error {
		var err error
		outcome, err = e.facade.Execute(ctx, j.Category, j.ID, j.Worker)
		return err
	}

	err := e.mw(ctx, j, terminal)
	elapsed := time.Since(start)

	if err != nil {
		e.extensions.EmitJobFailed(ctx, j, err)
		e.logger.Debug("job execution failed",
			slog.Int64("job_id", j.ID),
			slog.String("worker", j.Worker),
			slog.String("category", j.Category),
			slog.String("error", err.Error()),
		)
		return err
	}

	e.extensions.EmitJobCompleted(ctx, j, outcome, elapsed)
	return nil
}
