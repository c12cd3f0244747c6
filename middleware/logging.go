package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/staggerhq/stagger/job"
)

// Logging returns middleware that logs job start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) error {
		logger.Info("job started",
			slog.Int64("job_id", j.ID),
			slog.String("worker", j.Worker),
			slog.String("category", j.Category),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("job failed",
				slog.Int64("job_id", j.ID),
				slog.String("worker", j.Worker),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("job completed",
				slog.Int64("job_id", j.ID),
				slog.String("worker", j.Worker),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
