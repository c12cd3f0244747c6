package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/staggerhq/stagger/job"
)

// Timeout returns middleware that enforces a uniform execution deadline.
// With a non-zero limit, a context.WithTimeout wraps the handler call;
// when the deadline is exceeded the context is cancelled and the handler
// should return context.DeadlineExceeded. A zero limit disables the
// deadline and the middleware is a pass-through.
func Timeout(limit time.Duration, logger *slog.Logger) Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) error {
		if limit > 0 {
			logger.Debug("job deadline set",
				slog.Int64("job_id", j.ID),
				slog.Duration("timeout", limit),
			)
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, limit)
			defer cancel()
		}
		return next(ctx)
	}
}
