package stagger

import (
	"context"
	"log/slog"
	"time"
)

// Option configures a Scheduler.
type Option func(*Scheduler) error

// Facade is the pluggable job-body contract. The scheduler invokes it
// exactly once per admitted job, after the category's rate limiter and a
// global concurrency slot have both been acquired. Ordinary failures are
// reported through the error return, not panics; the returned outcome is
// recorded verbatim in the run report.
type Facade interface {
	Execute(ctx context.Context, category string, jobID int64, worker string) (string, error)
}

// FacadeFunc adapts a function to the Facade interface.
type FacadeFunc func(ctx context.Context, category string, jobID int64, worker string) (string, error)

// Execute implements Facade.
func (f FacadeFunc) Execute(ctx context.Context, category string, jobID int64, worker string) (string, error) {
	return f(ctx, category, jobID, worker)
}

// Scheduler is the central coordinator for batch dispatch. It holds the
// static worker/category configuration, the logger, and the execution
// facade. Create one with New() and functional options, then wire the
// runtime with engine.Build, which keeps subsystem packages free of
// import cycles back into this root package.
type Scheduler struct {
	config Config
	logger *slog.Logger
	facade Facade
}

// New creates a Scheduler with the given options and validates the
// resulting configuration.
func New(opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Logger returns the scheduler's logger.
func (s *Scheduler) Logger() *slog.Logger { return s.logger }

// Config returns a copy of the scheduler's configuration.
func (s *Scheduler) Config() Config { return s.config }

// Facade returns the configured execution facade, or nil.
func (s *Scheduler) Facade() Facade { return s.facade }

// WithWorkers sets the fixed set of worker names.
func WithWorkers(workers ...string) Option {
	return func(s *Scheduler) error {
		s.config.Workers = append(s.config.Workers, workers...)
		return nil
	}
}

// WithCategory registers a job category with its rate-limit interval.
func WithCategory(name string, interval time.Duration) Option {
	return func(s *Scheduler) error {
		s.config.Categories = append(s.config.Categories, CategoryConfig{Name: name, Interval: interval})
		return nil
	}
}

// WithConcurrency sets the global cap on simultaneous executions.
func WithConcurrency(n int) Option {
	return func(s *Scheduler) error {
		s.config.Concurrency = n
		return nil
	}
}

// WithExecTimeout bounds each facade execution with a deadline.
func WithExecTimeout(d time.Duration) Option {
	return func(s *Scheduler) error {
		s.config.ExecTimeout = d
		return nil
	}
}

// WithLogger sets the structured logger for the scheduler.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) error {
		s.logger = l
		return nil
	}
}

// WithFacade sets the execution facade invoked for admitted jobs.
func WithFacade(f Facade) Option {
	return func(s *Scheduler) error {
		s.facade = f
		return nil
	}
}
