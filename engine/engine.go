// Package engine wires all scheduler subsystems together: the rate-limit
// registry, the admission gate, the extension registry, the middleware
// chain, and the dispatch strategy.
//
// This package exists to break the import cycle: the root stagger
// package defines Config and Facade (imported by ratelimit, lane, etc.)
// and so cannot import those packages back. The engine package sits
// above all subsystem packages and below the application layer.
package engine

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/staggerhq/stagger"
	"github.com/staggerhq/stagger/admission"
	"github.com/staggerhq/stagger/ext"
	"github.com/staggerhq/stagger/id"
	"github.com/staggerhq/stagger/job"
	"github.com/staggerhq/stagger/lane"
	mw "github.com/staggerhq/stagger/middleware"
	"github.com/staggerhq/stagger/observability"
	"github.com/staggerhq/stagger/ordered"
	"github.com/staggerhq/stagger/ratelimit"
	"github.com/staggerhq/stagger/report"
)

// Strategy decides how the batch is walked. Both implementations honor
// per-worker FIFO, the category intervals, and the concurrency cap; they
// differ in how starts interleave across workers.
type Strategy interface {
	Name() string
	Run(ctx context.Context, batch []*job.Job) error
}

// Engine is a fully wired scheduler runtime. Use Build to create one.
type Engine struct {
	s          *stagger.Scheduler
	limits     *ratelimit.Registry
	gate       *admission.Gate
	extensions *ext.Registry
	recorder   *report.Recorder
	strategy   Strategy
	mws        []mw.Middleware
	logger     *slog.Logger

	useOrdered bool
	noMetrics  bool

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures an Engine.
type Option func(*Engine)

// WithExtension registers an extension with the engine.
func WithExtension(e ext.Extension) Option {
	return func(eng *Engine) {
		eng.extensions.Register(e)
	}
}

// WithMiddleware adds middleware to the engine's chain, after the
// default stack.
func WithMiddleware(m mw.Middleware) Option {
	return func(eng *Engine) {
		eng.mws = append(eng.mws, m)
	}
}

// WithOrderedStrategy switches the engine to the globally-ordered
// dispatch strategy.
func WithOrderedStrategy() Option {
	return func(eng *Engine) {
		eng.useOrdered = true
	}
}

// WithoutMetricsExtension skips registering the default observability
// metrics extension.
func WithoutMetricsExtension() Option {
	return func(eng *Engine) {
		eng.noMetrics = true
	}
}

// WithTracerProvider sets a custom OTel TracerProvider for the engine.
// If not set, the global otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(eng *Engine) {
		eng.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom OTel MeterProvider for the engine.
// When set, both the metrics middleware and the observability extension
// use this provider instead of the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(eng *Engine) {
		eng.meterProvider = mp
	}
}

// Build creates an Engine from a configured Scheduler. The scheduler
// must carry an execution facade.
func Build(s *stagger.Scheduler, opts ...Option) (*Engine, error) {
	if s.Facade() == nil {
		return nil, stagger.ErrNoFacade
	}

	logger := s.Logger()
	config := s.Config()

	eng := &Engine{
		s:          s,
		extensions: ext.NewRegistry(logger),
		recorder:   report.NewRecorder(),
		logger:     logger,
	}

	for _, opt := range opts {
		opt(eng)
	}

	eng.limits = ratelimit.NewRegistry(config.Categories...)
	eng.gate = admission.NewGate(config.Concurrency)

	// The recorder backs the run report and is always registered.
	eng.extensions.Register(eng.recorder)

	if !eng.noMetrics {
		var obsExt *observability.MetricsExtension
		if eng.meterProvider != nil {
			meter := eng.meterProvider.Meter("github.com/staggerhq/stagger/observability")
			obsExt = observability.NewMetricsExtensionWithMeter(meter)
		} else {
			obsExt = observability.NewMetricsExtension()
		}
		eng.extensions.Register(obsExt)
	}

	var tracingMw mw.Middleware
	if eng.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(eng.tracerProvider.Tracer("github.com/staggerhq/stagger"))
	} else {
		tracingMw = mw.Tracing()
	}

	var metricsMw mw.Middleware
	if eng.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(eng.meterProvider.Meter("github.com/staggerhq/stagger"))
	} else {
		metricsMw = mw.Metrics()
	}

	// Default middleware stack: recover → tracing → metrics → logging → timeout.
	defaultMws := []mw.Middleware{
		mw.Recover(logger),
		tracingMw,
		metricsMw,
		mw.Logging(logger),
		mw.Timeout(config.ExecTimeout, logger),
	}
	allMws := make([]mw.Middleware, 0, len(defaultMws)+len(eng.mws))
	allMws = append(allMws, defaultMws...)
	allMws = append(allMws, eng.mws...)

	executor := lane.NewExecutor(s.Facade(), eng.extensions, logger, allMws...)

	if eng.useOrdered {
		eng.strategy = ordered.NewRunner(config.Workers, eng.limits, eng.gate, executor, eng.extensions, logger)
	} else {
		eng.strategy = lane.NewRunner(config.Workers, eng.limits, eng.gate, executor, eng.extensions, logger)
	}

	return eng, nil
}

// Run dispatches the batch and blocks until every job has settled. The
// returned report enumerates each job with its terminal status and phase
// timestamps. A job naming an unknown worker fails the whole batch
// before anything executes; all other failures are per job.
func (eng *Engine) Run(ctx context.Context, batch []*job.Job) (*report.Report, error) {
	runID := id.NewRunID()
	start := time.Now()

	eng.logger.Info("run starting",
		slog.String("run_id", runID.String()),
		slog.String("strategy", eng.strategy.Name()),
		slog.Int("jobs", len(batch)),
		slog.Int("workers", len(eng.s.Config().Workers)),
		slog.Int("concurrency", eng.gate.Capacity()),
	)

	if err := eng.strategy.Run(ctx, batch); err != nil {
		eng.logger.Error("run aborted",
			slog.String("run_id", runID.String()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	eng.extensions.EmitShutdown(ctx)

	rep := eng.recorder.Report(runID)
	eng.logger.Info("run complete",
		slog.String("run_id", runID.String()),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("succeeded", len(rep.Succeeded())),
		slog.Int("failed", len(rep.Failed())),
		slog.Int("skipped", len(rep.Skipped())),
	)
	return rep, nil
}

// Extensions returns the extension registry.
func (eng *Engine) Extensions() *ext.Registry { return eng.extensions }

// Limits returns the category rate-limit registry.
func (eng *Engine) Limits() *ratelimit.Registry { return eng.limits }

// Gate returns the global admission gate.
func (eng *Engine) Gate() *admission.Gate { return eng.gate }

// Scheduler returns the underlying scheduler.
func (eng *Engine) Scheduler() *stagger.Scheduler { return eng.s }
