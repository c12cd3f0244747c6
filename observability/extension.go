package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/staggerhq/stagger/ext"
	"github.com/staggerhq/stagger/job"
)

const meterName = "github.com/staggerhq/stagger/observability"

// Compile-time interface checks.
var (
	_ ext.Extension    = (*MetricsExtension)(nil)
	_ ext.JobSubmitted = (*MetricsExtension)(nil)
	_ ext.JobSkipped   = (*MetricsExtension)(nil)
	_ ext.JobAdmitted  = (*MetricsExtension)(nil)
	_ ext.JobStarted   = (*MetricsExtension)(nil)
	_ ext.JobCompleted = (*MetricsExtension)(nil)
	_ ext.JobFailed    = (*MetricsExtension)(nil)
	_ ext.LaneDrained  = (*MetricsExtension)(nil)
)

// MetricsExtension records run-wide lifecycle metrics. Register it as a
// scheduler extension to track submission, skip, admission, completion,
// and failure counts plus the number of jobs in flight.
type MetricsExtension struct {
	submitted metric.Int64Counter
	skipped   metric.Int64Counter
	admitted  metric.Int64Counter
	completed metric.Int64Counter
	failed    metric.Int64Counter
	inflight  metric.Int64UpDownCounter
	drained   metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension using the global meter
// provider.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension on the provided
// meter. Use a meter backed by an sdkmetric ManualReader in tests.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	m := &MetricsExtension{}
	m.submitted, _ = meter.Int64Counter("stagger.jobs.submitted",
		metric.WithDescription("Jobs routed into a worker lane"))
	m.skipped, _ = meter.Int64Counter("stagger.jobs.skipped",
		metric.WithDescription("Jobs rejected without execution"))
	m.admitted, _ = meter.Int64Counter("stagger.jobs.admitted",
		metric.WithDescription("Jobs holding a rate permit and a concurrency slot"))
	m.completed, _ = meter.Int64Counter("stagger.jobs.completed",
		metric.WithDescription("Jobs whose execution succeeded"))
	m.failed, _ = meter.Int64Counter("stagger.jobs.failed",
		metric.WithDescription("Jobs whose execution failed"))
	m.inflight, _ = meter.Int64UpDownCounter("stagger.jobs.inflight",
		metric.WithDescription("Jobs currently executing"))
	m.drained, _ = meter.Int64Counter("stagger.lanes.drained",
		metric.WithDescription("Worker lanes that finished their inbox"))
	return m
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

func jobAttrs(j *job.Job) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("worker", j.Worker),
		attribute.String("category", j.Category),
	)
}

// OnJobSubmitted implements ext.JobSubmitted.
func (m *MetricsExtension) OnJobSubmitted(ctx context.Context, j *job.Job) error {
	m.submitted.Add(ctx, 1, jobAttrs(j))
	return nil
}

// OnJobSkipped implements ext.JobSkipped.
func (m *MetricsExtension) OnJobSkipped(ctx context.Context, j *job.Job, _ error) error {
	m.skipped.Add(ctx, 1, jobAttrs(j))
	return nil
}

// OnJobAdmitted implements ext.JobAdmitted.
func (m *MetricsExtension) OnJobAdmitted(ctx context.Context, j *job.Job) error {
	m.admitted.Add(ctx, 1, jobAttrs(j))
	return nil
}

// OnJobStarted implements ext.JobStarted.
func (m *MetricsExtension) OnJobStarted(ctx context.Context, j *job.Job) error {
	m.inflight.Add(ctx, 1, jobAttrs(j))
	return nil
}

// OnJobCompleted implements ext.JobCompleted.
func (m *MetricsExtension) OnJobCompleted(ctx context.Context, j *job.Job, _ string, _ time.Duration) error {
	m.inflight.Add(ctx, -1, jobAttrs(j))
	m.completed.Add(ctx, 1, jobAttrs(j))
	return nil
}

// OnJobFailed implements ext.JobFailed.
func (m *MetricsExtension) OnJobFailed(ctx context.Context, j *job.Job, _ error) error {
	m.inflight.Add(ctx, -1, jobAttrs(j))
	m.failed.Add(ctx, 1, jobAttrs(j))
	return nil
}

// OnLaneDrained implements ext.LaneDrained.
func (m *MetricsExtension) OnLaneDrained(ctx context.Context, worker string) error {
	m.drained.Add(ctx, 1, metric.WithAttributes(attribute.String("worker", worker)))
	return nil
}
