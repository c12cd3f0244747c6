package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/staggerhq/stagger/job"
	"github.com/staggerhq/stagger/observability"
)

func setupExtension() (*sdkmetric.ManualReader, *observability.MetricsExtension) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return reader, observability.NewMetricsExtensionWithMeter(mp.Meter("test"))
}

func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %q: expected Sum[int64], got %T", name, m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	t.Fatalf("metric %q not found", name)
	return 0
}

func TestMetricsExtension_CountsLifecycle(t *testing.T) {
	reader, m := setupExtension()
	ctx := context.Background()
	j := &job.Job{ID: 7, Worker: "dave", Category: "feed-the-cat"}

	_ = m.OnJobSubmitted(ctx, j)
	_ = m.OnJobAdmitted(ctx, j)
	_ = m.OnJobStarted(ctx, j)
	_ = m.OnJobCompleted(ctx, j, "done", 5*time.Millisecond)

	if got := sumOf(t, reader, "stagger.jobs.submitted"); got != 1 {
		t.Errorf("submitted = %d, want 1", got)
	}
	if got := sumOf(t, reader, "stagger.jobs.completed"); got != 1 {
		t.Errorf("completed = %d, want 1", got)
	}
	if got := sumOf(t, reader, "stagger.jobs.inflight"); got != 0 {
		t.Errorf("inflight = %d, want 0", got)
	}
}

func TestMetricsExtension_FailureAndSkip(t *testing.T) {
	reader, m := setupExtension()
	ctx := context.Background()
	j := &job.Job{ID: 8, Worker: "cris", Category: "water-the-plants"}

	_ = m.OnJobSubmitted(ctx, j)
	_ = m.OnJobStarted(ctx, j)
	_ = m.OnJobFailed(ctx, j, errors.New("hose burst"))
	_ = m.OnJobSkipped(ctx, &job.Job{ID: 9, Worker: "cris", Category: "walk-the-dog"},
		errors.New("unknown category"))

	if got := sumOf(t, reader, "stagger.jobs.failed"); got != 1 {
		t.Errorf("failed = %d, want 1", got)
	}
	if got := sumOf(t, reader, "stagger.jobs.skipped"); got != 1 {
		t.Errorf("skipped = %d, want 1", got)
	}
	if got := sumOf(t, reader, "stagger.jobs.inflight"); got != 0 {
		t.Errorf("inflight = %d, want 0", got)
	}
}

func TestMetricsExtension_LaneDrained(t *testing.T) {
	reader, m := setupExtension()
	ctx := context.Background()

	_ = m.OnLaneDrained(ctx, "dave")
	_ = m.OnLaneDrained(ctx, "cris")

	if got := sumOf(t, reader, "stagger.lanes.drained"); got != 2 {
		t.Errorf("drained = %d, want 2", got)
	}
}
