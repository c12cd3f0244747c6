package lane_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/staggerhq/stagger"
	"github.com/staggerhq/stagger/admission"
	"github.com/staggerhq/stagger/ext"
	"github.com/staggerhq/stagger/job"
	"github.com/staggerhq/stagger/lane"
	"github.com/staggerhq/stagger/ratelimit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// callLog records facade invocations for order and timing assertions.
type callLog struct {
	mu    sync.Mutex
	ids   []int64
	times []time.Time
}

func (c *callLog) record(jobID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, jobID)
	c.times = append(c.times, time.Now())
}

func (c *callLog) snapshot() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.ids...)
}

func newTestRunner(
	t *testing.T,
	workers []string,
	categories []stagger.CategoryConfig,
	capacity int,
	facade stagger.Facade,
) *lane.Runner {
	t.Helper()
	logger := discardLogger()
	limits := ratelimit.NewRegistry(categories...)
	gate := admission.NewGate(capacity)
	extensions := ext.NewRegistry(logger)
	executor := lane.NewExecutor(facade, extensions, logger)
	return lane.NewRunner(workers, limits, gate, executor, extensions, logger)
}

func TestRunner_PerWorkerFIFO(t *testing.T) {
	calls := &callLog{}
	facade := stagger.FacadeFunc(func(_ context.Context, _ string, jobID int64, _ string) (string, error) {
		calls.record(jobID)
		return "ok", nil
	})

	r := newTestRunner(t, []string{"dave"},
		[]stagger.CategoryConfig{{Name: "a"}}, 3, facade)

	batch := []*job.Job{
		{ID: 1, Worker: "dave", Category: "a"},
		{ID: 2, Worker: "dave", Category: "a"},
		{ID: 3, Worker: "dave", Category: "a"},
	}
	if err := r.Run(context.Background(), batch); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := calls.snapshot()
	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("executed %d jobs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("execution order %v, want %v", got, want)
			break
		}
	}
}

func TestRunner_UnknownWorkerAbortsBeforeDispatch(t *testing.T) {
	var executed atomic.Int64
	facade := stagger.FacadeFunc(func(_ context.Context, _ string, _ int64, _ string) (string, error) {
		executed.Add(1)
		return "ok", nil
	})

	r := newTestRunner(t, []string{"dave"},
		[]stagger.CategoryConfig{{Name: "a"}}, 3, facade)

	batch := []*job.Job{
		{ID: 1, Worker: "dave", Category: "a"},
		{ID: 2, Worker: "zorg", Category: "a"},
	}
	err := r.Run(context.Background(), batch)
	if !errors.Is(err, stagger.ErrUnknownWorker) {
		t.Fatalf("expected ErrUnknownWorker, got %v", err)
	}
	if n := executed.Load(); n != 0 {
		t.Errorf("executed %d jobs, want 0 (batch must abort before dispatch)", n)
	}
}

func TestRunner_UnknownCategorySkipsJobOnly(t *testing.T) {
	calls := &callLog{}
	facade := stagger.FacadeFunc(func(_ context.Context, _ string, jobID int64, _ string) (string, error) {
		calls.record(jobID)
		return "ok", nil
	})

	r := newTestRunner(t, []string{"dave"},
		[]stagger.CategoryConfig{{Name: "a"}}, 3, facade)

	batch := []*job.Job{
		{ID: 1, Worker: "dave", Category: "a"},
		{ID: 2, Worker: "dave", Category: "walk-the-dog"},
		{ID: 3, Worker: "dave", Category: "a"},
	}
	if err := r.Run(context.Background(), batch); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := calls.snapshot()
	want := []int64{1, 3}
	if len(got) != len(want) || got[0] != 1 || got[1] != 3 {
		t.Errorf("executed %v, want %v", got, want)
	}
}

func TestRunner_FailureDoesNotStopLane(t *testing.T) {
	calls := &callLog{}
	facade := stagger.FacadeFunc(func(_ context.Context, _ string, jobID int64, _ string) (string, error) {
		calls.record(jobID)
		if jobID == 1 {
			return "", fmt.Errorf("job %d blew up", jobID)
		}
		return "ok", nil
	})

	r := newTestRunner(t, []string{"dave"},
		[]stagger.CategoryConfig{{Name: "a"}}, 3, facade)

	batch := []*job.Job{
		{ID: 1, Worker: "dave", Category: "a"},
		{ID: 2, Worker: "dave", Category: "a"},
	}
	if err := r.Run(context.Background(), batch); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := calls.snapshot(); len(got) != 2 {
		t.Errorf("executed %d jobs, want 2 (failure must not stop the lane)", len(got))
	}
}

func TestRunner_CategoryIntervalSpansWorkers(t *testing.T) {
	const interval = 150 * time.Millisecond

	calls := &callLog{}
	facade := stagger.FacadeFunc(func(_ context.Context, _ string, jobID int64, _ string) (string, error) {
		calls.record(jobID)
		return "ok", nil
	})

	r := newTestRunner(t, []string{"dave", "cris"},
		[]stagger.CategoryConfig{{Name: "a", Interval: interval}}, 2, facade)

	batch := []*job.Job{
		{ID: 1, Worker: "dave", Category: "a"},
		{ID: 2, Worker: "cris", Category: "a"},
	}
	if err := r.Run(context.Background(), batch); err != nil {
		t.Fatalf("run: %v", err)
	}

	calls.mu.Lock()
	defer calls.mu.Unlock()
	if len(calls.times) != 2 {
		t.Fatalf("executed %d jobs, want 2", len(calls.times))
	}
	gap := calls.times[1].Sub(calls.times[0])
	if gap < 0 {
		gap = -gap
	}
	// The two starts are on different workers but share the category, so
	// the second must wait out the interval.
	if gap < interval-20*time.Millisecond {
		t.Errorf("starts %v apart, want at least ~%v", gap, interval)
	}
}

func TestRunner_ConcurrencyCapHolds(t *testing.T) {
	var active, peak atomic.Int64
	facade := stagger.FacadeFunc(func(_ context.Context, _ string, _ int64, _ string) (string, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		active.Add(-1)
		return "ok", nil
	})

	workers := []string{"dave", "cris", "andi", "nick"}
	r := newTestRunner(t, workers,
		[]stagger.CategoryConfig{{Name: "a"}}, 2, facade)

	var batch []*job.Job
	for i, w := range workers {
		batch = append(batch, &job.Job{ID: int64(i + 1), Worker: w, Category: "a"})
	}
	if err := r.Run(context.Background(), batch); err != nil {
		t.Fatalf("run: %v", err)
	}

	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrency %d, want at most 2", p)
	}
}

func TestRunner_CancelledContextSkipsRemaining(t *testing.T) {
	var executed atomic.Int64
	facade := stagger.FacadeFunc(func(_ context.Context, _ string, _ int64, _ string) (string, error) {
		executed.Add(1)
		return "ok", nil
	})

	r := newTestRunner(t, []string{"dave"},
		[]stagger.CategoryConfig{{Name: "a"}}, 3, facade)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := []*job.Job{
		{ID: 1, Worker: "dave", Category: "a"},
		{ID: 2, Worker: "dave", Category: "a"},
	}
	if err := r.Run(ctx, batch); err != nil {
		t.Fatalf("run: %v", err)
	}
	if n := executed.Load(); n != 0 {
		t.Errorf("executed %d jobs under a cancelled context, want 0", n)
	}
}
