package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/staggerhq/stagger/id"
	"github.com/staggerhq/stagger/job"
	"github.com/staggerhq/stagger/report"
)

func TestRecorder_SuccessLifecycle(t *testing.T) {
	r := report.NewRecorder()
	ctx := context.Background()
	j := &job.Job{ID: 1, Worker: "dave", Category: "feed-the-cat"}

	_ = r.OnJobSubmitted(ctx, j)
	_ = r.OnRateWaitStarted(ctx, j)
	_ = r.OnJobAdmitted(ctx, j)
	_ = r.OnJobStarted(ctx, j)
	_ = r.OnJobCompleted(ctx, j, "meow", 10*time.Millisecond)

	e, ok := r.Entry(1)
	if !ok {
		t.Fatal("expected entry for job 1")
	}
	if e.Status != report.StatusSucceeded {
		t.Errorf("status = %q, want %q", e.Status, report.StatusSucceeded)
	}
	if e.Outcome != "meow" {
		t.Errorf("outcome = %q, want %q", e.Outcome, "meow")
	}
	if e.SubmittedAt.IsZero() || e.RateWaitAt.IsZero() || e.AdmittedAt.IsZero() ||
		e.StartedAt.IsZero() || e.FinishedAt.IsZero() {
		t.Error("expected all phase timestamps to be set")
	}
	if e.StartedAt.Before(e.SubmittedAt) {
		t.Error("started before submitted")
	}
}

func TestRecorder_FailureLifecycle(t *testing.T) {
	r := report.NewRecorder()
	ctx := context.Background()
	j := &job.Job{ID: 2, Worker: "cris", Category: "water-the-plants"}

	_ = r.OnJobSubmitted(ctx, j)
	_ = r.OnJobStarted(ctx, j)
	_ = r.OnJobFailed(ctx, j, errors.New("hose burst"))

	e, ok := r.Entry(2)
	if !ok {
		t.Fatal("expected entry for job 2")
	}
	if e.Status != report.StatusFailed {
		t.Errorf("status = %q, want %q", e.Status, report.StatusFailed)
	}
	if e.Error != "hose burst" {
		t.Errorf("error = %q, want %q", e.Error, "hose burst")
	}
}

func TestRecorder_SkippedLifecycle(t *testing.T) {
	r := report.NewRecorder()
	ctx := context.Background()
	j := &job.Job{ID: 3, Worker: "dave", Category: "walk-the-dog"}

	_ = r.OnJobSubmitted(ctx, j)
	_ = r.OnJobSkipped(ctx, j, errors.New("unknown category"))

	e, ok := r.Entry(3)
	if !ok {
		t.Fatal("expected entry for job 3")
	}
	if e.Status != report.StatusSkipped {
		t.Errorf("status = %q, want %q", e.Status, report.StatusSkipped)
	}
}

func TestReport_SortedAndFiltered(t *testing.T) {
	r := report.NewRecorder()
	ctx := context.Background()

	jobs := []*job.Job{
		{ID: 3, Worker: "dave", Category: "a"},
		{ID: 1, Worker: "dave", Category: "a"},
		{ID: 2, Worker: "cris", Category: "b"},
	}
	for _, j := range jobs {
		_ = r.OnJobSubmitted(ctx, j)
	}
	_ = r.OnJobCompleted(ctx, jobs[0], "ok", time.Millisecond)
	_ = r.OnJobCompleted(ctx, jobs[1], "ok", time.Millisecond)
	_ = r.OnJobFailed(ctx, jobs[2], errors.New("boom"))

	rep := r.Report(id.NewRunID())
	if rep.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", rep.Len())
	}
	for i, want := range []int64{1, 2, 3} {
		if rep.Entries[i].JobID != want {
			t.Errorf("entries[%d].JobID = %d, want %d", i, rep.Entries[i].JobID, want)
		}
	}
	if got := len(rep.Succeeded()); got != 2 {
		t.Errorf("succeeded = %d, want 2", got)
	}
	if got := len(rep.Failed()); got != 1 {
		t.Errorf("failed = %d, want 1", got)
	}
	if got := len(rep.Skipped()); got != 0 {
		t.Errorf("skipped = %d, want 0", got)
	}
	if rep.RunID.IsNil() {
		t.Error("expected a run id on the report")
	}
}
