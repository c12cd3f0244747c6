package ext_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/staggerhq/stagger/ext"
	"github.com/staggerhq/stagger/job"
)

// ──────────────────────────────────────────────────
// Test extensions
// ──────────────────────────────────────────────────

// allHooksExt implements every lifecycle hook for testing.
type allHooksExt struct {
	calls []string
}

func (e *allHooksExt) Name() string { return "all-hooks" }

func (e *allHooksExt) OnJobSubmitted(_ context.Context, _ *job.Job) error {
	e.calls = append(e.calls, "OnJobSubmitted")
	return nil
}

func (e *allHooksExt) OnJobSkipped(_ context.Context, _ *job.Job, _ error) error {
	e.calls = append(e.calls, "OnJobSkipped")
	return nil
}

func (e *allHooksExt) OnRateWaitStarted(_ context.Context, _ *job.Job) error {
	e.calls = append(e.calls, "OnRateWaitStarted")
	return nil
}

func (e *allHooksExt) OnJobAdmitted(_ context.Context, _ *job.Job) error {
	e.calls = append(e.calls, "OnJobAdmitted")
	return nil
}

func (e *allHooksExt) OnJobStarted(_ context.Context, _ *job.Job) error {
	e.calls = append(e.calls, "OnJobStarted")
	return nil
}

func (e *allHooksExt) OnJobCompleted(_ context.Context, _ *job.Job, _ string, _ time.Duration) error {
	e.calls = append(e.calls, "OnJobCompleted")
	return nil
}

func (e *allHooksExt) OnJobFailed(_ context.Context, _ *job.Job, _ error) error {
	e.calls = append(e.calls, "OnJobFailed")
	return nil
}

func (e *allHooksExt) OnLaneDrained(_ context.Context, _ string) error {
	e.calls = append(e.calls, "OnLaneDrained")
	return nil
}

func (e *allHooksExt) OnShutdown(_ context.Context) error {
	e.calls = append(e.calls, "OnShutdown")
	return nil
}

// completionOnlyExt only implements the completion hook.
type completionOnlyExt struct {
	calls []string
}

func (e *completionOnlyExt) Name() string { return "completion-only" }

func (e *completionOnlyExt) OnJobCompleted(_ context.Context, _ *job.Job, _ string, _ time.Duration) error {
	e.calls = append(e.calls, "OnJobCompleted")
	return nil
}

// failingExt returns errors from hooks.
type failingExt struct{}

func (e *failingExt) Name() string { return "failing" }

func (e *failingExt) OnJobStarted(_ context.Context, _ *job.Job) error {
	return errors.New("hook broke")
}

// ──────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────

func testJob() *job.Job {
	return &job.Job{ID: 1, Worker: "dave", Category: "feed-the-cat"}
}

func TestRegistry_EmitsAllHooks(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	e := &allHooksExt{}
	r.Register(e)

	ctx := context.Background()
	j := testJob()

	r.EmitJobSubmitted(ctx, j)
	r.EmitJobSkipped(ctx, j, errors.New("unknown category"))
	r.EmitRateWaitStarted(ctx, j)
	r.EmitJobAdmitted(ctx, j)
	r.EmitJobStarted(ctx, j)
	r.EmitJobCompleted(ctx, j, "meow", time.Millisecond)
	r.EmitJobFailed(ctx, j, errors.New("boom"))
	r.EmitLaneDrained(ctx, "dave")
	r.EmitShutdown(ctx)

	want := []string{
		"OnJobSubmitted", "OnJobSkipped", "OnRateWaitStarted",
		"OnJobAdmitted", "OnJobStarted", "OnJobCompleted",
		"OnJobFailed", "OnLaneDrained", "OnShutdown",
	}
	if len(e.calls) != len(want) {
		t.Fatalf("got %d hook calls, want %d: %v", len(e.calls), len(want), e.calls)
	}
	for i, name := range want {
		if e.calls[i] != name {
			t.Errorf("call %d = %q, want %q", i, e.calls[i], name)
		}
	}
}

func TestRegistry_PartialExtension(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	e := &completionOnlyExt{}
	r.Register(e)

	ctx := context.Background()
	j := testJob()

	// Hooks the extension does not implement must be skipped silently.
	r.EmitJobSubmitted(ctx, j)
	r.EmitJobStarted(ctx, j)
	r.EmitJobCompleted(ctx, j, "ok", time.Millisecond)

	if len(e.calls) != 1 || e.calls[0] != "OnJobCompleted" {
		t.Fatalf("expected exactly one OnJobCompleted call, got %v", e.calls)
	}
}

func TestRegistry_HookErrorsDoNotPropagate(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	r.Register(&failingExt{})

	// Must not panic and must not surface the hook error.
	r.EmitJobStarted(context.Background(), testJob())
}

func TestRegistry_RegistrationOrder(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	first := &allHooksExt{}
	second := &allHooksExt{}
	r.Register(first)
	r.Register(second)

	if got := len(r.Extensions()); got != 2 {
		t.Fatalf("expected 2 extensions, got %d", got)
	}

	r.EmitJobStarted(context.Background(), testJob())
	if len(first.calls) != 1 || len(second.calls) != 1 {
		t.Fatal("expected both extensions to observe the event")
	}
}
