package report

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/staggerhq/stagger/ext"
	"github.com/staggerhq/stagger/id"
	"github.com/staggerhq/stagger/job"
)

// Compile-time interface checks.
var (
	_ ext.Extension       = (*Recorder)(nil)
	_ ext.JobSubmitted    = (*Recorder)(nil)
	_ ext.JobSkipped      = (*Recorder)(nil)
	_ ext.RateWaitStarted = (*Recorder)(nil)
	_ ext.JobAdmitted     = (*Recorder)(nil)
	_ ext.JobStarted      = (*Recorder)(nil)
	_ ext.JobCompleted    = (*Recorder)(nil)
	_ ext.JobFailed       = (*Recorder)(nil)
)

// Status is the terminal state of one job in the report.
type Status string

const (
	// StatusPending means the job has been submitted but not settled.
	// A finished run never reports pending jobs.
	StatusPending Status = "pending"
	// StatusSucceeded means the facade returned without error.
	StatusSucceeded Status = "succeeded"
	// StatusFailed means the facade reported an execution failure.
	StatusFailed Status = "failed"
	// StatusSkipped means the job named an unknown category and was
	// never executed.
	StatusSkipped Status = "skipped"
)

// Entry is the recorded lifecycle of one job.
type Entry struct {
	JobID    int64  `json:"job_id"`
	Worker   string `json:"worker"`
	Category string `json:"category"`
	Status   Status `json:"status"`
	Outcome  string `json:"outcome,omitempty"`
	Error    string `json:"error,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`
	RateWaitAt  time.Time `json:"rate_wait_at,omitempty"`
	AdmittedAt  time.Time `json:"admitted_at,omitempty"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	FinishedAt  time.Time `json:"finished_at,omitempty"`
}

// Recorder captures job lifecycle events into per-job entries.
// Safe for concurrent use from all lanes.
type Recorder struct {
	mu      sync.Mutex
	entries map[int64]*Entry
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		entries: make(map[int64]*Entry),
	}
}

// Name implements ext.Extension.
func (r *Recorder) Name() string { return "report-recorder" }

// entry returns the tracked entry for j, creating it if needed.
// Callers hold r.mu.
func (r *Recorder) entry(j *job.Job) *Entry {
	e, ok := r.entries[j.ID]
	if !ok {
		e = &Entry{JobID: j.ID, Worker: j.Worker, Category: j.Category, Status: StatusPending}
		r.entries[j.ID] = e
	}
	return e
}

// OnJobSubmitted implements ext.JobSubmitted.
func (r *Recorder) OnJobSubmitted(_ context.Context, j *job.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(j).SubmittedAt = time.Now()
	return nil
}

// OnJobSkipped implements ext.JobSkipped.
func (r *Recorder) OnJobSkipped(_ context.Context, j *job.Job, reason error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entry(j)
	e.Status = StatusSkipped
	e.Error = reason.Error()
	e.FinishedAt = time.Now()
	return nil
}

// OnRateWaitStarted implements ext.RateWaitStarted.
func (r *Recorder) OnRateWaitStarted(_ context.Context, j *job.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(j).RateWaitAt = time.Now()
	return nil
}

// OnJobAdmitted implements ext.JobAdmitted.
func (r *Recorder) OnJobAdmitted(_ context.Context, j *job.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(j).AdmittedAt = time.Now()
	return nil
}

// OnJobStarted implements ext.JobStarted.
func (r *Recorder) OnJobStarted(_ context.Context, j *job.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(j).StartedAt = time.Now()
	return nil
}

// OnJobCompleted implements ext.JobCompleted.
func (r *Recorder) OnJobCompleted(_ context.Context, j *job.Job, outcome string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entry(j)
	e.Status = StatusSucceeded
	e.Outcome = outcome
	e.FinishedAt = time.Now()
	return nil
}

// OnJobFailed implements ext.JobFailed.
func (r *Recorder) OnJobFailed(_ context.Context, j *job.Job, jobErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entry(j)
	e.Status = StatusFailed
	e.Error = jobErr.Error()
	e.FinishedAt = time.Now()
	return nil
}

// Entry returns a copy of the entry for the given job ID.
func (r *Recorder) Entry(jobID int64) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[jobID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Report snapshots the recorded entries, sorted by job ID.
func (r *Recorder) Report(runID id.RunID) *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, k int) bool { return entries[i].JobID < entries[k].JobID })

	return &Report{RunID: runID, Entries: entries}
}

// Report enumerates every job of a run with its terminal status.
type Report struct {
	RunID   id.RunID `json:"run_id"`
	Entries []Entry  `json:"entries"`
}

// Len returns the number of recorded jobs.
func (r *Report) Len() int { return len(r.Entries) }

// Succeeded returns the entries that completed without error.
func (r *Report) Succeeded() []Entry { return r.filter(StatusSucceeded) }

// Failed returns the entries whose execution reported an error.
func (r *Report) Failed() []Entry { return r.filter(StatusFailed) }

// Skipped returns the entries rejected for an unknown category.
func (r *Report) Skipped() []Entry { return r.filter(StatusSkipped) }

func (r *Report) filter(s Status) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Status == s {
			out = append(out, e)
		}
	}
	return out
}
