package lane

import (
	"fmt"
	"sync"

	"github.com/staggerhq/stagger"
	"github.com/staggerhq/stagger/job"
)

// Inbox is an unbounded FIFO queue feeding one lane. Put never blocks;
// Next blocks until an item arrives or the inbox is closed and drained.
// Safe for concurrent use.
type Inbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*job.Job
	closed bool
}

// NewInbox creates an empty open inbox.
func NewInbox() *Inbox {
	i := &Inbox{}
	i.cond = sync.NewCond(&i.mu)
	return i
}

// Put appends a job to the tail. Returns stagger.ErrLaneClosed if the
// inbox has been closed.
func (i *Inbox) Put(j *job.Job) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return fmt.Errorf("%w: job %d", stagger.ErrLaneClosed, j.ID)
	}
	i.items = append(i.items, j)
	i.cond.Signal()
	return nil
}

// Close marks the inbox as complete. Queued jobs remain readable;
// further Put calls fail. Idempotent.
func (i *Inbox) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.closed = true
	i.cond.Broadcast()
}

// Next removes and returns the head job. It blocks while the inbox is
// open and empty, and reports ok=false once the inbox is closed and
// drained.
func (i *Inbox) Next() (*job.Job, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for len(i.items) == 0 && !i.closed {
		i.cond.Wait()
	}
	if len(i.items) == 0 {
		return nil, false
	}
	j := i.items[0]
	i.items = i.items[1:]
	return j, true
}

// Len returns the number of queued jobs.
func (i *Inbox) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.items)
}
