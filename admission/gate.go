package admission

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate is a counting admission gate with a capacity fixed at
// construction. Safe for concurrent use from all lanes; waiters are
// admitted in FIFO order as units free up.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int
	active   atomic.Int64
}

// NewGate creates a Gate with the given capacity.
// It panics if capacity is less than 1 (programming error; the
// scheduler validates its configuration before construction).
func NewGate(capacity int) *Gate {
	if capacity < 1 {
		panic(fmt.Sprintf("admission: capacity must be at least 1, got %d", capacity))
	}
	return &Gate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
	}
}

// Capacity returns the fixed maximum number of concurrent executions.
func (g *Gate) Capacity() int { return g.capacity }

// Active returns the number of units currently held.
func (g *Gate) Active() int { return int(g.active.Load()) }

// Acquire suspends until a unit is free and returns a releasable Slot.
// Returns the context error if ctx ends before a unit frees.
func (g *Gate) Acquire(ctx context.Context) (*Slot, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("admission: %w", err)
	}
	g.active.Add(1)
	return &Slot{gate: g}, nil
}

// TryAcquire acquires a unit without blocking. Returns nil if no unit
// is free.
func (g *Gate) TryAcquire() *Slot {
	if !g.sem.TryAcquire(1) {
		return nil
	}
	g.active.Add(1)
	return &Slot{gate: g}
}

// Slot is one held concurrency unit. Release it exactly when the
// execution finishes; releasing more than once is a no-op.
type Slot struct {
	gate *Gate
	once sync.Once
}

// Release returns the unit to the gate. Idempotent.
func (s *Slot) Release() {
	s.once.Do(func() {
		s.gate.active.Add(-1)
		s.gate.sem.Release(1)
	})
}
