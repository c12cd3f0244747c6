package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/staggerhq/stagger"
)

// gate tracks the limiter state for a single category.
type gate struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// Registry holds one rate-limit gate per registered category. The set of
// categories is fixed at construction; lanes share a single Registry by
// reference. Safe for concurrent use.
type Registry struct {
	gates map[string]*gate
}

// NewRegistry creates a Registry from the category configurations.
// A zero interval leaves the category unthrottled.
func NewRegistry(configs ...stagger.CategoryConfig) *Registry {
	r := &Registry{
		gates: make(map[string]*gate, len(configs)),
	}
	for _, cfg := range configs {
		r.gates[cfg.Name] = newGate(cfg.Interval)
	}
	return r
}

func newGate(interval time.Duration) *gate {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	// Burst 1: the bucket starts full, so the first acquisition of a
	// category is admitted immediately.
	return &gate{
		interval: interval,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Known reports whether the category is registered.
func (r *Registry) Known(category string) bool {
	_, ok := r.gates[category]
	return ok
}

// Interval returns the configured start interval for the category.
func (r *Registry) Interval(category string) (time.Duration, error) {
	g, ok := r.gates[category]
	if !ok {
		return 0, fmt.Errorf("%w: %q", stagger.ErrUnknownCategory, category)
	}
	return g.interval, nil
}

// Categories returns all registered category names.
func (r *Registry) Categories() []string {
	names := make([]string, 0, len(r.gates))
	for name := range r.gates {
		names = append(names, name)
	}
	return names
}

// Acquire suspends until the category's interval constraint is satisfied,
// then consumes the start permit. Concurrent callers for the same
// category are admitted in call order; callers for different categories
// never block each other. Returns stagger.ErrUnknownCategory for an
// unregistered category and the context error if ctx ends first.
func (r *Registry) Acquire(ctx context.Context, category string) error {
	g, ok := r.gates[category]
	if !ok {
		return fmt.Errorf("%w: %q", stagger.ErrUnknownCategory, category)
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %q: %w", category, err)
	}
	return nil
}

// When returns an advisory estimate of how long a caller would wait
// before the category's next start permit. It does not consume the
// permit: the reservation is cancelled immediately, which restores the
// token. The estimate can be stale by the time the caller acts on it;
// Acquire remains the only authoritative admission path.
func (r *Registry) When(category string) (time.Duration, error) {
	g, ok := r.gates[category]
	if !ok {
		return 0, fmt.Errorf("%w: %q", stagger.ErrUnknownCategory, category)
	}

	now := time.Now()
	res := g.limiter.ReserveN(now, 1)
	if !res.OK() {
		return 0, fmt.Errorf("ratelimit: reservation failed for %q", category)
	}
	d := res.DelayFrom(now)
	res.CancelAt(now)
	return d, nil
}
