// Package stagger dispatches a fixed batch of categorized jobs to a fixed
// pool of named workers under two shared admission constraints: each job
// category is globally rate limited (at most one start per category-specific
// interval, across all workers), and the total number of executions in
// flight is capped system-wide.
//
// Stagger is a library, not a service. Construct a Scheduler with functional
// options, register category handlers, and hand the batch to the engine:
//
//	s, err := stagger.New(
//	    stagger.WithWorkers("dave", "cris"),
//	    stagger.WithCategory("feed-the-cat", 2*time.Second),
//	    stagger.WithConcurrency(3),
//	    stagger.WithFacade(handlers),
//	)
//
// # Architecture
//
// Each worker owns a lane: an unbounded FIFO inbox consumed by a single
// loop, so jobs for one worker never reorder and never overlap. Lanes
// share two admission services: a per-category rate limiter registry and
// a global concurrency gate. The acquisition order is fixed (rate limiter,
// then concurrency slot) so lanes cannot deadlock against each other.
//
// An alternative globally-ordered strategy reorders ready jobs across
// workers by earliest rate-limiter availability; both strategies sit
// behind the same engine contract and are interchangeable.
package stagger
