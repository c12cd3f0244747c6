package stagger

import "time"

// CategoryConfig declares one job category and the minimum interval
// between successive starts of that category, measured across all
// workers combined. A zero interval leaves the category unthrottled.
type CategoryConfig struct {
	// Name is the category identifier (must match the job.Category field).
	Name string

	// Interval is the minimum gap between two starts of this category.
	Interval time.Duration
}

// Config holds the static configuration for a Scheduler: the known
// worker names, the known categories with their rate-limit intervals,
// and the global concurrency capacity.
type Config struct {
	// Workers is the fixed set of worker names. Each worker owns exactly
	// one lane. Jobs naming a worker outside this set fail the batch.
	Workers []string

	// Categories is the fixed set of job categories. Jobs naming a
	// category outside this set are skipped and reported, not executed.
	Categories []CategoryConfig

	// Concurrency caps the number of executions in flight across the
	// whole system, regardless of how many lanes are waiting.
	Concurrency int

	// ExecTimeout bounds a single facade execution. Zero disables the
	// deadline.
	ExecTimeout time.Duration
}

// DefaultConfig returns a Config with the default concurrency cap.
// Workers and categories have no defaults; they are required inputs.
func DefaultConfig() Config {
	return Config{
		Concurrency: 3,
	}
}

// Validate reports the first structural problem with the configuration.
func (c Config) Validate() error {
	if len(c.Workers) == 0 {
		return ErrNoWorkers
	}
	if len(c.Categories) == 0 {
		return ErrNoCategories
	}
	if c.Concurrency < 1 {
		return ErrBadCapacity
	}
	return nil
}
