package stagger

import "errors"

var (
	// Configuration errors.
	ErrNoWorkers    = errors.New("stagger: no workers configured")
	ErrNoCategories = errors.New("stagger: no categories configured")
	ErrBadCapacity  = errors.New("stagger: concurrency capacity must be at least 1")
	ErrNoFacade     = errors.New("stagger: no execution facade configured")

	// Batch errors.
	ErrUnknownWorker   = errors.New("stagger: job names an unknown worker")
	ErrUnknownCategory = errors.New("stagger: job names an unknown category")
	ErrDuplicateJobID  = errors.New("stagger: duplicate job id in batch")

	// Lane errors.
	ErrLaneClosed = errors.New("stagger: lane closed for submission")
)
