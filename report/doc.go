// Package report aggregates per-job results for a scheduler run.
//
// The Recorder is an extension: registered with the lifecycle registry,
// it captures each job's phase timestamps (submitted, rate-wait,
// admitted, started, finished) and terminal status. The resulting Report
// enumerates every job in the batch — succeeded, execution-failed, or
// skipped for an unknown category — with timings precise enough to
// reconstruct the run's ordering.
package report
