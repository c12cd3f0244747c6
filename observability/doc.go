// Package observability provides a metrics extension for the scheduler.
//
// MetricsExtension hooks into the job lifecycle and records OpenTelemetry
// counters for submissions, skips, admissions, completions, and failures,
// plus an in-flight gauge. Register it alongside the report recorder:
//
//	eng, err := engine.Build(s, engine.WithExtension(observability.NewMetricsExtension()))
package observability
