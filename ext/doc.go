// Package ext defines the extension system for stagger. Extensions are
// notified of per-job lifecycle events (submitted, rate-wait started,
// admitted, started, finished) and can react to them — result recording,
// metrics, tracing, etc. The event stream is rich enough for an operator
// to reconstruct the execution ordering of a whole run.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
package ext
