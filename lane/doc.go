// Package lane implements the default dispatch strategy: one sequential
// lane per worker, fed by an unbounded FIFO inbox.
//
// The Router validates the whole batch against the worker set before
// submitting anything, then routes each job into its worker's inbox in
// batch order. Each Lane drains its inbox one job at a time: it waits on
// the job's category rate limiter, then on the global admission gate,
// and only then executes the job through the Executor. The acquisition
// order is fixed (rate limiter first, admission slot second) so a lane
// never holds a concurrency slot while parked on a rate limiter.
package lane
