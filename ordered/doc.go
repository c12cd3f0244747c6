// Package ordered implements the globally-ordered dispatch strategy: a
// single coordinator that repeatedly picks, among the idle workers'
// queue heads, the job whose category rate limiter will free up
// soonest, and hands it to an execution goroutine.
//
// Compared to the default independent-lanes strategy this trades
// per-lane simplicity for better interleaving when several categories
// with very different intervals share the batch. Per-worker FIFO, the
// category intervals, and the global concurrency cap hold identically
// under both strategies.
package ordered
