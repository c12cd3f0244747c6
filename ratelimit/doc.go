// Package ratelimit provides the per-category rate limiter registry
// shared by all worker lanes.
//
// Each category owns an independent token-bucket gate (burst 1, one
// refill per configured interval), so no two executions of the same
// category start closer together than the interval, measured globally
// across all workers. The first acquisition of a category is admitted
// immediately. Categories never contend with each other: the registry
// map is immutable after construction and every limiter synchronizes
// itself.
package ratelimit
