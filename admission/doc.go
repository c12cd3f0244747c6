// Package admission provides the global concurrency gate shared by all
// worker lanes. The gate bounds how many job executions are in flight
// across the whole system; an execution holds one unit from admission
// until completion and releases it unconditionally, even on failure.
package admission
