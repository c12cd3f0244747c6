// Package job defines the unit of work dispatched to worker lanes and a
// category handler registry that implements the execution facade.
//
// A Job is immutable once created: the caller supplies the whole batch
// up front, each job is consumed exactly once by its worker's lane, and
// nothing is persisted after execution completes.
package job
