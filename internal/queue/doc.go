// Package queue keeps work items in memory in first-in-first-out order and
// supports pruning them in bulk with field filters.
//
// Items are loosely structured records (Item maps field names to Value, a
// small number/text/bool union). Filters combine strict equality with the
// $gt and $lt relational operators and are evaluated in two passes: a marking
// pass over a parallel buffer followed by a tail-to-head removal pass, so
// caller-owned items are never written to.
//
// The package never fails on malformed input: nil filters, missing fields and
// dequeueing from an empty queue are all quiet no-ops. A Queue is owned by a
// single goroutine; it performs no locking.
package queue
