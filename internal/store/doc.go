// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic: RHS keeps its request log behind
// RequestStore, MOS keeps events, markets and processed requests behind
// EventStore and ProcessedRequestStore.
package store
