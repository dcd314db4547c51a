// Package cmap provides a generic concurrent map.
//
// This package implements a sharded concurrent map with the following
// features:
//
//   - Sharding: configurable shard count for parallelism
//   - Fine-grained locking: per-shard RWMutex for minimal contention
//   - Iteration: safe iteration while holding read locks
//
// Usage:
//
//	m := cmap.New[string, *rate.Limiter]()
//	m.Set("10.0.0.5", limiter)
//	val, ok := m.Get("10.0.0.5")
//
// Thread Safety:
//
// All operations are thread-safe. Read operations (Get, Has) use RLock,
// write operations (Set, Delete) use Lock.
package cmap
