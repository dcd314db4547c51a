// Package metric provides Prometheus metrics for redisnode-server.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry and HTTP handler
//   - collector.go: Redis client/connection collectors
//
// Metrics include:
//
//   - Redis client connection gauges/counters
//   - Command throughput counters
//   - Storage engine statistics (registered separately by internal/storage)
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
