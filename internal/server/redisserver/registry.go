package redisserver

import (
	"sync/atomic"

	"github.com/shardflow/redisnode/internal/telemetry/metric"
)

// ClientRegistry holds the process-wide atomics shared by every Worker in a
// WorkerPool: the monotonic id allocator and the two admission counters.
// There is deliberately no global table of connections here — each Worker
// owns its own tables; ClientRegistry only arbitrates the shared resource
// budget and id space.
type ClientRegistry struct {
	nextID       atomic.Uint64
	clientCount  atomic.Int64
	monitorCount atomic.Int64

	metrics *metric.Registry
}

// NewClientRegistry returns an empty registry. metrics may be nil to disable
// event-counter reporting.
func NewClientRegistry(metrics *metric.Registry) *ClientRegistry {
	return &ClientRegistry{metrics: metrics}
}

// nextClientID allocates the next id. Ids are unique and increasing but not
// synchronized with admission order across workers; uniqueness is all the
// contract requires.
func (r *ClientRegistry) nextClientID() uint64 {
	return r.nextID.Add(1)
}

// tryAdmit implements the increment-then-compare-then-decrement-on-reject
// protocol: it tolerates brief over-counting across concurrent admissions on
// different workers, bounded by the pool size, in exchange for a lock-free
// fast path. maxClients <= 0 disables the cap.
func (r *ClientRegistry) tryAdmit(maxClients int) bool {
	if maxClients <= 0 {
		r.clientCount.Add(1)
		r.incAdmitted()
		return true
	}
	if r.clientCount.Add(1) > int64(maxClients) {
		r.clientCount.Add(-1)
		r.incRejected()
		return false
	}
	r.incAdmitted()
	return true
}

func (r *ClientRegistry) incAdmitted() {
	if r.metrics != nil {
		r.metrics.ClientsAdmittedTotal.Inc()
	}
}

func (r *ClientRegistry) incRejected() {
	if r.metrics != nil {
		r.metrics.ClientsRejectedTotal.Inc()
	}
}

func (r *ClientRegistry) incIdleKicked() {
	if r.metrics != nil {
		r.metrics.ClientsIdleKickedTotal.Inc()
	}
}

func (r *ClientRegistry) releaseClient() {
	r.clientCount.Add(-1)
}

func (r *ClientRegistry) promoteToMonitor() {
	r.monitorCount.Add(1)
}

func (r *ClientRegistry) demoteMonitor() {
	r.monitorCount.Add(-1)
}

// ClientCount returns the number of live connections across every worker.
func (r *ClientRegistry) ClientCount() int64 {
	return r.clientCount.Load()
}

// MonitorCount returns the number of connections currently promoted to
// monitor status across every worker.
func (r *ClientRegistry) MonitorCount() int64 {
	return r.monitorCount.Load()
}
