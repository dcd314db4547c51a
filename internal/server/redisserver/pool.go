package redisserver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shardflow/redisnode/internal/telemetry/logger"
	"github.com/shardflow/redisnode/internal/telemetry/metric"
)

// WorkerPool owns a fixed set of Workers sharing one ClientRegistry and
// Dispatcher. It has no connection state of its own: every cross-worker
// operation (CLIENT LIST, CLIENT KILL, the monitor feed) is implemented by
// fanning out to each Worker's own table-locked API and combining results.
type WorkerPool struct {
	registry   *ClientRegistry
	dispatcher Dispatcher
	log        logger.Logger

	mu      sync.Mutex
	workers []*Worker

	wg sync.WaitGroup
}

// NewWorkerPool returns an empty pool. Use Spawn to add workers before
// calling Run. metrics may be nil to disable event-counter reporting.
func NewWorkerPool(dispatcher Dispatcher, log logger.Logger, metrics *metric.Registry) *WorkerPool {
	return &WorkerPool{
		registry:   NewClientRegistry(metrics),
		dispatcher: dispatcher,
		log:        log,
	}
}

// Registry returns the pool's shared ClientRegistry.
func (p *WorkerPool) Registry() *ClientRegistry {
	return p.registry
}

// Spawn creates, binds, and registers count workers listening on binds:port,
// isRepl marking whether this group serves the replication port rather than
// the client port (both share the same Worker/Connection machinery but are
// kept in separate pools by the caller so their client caps are independent).
func (p *WorkerPool) Spawn(count int, binds []string, port, backlog, maxClients int, idleTimeout time.Duration, isRepl bool) error {
	p.mu.Lock()
	base := len(p.workers)
	p.mu.Unlock()

	for i := 0; i < count; i++ {
		w, err := NewWorker(base+i, isRepl, p.registry, p.dispatcher, p, maxClients, idleTimeout, p.log)
		if err != nil {
			return fmt.Errorf("spawn worker %d: %w", base+i, err)
		}
		if err := w.Listen(binds, port, backlog); err != nil {
			return fmt.Errorf("spawn worker %d: %w", base+i, err)
		}
		p.mu.Lock()
		p.workers = append(p.workers, w)
		p.mu.Unlock()
	}
	return nil
}

// Run starts every worker's reactor loop on its own goroutine and blocks
// until ctx is cancelled or Stop is called, then waits for all of them to
// return.
func (p *WorkerPool) Run(ctx context.Context) {
	p.mu.Lock()
	workers := append([]*Worker(nil), p.workers...)
	p.mu.Unlock()

	for _, w := range workers {
		w := w
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			if err := w.Run(ctx); err != nil {
				p.log.Error("worker exited", "worker_id", w.id, "err", err)
			}
		}()
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
	case <-done:
	}
	p.Stop()
}

// Stop signals every worker to close its listeners and connections, then
// waits for their reactor goroutines to return.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	workers := append([]*Worker(nil), p.workers...)
	p.mu.Unlock()

	for _, w := range workers {
		w.Stop()
	}
	p.wg.Wait()
}

// ListClients concatenates every worker's ListClients output, giving the
// process-wide connection listing CLIENT LIST reports.
func (p *WorkerPool) ListClients() string {
	p.mu.Lock()
	workers := append([]*Worker(nil), p.workers...)
	p.mu.Unlock()

	var sb strings.Builder
	for _, w := range workers {
		sb.WriteString(w.ListClients())
	}
	return sb.String()
}

// Kill fans a CLIENT KILL filter out to every worker and sums the number of
// connections matched. skipSelf/self let a client kill every other
// connection without killing itself even when its own worker is in the
// fan-out.
func (p *WorkerPool) Kill(matchID uint64, matchAddr string, skipSelf bool, self *Connection) int64 {
	p.mu.Lock()
	workers := append([]*Worker(nil), p.workers...)
	p.mu.Unlock()

	var total int64
	for _, w := range workers {
		total += w.Kill(matchID, matchAddr, skipSelf, self)
	}
	return total
}

// FeedMonitors fans a MONITOR feed line out to every worker's local monitor
// table. A client cannot steer which worker it lands on once SO_REUSEPORT
// is in play, so a MONITOR connection on worker B must still see traffic
// accepted by worker A; this cross-worker hop is what makes that possible,
// at the cost of one worker.FeedMonitors call per command per worker in the
// pool.
func (p *WorkerPool) FeedMonitors(source *Connection, line string) {
	p.mu.Lock()
	workers := append([]*Worker(nil), p.workers...)
	p.mu.Unlock()

	for _, w := range workers {
		w.FeedMonitors(source, line)
	}
}

// WorkerCount returns the number of workers in the pool.
func (p *WorkerPool) WorkerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}
