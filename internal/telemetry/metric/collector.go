package metric

import "time"

// ClientStatsProvider is the subset of redisserver.ClientRegistry this
// package depends on, kept as a small interface so metric does not import
// redisserver.
type ClientStatsProvider interface {
	ClientCount() int64
	MonitorCount() int64
}

// Collector periodically samples a ClientStatsProvider into the
// ClientsConnected/ClientsMonitors gauges. The _total counters
// (admitted/rejected/idle-kicked/commands) are incremented directly by
// their callers instead, since they record events rather than levels.
type Collector struct {
	reg      *Registry
	provider ClientStatsProvider
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector builds a Collector sampling provider into reg every
// interval once Start is called.
func NewCollector(reg *Registry, provider ClientStatsProvider, interval time.Duration) *Collector {
	return &Collector{
		reg:      reg,
		provider: provider,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the sampling loop in a new goroutine.
func (c *Collector) Start() {
	go c.run()
}

// Stop halts the sampling loop.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.sample()
	for {
		select {
		case <-ticker.C:
			c.sample()
		case <-c.stopCh:
			return
		}
	}
}

func (c *Collector) sample() {
	c.reg.ClientsConnected.Set(float64(c.provider.ClientCount()))
	c.reg.ClientsMonitors.Set(float64(c.provider.MonitorCount()))
}
