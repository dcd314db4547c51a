package redisserver

import (
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/shardflow/redisnode/pkg/cmap"
)

// IPRateLimiter hands out one token-bucket limiter per client IP (the host
// portion of Connection.Addr, ignoring the ephemeral port), sharded to keep
// lock contention low on the per-command path under many distinct peers.
type IPRateLimiter struct {
	limiters *cmap.Map[string, *rate.Limiter]
	rps      rate.Limit
	burst    int
}

// NewIPRateLimiter builds a limiter admitting rps commands per second per IP
// with the given burst. rps <= 0 disables limiting entirely (Allow always
// reports true).
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: cmap.New[string, *rate.Limiter](),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether a command from addr ("host:port") may proceed now,
// lazily creating that host's limiter on first use.
func (l *IPRateLimiter) Allow(addr string) bool {
	if l.rps <= 0 {
		return true
	}
	host := hostOf(addr)
	limiter, ok := l.limiters.Get(host)
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.limiters.Set(host, limiter)
	}
	return limiter.Allow()
}

// Reset drops the limiter tracked for addr's host. Nothing in this package
// calls it, so a host's limiter otherwise stays in memory for the life of
// the IPRateLimiter.
func (l *IPRateLimiter) Reset(addr string) {
	l.limiters.Delete(hostOf(addr))
}

// TrackedHosts returns the number of distinct IPs currently holding a
// limiter. No metric exports it.
func (l *IPRateLimiter) TrackedHosts() int {
	return l.limiters.Count()
}

func hostOf(addr string) string {
	if idx := strings.LastIndexByte(addr, ':'); idx >= 0 {
		return addr[:idx]
	}
	return addr
}

// idleSweepInterval is a pruning interval for limiters of hosts that have
// had no connection for a while. It is not referenced: IPRateLimiter runs no
// background goroutine, and no cron (including the Worker.KickIdleClients
// tick) prunes limiters.
const idleSweepInterval = 5 * time.Minute
