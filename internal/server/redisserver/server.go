package redisserver

import (
	"context"
	"fmt"
	"time"

	"github.com/shardflow/redisnode/internal/server/config"
	"github.com/shardflow/redisnode/internal/storage"
	"github.com/shardflow/redisnode/internal/telemetry/logger"
	"github.com/shardflow/redisnode/internal/telemetry/metric"
)

// Server owns the two WorkerPools backing the Redis wire-protocol front
// end: one serving the client port, one serving the replication port. Both
// share one KVDispatcher, but each pool has its own WorkerPool (and so its
// own ClientRegistry id space and maxclients budget) since clients and
// replication links never share a connection table.
type Server struct {
	cfg config.RedisSection
	log logger.Logger

	clientPool *WorkerPool
	replPool   *WorkerPool

	dispatcher *KVDispatcher
	rl         *IPRateLimiter
}

// New builds a Server from cfg and engine but does not yet bind sockets;
// call Start for that. metrics may be nil to disable Prometheus reporting.
func New(cfg config.RedisSection, engine storage.KVEngine, log logger.Logger, metrics *metric.Registry) *Server {
	var rl *IPRateLimiter
	if cfg.RateLimitRPS > 0 {
		rl = NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	dispatcher := NewKVDispatcher(engine, rl, metrics)

	return &Server{
		cfg:        cfg,
		log:        log,
		clientPool: NewWorkerPool(dispatcher, log.With("pool", "client"), metrics),
		replPool:   NewWorkerPool(dispatcher, log.With("pool", "repl"), metrics),
		dispatcher: dispatcher,
		rl:         rl,
	}
}

// Start binds every listener and spawns both worker pools' reactor
// goroutines. It returns once all listeners are bound; the reactors keep
// running until ctx is cancelled or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		return nil
	}

	timeout := time.Duration(s.cfg.TimeoutSeconds) * time.Second

	if err := s.clientPool.Spawn(s.cfg.WorkersN, s.cfg.Binds, s.cfg.Port, s.cfg.Backlog, s.cfg.MaxClients, timeout, false); err != nil {
		return fmt.Errorf("redisserver: spawn client pool: %w", err)
	}

	if s.cfg.ReplPort > 0 && s.cfg.ReplWorkersN > 0 {
		if err := s.replPool.Spawn(s.cfg.ReplWorkersN, s.cfg.ReplBinds, s.cfg.ReplPort, s.cfg.Backlog, 0, timeout, true); err != nil {
			return fmt.Errorf("redisserver: spawn repl pool: %w", err)
		}
	}

	go s.clientPool.Run(ctx)
	if s.cfg.ReplPort > 0 && s.cfg.ReplWorkersN > 0 {
		go s.replPool.Run(ctx)
	}

	s.log.Info("redis server started",
		"port", s.cfg.Port,
		"repl_port", s.cfg.ReplPort,
		"workers", s.cfg.WorkersN,
		"repl_workers", s.cfg.ReplWorkersN,
		"maxclients", s.cfg.MaxClients,
	)
	return nil
}

// Shutdown stops both worker pools, closing every listener and connection.
// The context argument is accepted for symmetry with the other servers'
// Shutdown signatures; WorkerPool.Stop does not currently support a
// deadline of its own and returns once every reactor goroutine has exited.
func (s *Server) Shutdown(ctx context.Context) error {
	s.clientPool.Stop()
	s.replPool.Stop()
	return nil
}

// Registry returns the client pool's ClientRegistry, used by the admin
// HTTP/local control surfaces to report connection counts.
func (s *Server) Registry() *ClientRegistry {
	return s.clientPool.Registry()
}

// ClientPool returns the pool serving the client port, used by admin
// surfaces that need to call ListClients/Kill directly.
func (s *Server) ClientPool() *WorkerPool {
	return s.clientPool
}

// ReplPool returns the pool serving the replication port.
func (s *Server) ReplPool() *WorkerPool {
	return s.replPool
}
