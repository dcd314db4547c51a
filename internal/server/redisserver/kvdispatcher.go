package redisserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shardflow/redisnode/internal/storage"
	"github.com/shardflow/redisnode/internal/telemetry/metric"
)

// KVDispatcher is the reference Dispatcher: a small keyspace command set
// (PING, ECHO, GET, SET, DEL), the CLIENT admin family, and MONITOR, backed
// by a storage.KVEngine. Every command other than MONITOR itself is also
// fanned out to the monitor feed before being executed, matching the
// ordering real clients observe; Worker.FeedMonitors skips only the issuing
// connection itself, so other monitors still see a monitor's own commands.
type KVDispatcher struct {
	engine  storage.KVEngine
	rl      *IPRateLimiter
	metrics *metric.Registry
}

// NewKVDispatcher wraps engine as a Dispatcher. rl and metrics may both be
// nil to disable per-IP rate limiting and command-throughput reporting
// respectively.
func NewKVDispatcher(engine storage.KVEngine, rl *IPRateLimiter, metrics *metric.Registry) *KVDispatcher {
	return &KVDispatcher{engine: engine, rl: rl, metrics: metrics}
}

// Dispatch implements Dispatcher.
func (d *KVDispatcher) Dispatch(conn *Connection, worker *Worker, pool *WorkerPool, args [][]byte) {
	if len(args) == 0 {
		return
	}
	name := normalizeCommandName(args[0])

	if d.rl != nil && !d.rl.Allow(conn.Addr()) {
		_ = conn.Reply(func(bw *bufio.Writer) error {
			return WriteError(bw, "ERR max requests limit exceeded")
		})
		return
	}

	if name != "MONITOR" {
		pool.FeedMonitors(conn, formatMonitorLine(conn, args))
	}

	if d.metrics != nil {
		d.metrics.CommandsTotal.WithLabelValues(name).Inc()
	}

	switch name {
	case "PING":
		d.handlePing(conn, args)
	case "ECHO":
		d.handleEcho(conn, args)
	case "GET":
		d.handleGet(conn, args)
	case "SET":
		d.handleSet(conn, args)
	case "DEL":
		d.handleDel(conn, args)
	case "CLIENT":
		d.handleClient(conn, worker, pool, args)
	case "MONITOR":
		d.handleMonitor(conn, worker)
	default:
		_ = conn.Reply(func(bw *bufio.Writer) error {
			return WriteError(bw, fmt.Sprintf("ERR unknown command '%s'", string(args[0])))
		})
	}
}

func (d *KVDispatcher) handlePing(conn *Connection, args [][]byte) {
	_ = conn.Reply(func(bw *bufio.Writer) error {
		if len(args) >= 2 {
			return WriteBulk(bw, args[1])
		}
		return WriteSimpleString(bw, "PONG")
	})
}

func (d *KVDispatcher) handleEcho(conn *Connection, args [][]byte) {
	_ = conn.Reply(func(bw *bufio.Writer) error {
		if len(args) != 2 {
			return WriteError(bw, "ERR wrong number of arguments for 'echo' command")
		}
		return WriteBulk(bw, args[1])
	})
}

func (d *KVDispatcher) handleGet(conn *Connection, args [][]byte) {
	if len(args) != 2 {
		_ = conn.Reply(func(bw *bufio.Writer) error {
			return WriteError(bw, "ERR wrong number of arguments for 'get' command")
		})
		return
	}
	value, err := d.engine.Get(context.Background(), namespacedKey(conn, args[1]))
	_ = conn.Reply(func(bw *bufio.Writer) error {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return WriteNullBulk(bw)
		}
		if err != nil {
			return WriteError(bw, "ERR "+err.Error())
		}
		return WriteBulk(bw, value)
	})
}

func (d *KVDispatcher) handleSet(conn *Connection, args [][]byte) {
	if len(args) != 3 {
		_ = conn.Reply(func(bw *bufio.Writer) error {
			return WriteError(bw, "ERR wrong number of arguments for 'set' command")
		})
		return
	}
	err := d.engine.Set(context.Background(), namespacedKey(conn, args[1]), args[2])
	_ = conn.Reply(func(bw *bufio.Writer) error {
		if err != nil {
			return WriteError(bw, "ERR "+err.Error())
		}
		return WriteSimpleString(bw, "OK")
	})
}

func (d *KVDispatcher) handleDel(conn *Connection, args [][]byte) {
	if len(args) < 2 {
		_ = conn.Reply(func(bw *bufio.Writer) error {
			return WriteError(bw, "ERR wrong number of arguments for 'del' command")
		})
		return
	}
	ctx := context.Background()
	var deleted int64
	for _, key := range args[1:] {
		nk := namespacedKey(conn, key)
		if _, err := d.engine.Get(ctx, nk); err != nil {
			continue
		}
		if err := d.engine.Delete(ctx, nk); err == nil {
			deleted++
		}
	}
	_ = conn.Reply(func(bw *bufio.Writer) error {
		return WriteInteger(bw, deleted)
	})
}

// namespacedKey prefixes key with the connection's namespace so distinct
// authorization tokens cannot see each other's keyspace.
func namespacedKey(conn *Connection, key []byte) []byte {
	out := make([]byte, 0, len(conn.Namespace())+1+len(key))
	out = append(out, conn.Namespace()...)
	out = append(out, ':')
	out = append(out, key...)
	return out
}

func (d *KVDispatcher) handleMonitor(conn *Connection, worker *Worker) {
	worker.PromoteToMonitor(conn)
	_ = conn.Reply(func(bw *bufio.Writer) error {
		return WriteSimpleString(bw, "OK")
	})
}

func (d *KVDispatcher) handleClient(conn *Connection, worker *Worker, pool *WorkerPool, args [][]byte) {
	if len(args) < 2 {
		_ = conn.Reply(func(bw *bufio.Writer) error {
			return WriteError(bw, "ERR wrong number of arguments for 'client' command")
		})
		return
	}
	sub := normalizeCommandName(args[1])
	switch sub {
	case "LIST":
		listing := pool.ListClients()
		_ = conn.Reply(func(bw *bufio.Writer) error {
			return WriteBulkString(bw, listing)
		})
	case "GETNAME":
		name := conn.Name()
		_ = conn.Reply(func(bw *bufio.Writer) error {
			if name == "" {
				return WriteNullBulk(bw)
			}
			return WriteBulkString(bw, name)
		})
	case "SETNAME":
		if len(args) != 3 {
			_ = conn.Reply(func(bw *bufio.Writer) error {
				return WriteError(bw, "ERR wrong number of arguments for 'client|setname' command")
			})
			return
		}
		conn.SetName(string(args[2]))
		_ = conn.Reply(func(bw *bufio.Writer) error {
			return WriteSimpleString(bw, "OK")
		})
	case "KILL":
		d.handleClientKill(conn, pool, args[2:])
	default:
		_ = conn.Reply(func(bw *bufio.Writer) error {
			return WriteError(bw, fmt.Sprintf("ERR unknown CLIENT subcommand '%s'", string(args[1])))
		})
	}
}

// handleClientKill parses "ID <id>" or "ADDR <addr>" filters (optionally
// followed by SKIPME yes|no, default yes) and fans the kill out across the
// whole pool.
func (d *KVDispatcher) handleClientKill(conn *Connection, pool *WorkerPool, filterArgs [][]byte) {
	var (
		matchID   uint64
		matchAddr string
		skipSelf  = true
	)

	for i := 0; i+1 < len(filterArgs); i += 2 {
		key := normalizeCommandName(filterArgs[i])
		val := string(filterArgs[i+1])
		switch key {
		case "ID":
			id, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				_ = conn.Reply(func(bw *bufio.Writer) error {
					return WriteError(bw, "ERR invalid client ID")
				})
				return
			}
			matchID = id
		case "ADDR":
			matchAddr = val
		case "SKIPME":
			skipSelf = strings.EqualFold(val, "yes")
		}
	}

	if matchID == 0 && matchAddr == "" {
		_ = conn.Reply(func(bw *bufio.Writer) error {
			return WriteError(bw, "ERR no such filter for 'client|kill'")
		})
		return
	}

	n := pool.Kill(matchID, matchAddr, skipSelf, conn)
	_ = conn.Reply(func(bw *bufio.Writer) error {
		return WriteInteger(bw, n)
	})
}

// formatMonitorLine renders a command in the style MONITOR clients expect:
// a fractional Unix timestamp, then the fixed db-index slot 0 and the
// issuing connection's address, then each argument double-quoted.
func formatMonitorLine(conn *Connection, args [][]byte) string {
	now := time.Now()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%06d [0 %s]", now.Unix(), now.Nanosecond()/1000, conn.Addr())
	for _, a := range args {
		sb.WriteByte(' ')
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(string(a), `"`, `\"`))
		sb.WriteByte('"')
	}
	return sb.String()
}
