package redisserver

import (
	"bufio"
	"bytes"
	"sync"
	"sync/atomic"
	"time"
)

// Flag is a bit set of per-connection states that must be safe to read and
// write from outside the owning Worker's goroutine (an admin kill, a
// cross-worker monitor promotion fan-out).
type Flag uint32

const (
	// FlagMonitor marks a connection that has been promoted to the
	// monitor table and is receiving the command feed.
	FlagMonitor Flag = 1 << iota
	// FlagCloseAfterReply marks a connection for cooperative teardown:
	// once its output buffer drains, the owning worker removes it.
	FlagCloseAfterReply
)

// DefaultNamespace is the privileged namespace whose monitors observe every
// command regardless of the issuing connection's own namespace.
const DefaultNamespace = "default"

// Connection is one accepted TCP client and its server-side state. Every
// field other than flags, name, namespace, and the output buffer is touched
// only by the owning Worker's goroutine; those four are also written from
// admin paths (CLIENT KILL, CLIENT SETNAME, cross-worker monitor fan-out)
// and so are synchronized independently of the Worker's table mutex.
type Connection struct {
	fd   int
	addr string

	id atomic.Uint64

	name      atomic.Pointer[string]
	namespace atomic.Pointer[string]

	createdAt       int64
	lastInteraction atomic.Int64

	flags   atomic.Uint32
	lastCmd atomic.Pointer[string]

	// readBuf accumulates bytes across readiness events until a full RESP
	// frame is available. Touched only by the owning worker's goroutine.
	readBuf []byte
	qbufLen atomic.Int64

	outMu  sync.Mutex
	outBuf bytes.Buffer

	worker *Worker
}

func newConnection(fd int, addr string, w *Worker) *Connection {
	c := &Connection{
		fd:        fd,
		addr:      addr,
		createdAt: time.Now().Unix(),
		worker:    w,
	}
	c.lastInteraction.Store(c.createdAt)
	empty := ""
	c.name.Store(&empty)
	ns := DefaultNamespace
	c.namespace.Store(&ns)
	cmd := ""
	c.lastCmd.Store(&cmd)
	return c
}

// FD returns the OS socket handle. Stable for the connection's lifetime.
func (c *Connection) FD() int { return c.fd }

// ID returns the process-wide unique client id, or 0 before admission.
func (c *Connection) ID() uint64 { return c.id.Load() }

func (c *Connection) setID(id uint64) { c.id.Store(id) }

// Addr returns the remote peer's "host:port".
func (c *Connection) Addr() string { return c.addr }

// Name returns the client-assigned label, default empty.
func (c *Connection) Name() string { return *c.name.Load() }

// SetName sets the client-assigned label (CLIENT SETNAME).
func (c *Connection) SetName(name string) { c.name.Store(&name) }

// Namespace returns the authorization token scoping this connection's
// command visibility.
func (c *Connection) Namespace() string { return *c.namespace.Load() }

// SetNamespace sets the authorization token.
func (c *Connection) SetNamespace(ns string) { c.namespace.Store(&ns) }

// Flags returns the current bit set.
func (c *Connection) Flags() Flag { return Flag(c.flags.Load()) }

// EnableFlag atomically sets a flag bit. Safe to call from any goroutine.
func (c *Connection) EnableFlag(f Flag) {
	for {
		old := c.flags.Load()
		next := old | uint32(f)
		if old == next || c.flags.CompareAndSwap(old, next) {
			return
		}
	}
}

// HasFlag reports whether a flag bit is set.
func (c *Connection) HasFlag(f Flag) bool {
	return c.flags.Load()&uint32(f) != 0
}

// LastCmd returns the most recently dispatched command name.
func (c *Connection) LastCmd() string { return *c.lastCmd.Load() }

func (c *Connection) setLastCmd(cmd string) { c.lastCmd.Store(&cmd) }

func (c *Connection) touch() {
	c.lastInteraction.Store(time.Now().Unix())
}

// Age returns seconds since the connection was accepted.
func (c *Connection) Age() int64 {
	return time.Now().Unix() - c.createdAt
}

// IdleSeconds returns seconds since the connection's last command.
func (c *Connection) IdleSeconds() int64 {
	return time.Now().Unix() - c.lastInteraction.Load()
}

// Reply appends bytes produced by fn to the output buffer and arms the
// worker's writable interest for this connection so the reactor flushes it.
// Safe to call from any goroutine: the output buffer has its own mutex
// independent of the owning worker's table mutex, matching the spec's
// requirement that the hot path on the owning thread stays lock-free while
// external writers (an offloaded dispatcher reply, a cross-worker monitor
// line) can still append safely.
func (c *Connection) Reply(fn func(*bufio.Writer) error) error {
	c.outMu.Lock()
	bw := bufio.NewWriter(&c.outBuf)
	err := fn(bw)
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	c.outMu.Unlock()
	if c.worker != nil {
		c.worker.enableWriteLocal(c.fd)
	}
	return err
}

// hasOutput reports whether there are buffered bytes waiting to be written.
func (c *Connection) hasOutput() bool {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	return c.outBuf.Len() > 0
}

// OBufLen returns the number of bytes currently queued for write. Safe to
// call from any goroutine; used by CLIENT LIST reporting.
func (c *Connection) OBufLen() int {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	return c.outBuf.Len()
}

// QBufLen returns the number of unparsed bytes accumulated for the next
// frame, as of the last completed feed call. Only the owning worker's
// goroutine calls feed, so this may read a slightly stale value when called
// concurrently from an admin path — acceptable for a reporting field.
func (c *Connection) QBufLen() int {
	return int(c.qbufLen.Load())
}

// drainOutput returns a snapshot of the pending output bytes without
// clearing the buffer; the caller must call consumeOutput with however many
// bytes it actually wrote.
func (c *Connection) drainOutput() []byte {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	return append([]byte(nil), c.outBuf.Bytes()...)
}

// consumeOutput removes n written bytes from the front of the buffer.
func (c *Connection) consumeOutput(n int) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	b := c.outBuf.Bytes()
	if n >= len(b) {
		c.outBuf.Reset()
		return
	}
	remaining := append([]byte(nil), b[n:]...)
	c.outBuf.Reset()
	c.outBuf.Write(remaining)
}

// feed appends newly-read bytes to the accumulation buffer and parses out
// every complete command currently available, returning them in arrival
// order plus the bytes remaining for the next readiness event. A non-nil,
// non-incomplete error means the frame at the front of the buffer is
// malformed; the caller reports it to the client as a RESP error and
// discards the buffer (the spec does not require closing the connection for
// recoverable framer errors).
func (c *Connection) feed(data []byte) (cmds [][][]byte, protoErr error) {
	c.readBuf = append(c.readBuf, data...)
	for len(c.readBuf) > 0 {
		args, n, err := ParseCommand(c.readBuf)
		if err == errIncomplete {
			break
		}
		if err != nil {
			c.readBuf = c.readBuf[:0]
			c.qbufLen.Store(0)
			return cmds, err
		}
		c.readBuf = c.readBuf[n:]
		if args != nil {
			cmds = append(cmds, args)
		}
	}
	c.qbufLen.Store(int64(len(c.readBuf)))
	return cmds, nil
}
