package redisserver

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/shardflow/redisnode/internal/telemetry/logger"
)

const (
	maxEpollEvents   = 256
	epollWaitMillis  = 1000
	idleScanBatch    = 50
	idleScanInterval = 10 * time.Second
)

// Worker is one single-threaded event-loop reactor: a set of bound
// listeners, a periodic idle-timeout cron, and the two connection tables
// (normal and monitor) it exclusively owns. All hot-path I/O for a
// Connection happens on the goroutine running Run; everything else reaches
// the tables through the table-locked operations below.
type Worker struct {
	id     int
	isRepl bool

	log logger.Logger

	registry   *ClientRegistry
	dispatcher Dispatcher
	pool       *WorkerPool

	maxClients  int
	idleTimeout time.Duration

	epfd int

	listenMu  sync.Mutex
	listeners map[int]struct{}

	mu       sync.Mutex
	conns    map[int]*Connection
	monitors map[int]*Connection
	cursor   int

	lastKick time.Time

	stopCh  chan struct{}
	stopped atomic.Bool
}

// NewWorker creates a Worker with its own epoll instance. Call Listen before
// Run to bind the listener set this worker will accept on.
func NewWorker(id int, isRepl bool, registry *ClientRegistry, dispatcher Dispatcher, pool *WorkerPool, maxClients int, idleTimeout time.Duration, log logger.Logger) (*Worker, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, fmt.Errorf("%w: epoll_create1: %v", ErrListenFailed, err)
	}
	role := "worker"
	if isRepl {
		role = "repl-worker"
	}
	return &Worker{
		id:          id,
		isRepl:      isRepl,
		log:         log.With("component", role, "worker_id", id),
		registry:    registry,
		dispatcher:  dispatcher,
		pool:        pool,
		maxClients:  maxClients,
		idleTimeout: idleTimeout,
		epfd:        epfd,
		listeners:   make(map[int]struct{}),
		conns:       make(map[int]*Connection),
		monitors:    make(map[int]*Connection),
		stopCh:      make(chan struct{}),
		lastKick:    time.Now(),
	}, nil
}

// Listen binds every address in binds on port with SO_REUSEADDR and
// SO_REUSEPORT so the kernel load-balances accepts across every worker in
// the pool that binds the same port.
func (w *Worker) Listen(binds []string, port int, backlog int) error {
	for _, bind := range binds {
		if err := w.listenOne(bind, port, backlog); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) listenOne(bind string, port, backlog int) error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("%w: socket: %v", ErrListenFailed, err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return fmt.Errorf("%w: SO_REUSEADDR: %v", ErrListenFailed, err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		unix.Close(fd)
		return fmt.Errorf("%w: SO_REUSEPORT: %v", ErrListenFailed, err)
	}

	ip := net.ParseIP(bind)
	if ip == nil || ip.To4() == nil {
		unix.Close(fd)
		return fmt.Errorf("%w: invalid IPv4 bind address %q", ErrListenFailed, bind)
	}
	addr := &unix.SockaddrInet4{Port: port}
	copy(addr.Addr[:], ip.To4())

	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return fmt.Errorf("%w: bind %s:%d: %v", ErrListenFailed, bind, port, err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return fmt.Errorf("%w: listen: %v", ErrListenFailed, err)
	}
	if err := unix.EpollCtl(w.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}); err != nil {
		unix.Close(fd)
		return fmt.Errorf("%w: epoll_ctl listener: %v", ErrListenFailed, err)
	}

	w.listenMu.Lock()
	w.listeners[fd] = struct{}{}
	w.listenMu.Unlock()

	w.log.Info("listening", "bind", bind, "port", port)
	return nil
}

// Run blocks on the reactor until Stop is called or ctx is cancelled,
// dispatching readiness events and firing the idle-timeout cron every 10s.
func (w *Worker) Run(ctx context.Context) error {
	events := make([]unix.EpollEvent, maxEpollEvents)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stopCh:
			return nil
		default:
		}

		n, err := unix.EpollWait(w.epfd, events, epollWaitMillis)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if w.stopped.Load() {
				return nil
			}
			return fmt.Errorf("epoll_wait: %w", err)
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			ev := events[i].Events
			if w.isListener(fd) {
				w.acceptLoop(fd)
				continue
			}
			w.handleConnEvent(fd, ev)
		}

		if time.Since(w.lastKick) >= idleScanInterval {
			w.KickIdleClients(int(w.idleTimeout / time.Second))
			w.lastKick = time.Now()
		}
	}
}

func (w *Worker) isListener(fd int) bool {
	w.listenMu.Lock()
	_, ok := w.listeners[fd]
	w.listenMu.Unlock()
	return ok
}

func (w *Worker) acceptLoop(listenerFD int) {
	for {
		connFD, sa, err := unix.Accept4(listenerFD, unix.SOCK_NONBLOCK)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			w.log.Warn("accept failed", "err", err)
			return
		}
		w.onAccept(connFD, sa)
	}
}

func (w *Worker) onAccept(fd int, sa unix.Sockaddr) {
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)

	addr := formatSockaddr(sa)
	conn := newConnection(fd, addr, w)

	if err := w.admit(conn); err != nil {
		msg := "-ERR " + err.Error() + "\r\n"
		_, _ = unix.Write(fd, []byte(msg))
		_ = unix.Close(fd)
		return
	}

	if err := unix.EpollCtl(w.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLRDHUP, Fd: int32(fd)}); err != nil {
		w.log.Warn("epoll_ctl add failed", "fd", fd, "err", err)
		w.Remove(fd)
		return
	}

	w.log.Debug("new connection", "fd", fd, "addr", addr, "id", conn.ID())
}

func formatSockaddr(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return fmt.Sprintf("%s:%d", net.IP(a.Addr[:]).String(), a.Port)
	case *unix.SockaddrInet6:
		return fmt.Sprintf("[%s]:%d", net.IP(a.Addr[:]).String(), a.Port)
	default:
		return "unknown"
	}
}

// admit implements the increment-then-compare-then-decrement-on-reject
// admission protocol: reject a duplicate fd outright, otherwise try the
// shared registry cap before inserting into the normal table.
func (w *Worker) admit(conn *Connection) error {
	w.mu.Lock()
	if _, exists := w.conns[conn.fd]; exists {
		w.mu.Unlock()
		return fmt.Errorf("%w: connection already exists", ErrAcceptRejected)
	}
	if !w.registry.tryAdmit(w.maxClients) {
		w.mu.Unlock()
		return fmt.Errorf("%w: max number of clients reached", ErrAcceptRejected)
	}
	conn.setID(w.registry.nextClientID())
	w.conns[conn.fd] = conn
	w.mu.Unlock()
	return nil
}

// Remove erases fd from whichever table holds it, releases the registry
// counters, and destroys the connection (closing its socket).
func (w *Worker) Remove(fd int) {
	w.mu.Lock()
	removed := w.removeLocked(fd)
	w.mu.Unlock()
	if removed != nil {
		w.closeConn(removed)
	}
}

// RemoveIfID is Remove's ABA-safe sibling: it only removes fd if the
// connection currently occupying it still has the expected id, preventing a
// kill scheduled against one connection from destroying an unrelated one
// that reused the same fd after the original closed.
func (w *Worker) RemoveIfID(fd int, id uint64) {
	w.mu.Lock()
	var removed *Connection
	if c, ok := w.conns[fd]; ok && c.ID() == id {
		removed = c
	} else if c, ok := w.monitors[fd]; ok && c.ID() == id {
		removed = c
	}
	if removed != nil {
		w.removeLocked(fd)
	}
	w.mu.Unlock()
	if removed != nil {
		w.closeConn(removed)
	}
}

// removeLocked must be called with w.mu held.
func (w *Worker) removeLocked(fd int) *Connection {
	if c, ok := w.conns[fd]; ok {
		delete(w.conns, fd)
		w.registry.releaseClient()
		return c
	}
	if c, ok := w.monitors[fd]; ok {
		delete(w.monitors, fd)
		w.registry.releaseClient()
		w.registry.demoteMonitor()
		return c
	}
	return nil
}

func (w *Worker) closeConn(c *Connection) {
	_ = unix.EpollCtl(w.epfd, unix.EPOLL_CTL_DEL, c.fd, nil)
	_ = unix.Close(c.fd)
}

// enableWriteLocal arms EPOLLOUT on fd without consulting the tables; it is
// called by Connection.Reply, which already knows conn belongs to this
// worker.
func (w *Worker) enableWriteLocal(fd int) {
	_ = unix.EpollCtl(w.epfd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLOUT | unix.EPOLLRDHUP,
		Fd:     int32(fd),
	})
}

// EnableWrite arms the writable event on fd, used by dispatchers that
// produced output for a connection from a goroutine other than its own
// worker's.
func (w *Worker) EnableWrite(fd int) error {
	w.mu.Lock()
	_, ok := w.conns[fd]
	if !ok {
		_, ok = w.monitors[fd]
	}
	w.mu.Unlock()
	if !ok {
		return ErrConnectionGone
	}
	w.enableWriteLocal(fd)
	return nil
}

// Reply appends bytes to fd's output buffer and arms its writable event.
// Safe to call from any goroutine.
func (w *Worker) Reply(fd int, fn func(*bufio.Writer) error) error {
	w.mu.Lock()
	c, ok := w.conns[fd]
	if !ok {
		c, ok = w.monitors[fd]
	}
	w.mu.Unlock()
	if !ok {
		return ErrConnectionGone
	}
	return c.Reply(fn)
}

// PromoteToMonitor moves conn from the normal table to the monitor table.
func (w *Worker) PromoteToMonitor(c *Connection) {
	w.mu.Lock()
	delete(w.conns, c.fd)
	w.monitors[c.fd] = c
	w.mu.Unlock()
	w.registry.promoteToMonitor()
	c.EnableFlag(FlagMonitor)
}

// FeedMonitors composes the monitor line for source's tokens and appends it
// to every local monitor-table connection whose namespace matches, skipping
// source itself. WorkerPool.FeedMonitors calls this once per worker to
// cover the cross-worker fan-out described in SPEC_FULL.md §4.E.
func (w *Worker) FeedMonitors(source *Connection, line string) {
	w.mu.Lock()
	targets := make([]*Connection, 0, len(w.monitors))
	for _, m := range w.monitors {
		if m == source {
			continue
		}
		if source.Namespace() == m.Namespace() || m.Namespace() == DefaultNamespace {
			targets = append(targets, m)
		}
	}
	w.mu.Unlock()
	for _, m := range targets {
		_ = m.Reply(func(bw *bufio.Writer) error {
			return WriteSimpleString(bw, line)
		})
	}
}

// ListClients renders one line per normal-table connection in ascending fd
// order, matching the field layout of the original implementation this was
// distilled from so existing tooling keeps parsing it correctly.
func (w *Worker) ListClients() string {
	w.mu.Lock()
	fds := make([]int, 0, len(w.conns))
	for fd := range w.conns {
		fds = append(fds, fd)
	}
	sort.Ints(fds)
	lines := make([]string, 0, len(fds))
	for _, fd := range fds {
		c := w.conns[fd]
		lines = append(lines, fmt.Sprintf(
			"id=%d addr=%s fd=%d name=%s age=%d idle=%d flags=%s namespace=%s qbuf=%d obuf=%d cmd=%s",
			c.ID(), c.Addr(), fd, c.Name(), c.Age(), c.IdleSeconds(), flagString(c.Flags()), c.Namespace(), c.QBufLen(), c.OBufLen(), c.LastCmd(),
		))
	}
	w.mu.Unlock()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func flagString(f Flag) string {
	if f == 0 {
		return "N"
	}
	var sb strings.Builder
	if f&FlagMonitor != 0 {
		sb.WriteByte('O')
	}
	if f&FlagCloseAfterReply != 0 {
		sb.WriteByte('c')
	}
	return sb.String()
}

// Kill flags every normal-table connection matching matchID or matchAddr
// (optionally skipping self) for cooperative close and arms its writable
// event so the reactor wakes promptly. It returns the number matched.
func (w *Worker) Kill(matchID uint64, matchAddr string, skipSelf bool, self *Connection) int64 {
	w.mu.Lock()
	var matched []*Connection
	for _, c := range w.conns {
		if skipSelf && c == self {
			continue
		}
		if (matchAddr != "" && c.Addr() == matchAddr) || (matchID != 0 && c.ID() == matchID) {
			matched = append(matched, c)
		}
	}
	w.mu.Unlock()

	for _, c := range matched {
		c.EnableFlag(FlagCloseAfterReply)
		w.enableWriteLocal(c.fd)
	}
	return int64(len(matched))
}

// KickIdleClients scans at most idleScanBatch connections starting strictly
// after the cursor fd (wrapping around), collecting those whose idle time
// has met timeoutSec, then removes them outside the lock. A table smaller
// than idleScanBatch is always fully scanned, and the cursor resets to zero
// whenever the table is empty.
func (w *Worker) KickIdleClients(timeoutSec int) {
	if timeoutSec <= 0 {
		return
	}

	w.mu.Lock()
	if len(w.conns) == 0 {
		w.cursor = 0
		w.mu.Unlock()
		return
	}

	fds := make([]int, 0, len(w.conns))
	for fd := range w.conns {
		fds = append(fds, fd)
	}
	sort.Ints(fds)

	start := 0
	found := false
	for i, fd := range fds {
		if fd > w.cursor {
			start = i
			found = true
			break
		}
	}
	if !found {
		start = 0
	}

	iterations := len(fds)
	if iterations > idleScanBatch {
		iterations = idleScanBatch
	}

	type victim struct {
		fd int
		id uint64
	}
	victims := make([]victim, 0, iterations)
	idx := start
	var lastFD int
	for n := 0; n < iterations; n++ {
		fd := fds[idx]
		c := w.conns[fd]
		if c.IdleSeconds() >= int64(timeoutSec) {
			victims = append(victims, victim{fd: fd, id: c.ID()})
		}
		lastFD = fd
		idx = (idx + 1) % len(fds)
	}
	if len(fds) < idleScanBatch {
		w.cursor = 0
	} else {
		w.cursor = lastFD
	}
	w.mu.Unlock()

	for _, v := range victims {
		w.RemoveIfID(v.fd, v.id)
		w.registry.incIdleKicked()
	}
}

// Stop closes every listener and connection owned by this worker and breaks
// Run's loop. Unsent replies are dropped. Only the first call has any
// effect; later calls return immediately.
func (w *Worker) Stop() {
	if !w.stopped.CompareAndSwap(false, true) {
		return
	}
	close(w.stopCh)

	w.listenMu.Lock()
	for fd := range w.listeners {
		_ = unix.Close(fd)
	}
	w.listenMu.Unlock()

	w.mu.Lock()
	remaining := make([]*Connection, 0, len(w.conns)+len(w.monitors))
	for _, c := range w.conns {
		remaining = append(remaining, c)
	}
	for _, c := range w.monitors {
		remaining = append(remaining, c)
	}
	w.conns = make(map[int]*Connection)
	w.monitors = make(map[int]*Connection)
	w.mu.Unlock()

	for _, c := range remaining {
		w.closeConn(c)
	}
	_ = unix.Close(w.epfd)
}

func (w *Worker) handleConnEvent(fd int, ev uint32) {
	w.mu.Lock()
	c, ok := w.conns[fd]
	if !ok {
		c, ok = w.monitors[fd]
	}
	w.mu.Unlock()
	if !ok {
		return
	}

	if ev&(unix.EPOLLHUP|unix.EPOLLERR|unix.EPOLLRDHUP) != 0 && ev&unix.EPOLLIN == 0 {
		w.Remove(fd)
		return
	}

	if ev&unix.EPOLLIN != 0 {
		if !w.onReadable(c) {
			return
		}
	}
	if ev&unix.EPOLLOUT != 0 {
		w.onWritable(c)
	}
}

func (w *Worker) onReadable(c *Connection) bool {
	buf := make([]byte, 16*1024)
	for {
		n, err := unix.Read(c.fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				break
			}
			w.Remove(c.fd)
			return false
		}
		if n == 0 {
			w.Remove(c.fd)
			return false
		}

		cmds, perr := c.feed(buf[:n])
		for _, args := range cmds {
			if len(args) == 0 {
				continue
			}
			c.touch()
			c.setLastCmd(normalizeCommandName(args[0]))
			w.dispatcher.Dispatch(c, w, w.pool, args)
			if c.HasFlag(FlagCloseAfterReply) && !c.hasOutput() {
				w.Remove(c.fd)
				return false
			}
		}
		if perr != nil {
			_ = c.Reply(func(bw *bufio.Writer) error {
				return WriteError(bw, "ERR Protocol error: "+perr.Error())
			})
		}

		if n < len(buf) {
			break
		}
	}

	if c.hasOutput() {
		w.flushOutput(c)
	}
	return true
}

func (w *Worker) onWritable(c *Connection) bool {
	if !w.flushOutput(c) {
		return false
	}
	if !c.hasOutput() {
		_ = unix.EpollCtl(w.epfd, unix.EPOLL_CTL_MOD, c.fd, &unix.EpollEvent{
			Events: unix.EPOLLIN | unix.EPOLLRDHUP,
			Fd:     int32(c.fd),
		})
		if c.HasFlag(FlagCloseAfterReply) {
			w.Remove(c.fd)
			return false
		}
	}
	return true
}

func (w *Worker) flushOutput(c *Connection) bool {
	data := c.drainOutput()
	if len(data) == 0 {
		return true
	}
	n, err := unix.Write(c.fd, data)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return true
		}
		w.Remove(c.fd)
		return false
	}
	c.consumeOutput(n)
	return true
}
