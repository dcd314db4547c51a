package redisserver

import "errors"

// Error taxonomy for the core connection-multiplexing subsystem. Callers use
// errors.Is against these sentinels rather than a bespoke status enum.
var (
	// ErrAcceptRejected means admission failed: a duplicate fd, or the
	// client cap was reached. The peer is told why and then disconnected.
	ErrAcceptRejected = errors.New("redisserver: connection rejected at admission")

	// ErrConnectionGone means the fd/id named by an admin operation is no
	// longer present in any table.
	ErrConnectionGone = errors.New("redisserver: connection not found")

	// ErrListenFailed means socket, bind, listen, or setsockopt failed at
	// startup. Fatal: the caller should abort the process.
	ErrListenFailed = errors.New("redisserver: listen failed")

	// ErrPeerClosed means the remote end closed the connection normally.
	ErrPeerClosed = errors.New("redisserver: peer closed connection")

	// ErrIOError covers unexpected read/write failures on a connection's
	// socket, distinct from a clean peer close.
	ErrIOError = errors.New("redisserver: connection io error")
)
