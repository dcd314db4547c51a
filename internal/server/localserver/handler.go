package localserver

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shardflow/redisnode/internal/server/redisserver"
)

// Handler dispatches local control-socket commands against a
// redisserver.Server. shutdown is called by the "shutdown" command; it is
// expected to trigger the process's shutdown.Handler rather than exit
// directly, so every OnShutdown hook still runs.
type Handler struct {
	server   *redisserver.Server
	shutdown func()
}

// NewHandler creates a new Handler.
func NewHandler(server *redisserver.Server, shutdown func()) *Handler {
	return &Handler{server: server, shutdown: shutdown}
}

// Execute runs a single local management command, writing its response to w.
func (h *Handler) Execute(w io.Writer, cmd string, args []string) error {
	switch cmd {
	case "status":
		return h.handleStatus(w)
	case "clients":
		return h.handleClients(w)
	case "kill":
		return h.handleKill(w, args)
	case "shutdown":
		return h.handleShutdown(w)
	default:
		_, err := fmt.Fprintf(w, "ERR unknown command '%s'\n", cmd)
		return err
	}
}

func (h *Handler) handleStatus(w io.Writer) error {
	reg := h.server.Registry()
	_, err := fmt.Fprintf(w, "clients=%d monitors=%d workers=%d repl_workers=%d\n",
		reg.ClientCount(), reg.MonitorCount(),
		h.server.ClientPool().WorkerCount(), h.server.ReplPool().WorkerCount())
	return err
}

func (h *Handler) handleClients(w io.Writer) error {
	_, err := io.WriteString(w, h.server.ClientPool().ListClients())
	return err
}

// handleKill parses "id=<n>" or "addr=<addr>" out of args and kills every
// matching connection in the client pool.
func (h *Handler) handleKill(w io.Writer, args []string) error {
	var (
		matchID   uint64
		matchAddr string
	)
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		if !ok {
			continue
		}
		switch key {
		case "id":
			id, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				_, werr := fmt.Fprintf(w, "ERR invalid id '%s'\n", val)
				return werr
			}
			matchID = id
		case "addr":
			matchAddr = val
		}
	}

	if matchID == 0 && matchAddr == "" {
		_, err := io.WriteString(w, "ERR usage: kill id=<id> | addr=<addr>\n")
		return err
	}

	n := h.server.ClientPool().Kill(matchID, matchAddr, false, nil)
	_, err := fmt.Fprintf(w, "killed=%d\n", n)
	return err
}

func (h *Handler) handleShutdown(w io.Writer) error {
	if _, err := io.WriteString(w, "OK shutting down\n"); err != nil {
		return err
	}
	if h.shutdown != nil {
		go h.shutdown()
	}
	return nil
}
