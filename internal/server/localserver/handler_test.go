package localserver

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/shardflow/redisnode/internal/server/config"
	"github.com/shardflow/redisnode/internal/server/redisserver"
	"github.com/shardflow/redisnode/internal/storage"
	"github.com/shardflow/redisnode/internal/telemetry/logger"
)

type fakeEngine struct{}

func (fakeEngine) AppendEntry(ctx context.Context, key, value []byte) (uint64, error) { return 0, nil }
func (fakeEngine) Get(ctx context.Context, key []byte) ([]byte, error)                { return nil, nil }
func (fakeEngine) Set(ctx context.Context, key, value []byte) error                   { return nil }
func (fakeEngine) Delete(ctx context.Context, key []byte) error                       { return nil }
func (fakeEngine) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	return nil
}
func (fakeEngine) SaveSnapshot(ctx context.Context) (io.ReadCloser, error) { return nil, nil }
func (fakeEngine) LoadSnapshot(ctx context.Context, r io.Reader) error    { return nil }
func (fakeEngine) Prune(ctx context.Context, beforeOffset uint64) error   { return nil }
func (fakeEngine) GC(ctx context.Context) (uint64, error)                { return 0, nil }
func (fakeEngine) Stats(ctx context.Context) (*storage.KVStats, error)    { return &storage.KVStats{}, nil }
func (fakeEngine) Close() error                                          { return nil }

func newTestServer(t *testing.T) *redisserver.Server {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "json", Output: io.Discard})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return redisserver.New(config.RedisSection{Enabled: true, WorkersN: 1}, fakeEngine{}, log, nil)
}

func TestHandler_Status(t *testing.T) {
	h := NewHandler(newTestServer(t), nil)
	var buf bytes.Buffer
	if err := h.Execute(&buf, "status", nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got := buf.String()
	if !strings.HasPrefix(got, "clients=0 monitors=0 workers=0 repl_workers=0") {
		t.Errorf("status = %q", got)
	}
}

func TestHandler_Clients(t *testing.T) {
	h := NewHandler(newTestServer(t), nil)
	var buf bytes.Buffer
	if err := h.Execute(&buf, "clients", nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if buf.String() != "" {
		t.Errorf("clients = %q, want empty with no spawned workers", buf.String())
	}
}

func TestHandler_KillRequiresFilter(t *testing.T) {
	h := NewHandler(newTestServer(t), nil)
	var buf bytes.Buffer
	if err := h.Execute(&buf, "kill", nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(buf.String(), "usage") {
		t.Errorf("kill with no args = %q, want usage error", buf.String())
	}
}

func TestHandler_KillInvalidID(t *testing.T) {
	h := NewHandler(newTestServer(t), nil)
	var buf bytes.Buffer
	if err := h.Execute(&buf, "kill", []string{"id=not-a-number"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(buf.String(), "invalid id") {
		t.Errorf("kill with bad id = %q", buf.String())
	}
}

func TestHandler_KillNoMatches(t *testing.T) {
	h := NewHandler(newTestServer(t), nil)
	var buf bytes.Buffer
	if err := h.Execute(&buf, "kill", []string{"id=42"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if buf.String() != "killed=0\n" {
		t.Errorf("kill id=42 = %q, want killed=0", buf.String())
	}
}

func TestHandler_Shutdown(t *testing.T) {
	done := make(chan struct{})
	h := NewHandler(newTestServer(t), func() { close(done) })
	var buf bytes.Buffer
	if err := h.Execute(&buf, "shutdown", nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if buf.String() != "OK shutting down\n" {
		t.Errorf("shutdown response = %q", buf.String())
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("shutdown callback was not invoked")
	}
}

func TestHandler_UnknownCommand(t *testing.T) {
	h := NewHandler(newTestServer(t), nil)
	var buf bytes.Buffer
	if err := h.Execute(&buf, "bogus", nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(buf.String(), "unknown command") {
		t.Errorf("bogus command = %q", buf.String())
	}
}

func TestServer_ListenAndServeAndShutdown(t *testing.T) {
	sockPath := t.TempDir() + "/test.sock"
	h := NewHandler(newTestServer(t), nil)
	s := New(sockPath, h)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ListenAndServe()
	}()

	// give Accept a moment to start
	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("unix", sockPath)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	if _, err := conn.Write([]byte("status\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	buf := make([]byte, 256)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(buf[:n]), "clients=0") {
		t.Errorf("response = %q", string(buf[:n]))
	}
	conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("ListenAndServe returned: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for ListenAndServe to return")
	}
}
