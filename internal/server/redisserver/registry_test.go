package redisserver

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shardflow/redisnode/internal/telemetry/metric"
)

func TestClientRegistry_NextClientIDUnique(t *testing.T) {
	r := NewClientRegistry(nil)
	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		id := r.nextClientID()
		if id == 0 {
			t.Fatalf("nextClientID returned 0")
		}
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}

func TestClientRegistry_TryAdmitUncapped(t *testing.T) {
	r := NewClientRegistry(nil)
	for i := 0; i < 10; i++ {
		if !r.tryAdmit(0) {
			t.Fatalf("tryAdmit(0) rejected at i=%d, want always admitted", i)
		}
	}
	if r.ClientCount() != 10 {
		t.Fatalf("ClientCount() = %d, want 10", r.ClientCount())
	}
}

func TestClientRegistry_TryAdmitCapped(t *testing.T) {
	r := NewClientRegistry(nil)
	for i := 0; i < 3; i++ {
		if !r.tryAdmit(3) {
			t.Fatalf("tryAdmit(3) rejected at i=%d, want admitted", i)
		}
	}
	if r.tryAdmit(3) {
		t.Fatalf("tryAdmit(3) admitted a 4th connection, want rejected")
	}
	if r.ClientCount() != 3 {
		t.Fatalf("ClientCount() = %d, want 3 (rejected admission must not linger)", r.ClientCount())
	}
}

func TestClientRegistry_ReleaseClient(t *testing.T) {
	r := NewClientRegistry(nil)
	r.tryAdmit(0)
	r.tryAdmit(0)
	r.releaseClient()
	if r.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", r.ClientCount())
	}
}

func TestClientRegistry_PromoteDemoteMonitor(t *testing.T) {
	r := NewClientRegistry(nil)
	r.promoteToMonitor()
	r.promoteToMonitor()
	if r.MonitorCount() != 2 {
		t.Fatalf("MonitorCount() = %d, want 2", r.MonitorCount())
	}
	r.demoteMonitor()
	if r.MonitorCount() != 1 {
		t.Fatalf("MonitorCount() = %d, want 1", r.MonitorCount())
	}
}

func TestClientRegistry_MetricsWiring(t *testing.T) {
	prom := prometheus.NewRegistry()
	metrics := metric.NewRegistry(prom)
	r := NewClientRegistry(metrics)

	if !r.tryAdmit(1) {
		t.Fatalf("tryAdmit(1) rejected first connection")
	}
	if r.tryAdmit(1) {
		t.Fatalf("tryAdmit(1) admitted a 2nd connection over cap")
	}
	r.incIdleKicked()

	families, err := prom.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"redisnode_redis_clients_admitted_total",
		"redisnode_redis_clients_rejected_total",
		"redisnode_redis_clients_idle_kicked_total",
	} {
		if !names[want] {
			t.Errorf("missing metric family %q in gathered output: %v", want, names)
		}
	}
}
