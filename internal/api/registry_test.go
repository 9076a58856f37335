package api

import (
	"testing"
)

// testClient builds a wsClient with no conn and no writer goroutine; enqueue
// works against the buffered queue alone.
func testClient(queue int) *wsClient {
	return &wsClient{send: make(chan []byte, queue), closed: make(chan struct{})}
}

func TestRegistryRegisterUnregister(t *testing.T) {
	r := NewRegistry()
	c := testClient(1)
	r.Register(c, "tourist")
	if r.Count("tourist") != 1 {
		t.Fatalf("count: got %d, want 1", r.Count("tourist"))
	}
	r.Unregister(c, "tourist")
	if r.Count("tourist") != 0 {
		t.Fatalf("count after unregister: got %d, want 0", r.Count("tourist"))
	}
	// idempotent
	r.Unregister(c, "tourist")
}

func TestRegistryUnknownRoleIgnored(t *testing.T) {
	r := NewRegistry()
	r.Register(testClient(1), "driver")
	if r.Count("driver") != 0 {
		t.Fatal("unknown role must not be registered")
	}
}

func TestRegistryBroadcastEmptyRole(t *testing.T) {
	r := NewRegistry()
	// no clients, no panic
	r.BroadcastToRole("police", []byte(`{"type":"panic_alert"}`))
}

func TestRegistryBroadcastReachesRoleOnly(t *testing.T) {
	r := NewRegistry()
	tourist := testClient(4)
	police := testClient(4)
	r.Register(tourist, "tourist")
	r.Register(police, "police")

	r.BroadcastToRole("police", []byte("hello"))

	if len(police.send) != 1 {
		t.Fatalf("police queue: got %d messages, want 1", len(police.send))
	}
	if len(tourist.send) != 0 {
		t.Fatalf("tourist queue: got %d messages, want 0", len(tourist.send))
	}
}

func TestRegistryEvictsDeadClients(t *testing.T) {
	r := NewRegistry()
	slow := testClient(1)
	ok := testClient(4)
	r.Register(slow, "police")
	r.Register(ok, "police")

	// first broadcast fills slow's queue, second overflows it
	r.BroadcastToRole("police", []byte("a"))
	r.BroadcastToRole("police", []byte("b"))

	if r.Count("police") != 1 {
		t.Fatalf("count after eviction: got %d, want 1", r.Count("police"))
	}
	select {
	case <-slow.closed:
	default:
		t.Fatal("evicted client was not closed")
	}
	if len(ok.send) != 2 {
		t.Fatalf("healthy client: got %d messages, want 2", len(ok.send))
	}
}
