package api

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("police_alerts")

	evt := Event{Type: "panic_alert", Data: map[string]any{"x": 1}}
	b.Publish("police_alerts", evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type {
			t.Fatalf("got type %s, want %s", got.Type, evt.Type)
		}
		if got.Data["x"].(int) != 1 {
			t.Fatalf("bad payload: %+v", got.Data)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe("police_alerts", ch)
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("channel should be closed after unsubscribe")
		}
	case <-time.After(50 * time.Millisecond):
		t.Fatal("channel not closed after unsubscribe")
	}
	if b.subscriberCount("police_alerts") != 0 {
		t.Fatalf("subscriber count: got %d, want 0", b.subscriberCount("police_alerts"))
	}
}

func TestBrokerChannelsAreIndependent(t *testing.T) {
	b := NewBroker()
	police := b.Subscribe("police_alerts")
	tourist := b.Subscribe("tourist_alerts")
	defer b.Unsubscribe("police_alerts", police)
	defer b.Unsubscribe("tourist_alerts", tourist)

	b.Publish("police_alerts", Event{Type: "panic_alert"})

	select {
	case <-police:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("police subscriber did not receive")
	}
	select {
	case evt := <-tourist:
		t.Fatalf("tourist subscriber received %s from the wrong channel", evt.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerUnsubscribeTwice(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("tourist_alerts")
	b.Unsubscribe("tourist_alerts", ch)
	// second call must be a no-op, not a double close
	b.Unsubscribe("tourist_alerts", ch)
}

func TestBrokerSlowSubscriberSkipped(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("police_alerts")
	defer b.Unsubscribe("police_alerts", ch)

	// fill the buffer and keep publishing; Publish must never block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 64; i++ {
			b.Publish("police_alerts", Event{Type: "panic_alert"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestEventMarshalsFlat(t *testing.T) {
	evt := Event{Type: "geofence_alert", Data: map[string]any{"zone": "risk"}}
	raw, err := json.Marshal(evt)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	if m["type"] != "geofence_alert" || m["zone"] != "risk" {
		t.Fatalf("expected flat object, got %s", raw)
	}
	if _, nested := m["data"]; nested {
		t.Fatalf("data must be inlined, got %s", raw)
	}

	var back Event
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.Type != "geofence_alert" || back.Data["zone"] != "risk" {
		t.Fatalf("roundtrip mismatch: %+v", back)
	}
}
