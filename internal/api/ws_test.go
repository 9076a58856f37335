package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newWSTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := newTestServer(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/ws/", s.WSHandler)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return s, ts
}

func dialRole(t *testing.T, ts *httptest.Server, role string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws/" + role
	c, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", role, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

func readWS(t *testing.T, c *websocket.Conn) map[string]any {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	return m
}

func assertNoWSMessage(t *testing.T, c *websocket.Conn) {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	if _, data, err := c.ReadMessage(); err == nil {
		t.Fatalf("unexpected message: %s", data)
	}
}

func TestWSUnknownRoleRejected(t *testing.T) {
	_, ts := newWSTestServer(t)
	resp, err := http.Get(ts.URL + "/api/v1/ws/driver")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", resp.StatusCode)
	}
}

func TestWSRoleSubscriptions(t *testing.T) {
	s, ts := newWSTestServer(t)
	b := s.Broker.(*Broker)

	dialRole(t, ts, "tourist")
	waitFor(t, "tourist subscriptions", func() bool {
		return b.subscriberCount("tourist_alerts") == 1 && b.subscriberCount("geofence_alerts") == 1
	})

	dialRole(t, ts, "police")
	waitFor(t, "police subscriptions", func() bool {
		return b.subscriberCount("police_alerts") == 1 && b.subscriberCount("panic_alerts") == 1
	})

	dialRole(t, ts, "tourism")
	waitFor(t, "tourism subscriptions", func() bool {
		return b.subscriberCount("tourism_alerts") == 1 && b.subscriberCount("analytics_updates") == 1
	})

	// no cross-role subscriptions
	if b.subscriberCount("police_alerts") != 1 || b.subscriberCount("tourist_alerts") != 1 {
		t.Fatal("subscription leaked across roles")
	}
}

func TestWSPingPong(t *testing.T) {
	s, ts := newWSTestServer(t)
	c := dialRole(t, ts, "tourist")
	waitFor(t, "registration", func() bool { return s.Registry.Count("tourist") == 1 })

	if err := c.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatal(err)
	}
	m := readWS(t, c)
	if m["type"] != "pong" {
		t.Fatalf("got %v, want pong", m["type"])
	}
	// exactly one pong per ping
	assertNoWSMessage(t, c)
}

func TestWSPanicFanOut(t *testing.T) {
	s, ts := newWSTestServer(t)
	b := s.Broker.(*Broker)

	tourist := dialRole(t, ts, "tourist")
	police := dialRole(t, ts, "police")
	tourism := dialRole(t, ts, "tourism")
	waitFor(t, "all subscriptions", func() bool {
		return b.subscriberCount("police_alerts") == 1 &&
			b.subscriberCount("tourism_alerts") == 1 &&
			b.subscriberCount("tourist_alerts") == 1
	})

	s.Notifier.PanicAlert(
		touristFixture("t1", "John Doe"),
		alertFixture("a1", "panic", "critical"),
	)

	for _, c := range []*websocket.Conn{police, tourism} {
		m := readWS(t, c)
		if m["type"] != "panic_alert" {
			t.Fatalf("got %v, want panic_alert", m["type"])
		}
		if _, flat := m["alert"]; !flat {
			t.Fatalf("payload not flat: %+v", m)
		}
	}
	assertNoWSMessage(t, tourist)
}

func TestWSGeofenceFromLocationUpdate(t *testing.T) {
	s, ts := newWSTestServer(t)
	b := s.Broker.(*Broker)

	tourist := dialRole(t, ts, "tourist")
	police := dialRole(t, ts, "police")
	tourism := dialRole(t, ts, "tourism")
	waitFor(t, "all subscriptions", func() bool {
		return b.subscriberCount("police_alerts") == 1 &&
			b.subscriberCount("tourist_alerts") == 1 &&
			b.subscriberCount("tourism_alerts") == 1
	})

	msg := `{"type":"location_update","tourist_id":7,"location":{"latitude":27.9,"longitude":77.2},"timestamp":"2026-01-01T00:00:00Z"}`
	if err := tourist.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatal(err)
	}

	for _, c := range []*websocket.Conn{tourist, police} {
		m := readWS(t, c)
		if m["type"] != "geofence_alert" {
			t.Fatalf("got %v, want geofence_alert", m["type"])
		}
	}
	assertNoWSMessage(t, tourism)

	// inside the safe area nothing fires
	safe := `{"type":"location_update","tourist_id":7,"location":{"latitude":29.5,"longitude":77.2},"timestamp":"2026-01-01T00:00:00Z"}`
	if err := tourist.WriteMessage(websocket.TextMessage, []byte(safe)); err != nil {
		t.Fatal(err)
	}
	assertNoWSMessage(t, tourist)
	assertNoWSMessage(t, police)
}

func TestWSSafetyScoreFanOut(t *testing.T) {
	s, ts := newWSTestServer(t)
	b := s.Broker.(*Broker)

	police := dialRole(t, ts, "police")
	waitFor(t, "police subscription", func() bool { return b.subscriberCount("police_alerts") == 1 })

	s.Notifier.SafetyScoreAlert(touristFixture("t1", "John Doe"), 4.9)
	m := readWS(t, police)
	if m["type"] != "safety_score_alert" {
		t.Fatalf("got %v, want safety_score_alert", m["type"])
	}

	s.Notifier.SafetyScoreAlert(touristFixture("t1", "John Doe"), 5.0)
	assertNoWSMessage(t, police)
}

func TestWSTeardownReleasesEverything(t *testing.T) {
	s, ts := newWSTestServer(t)
	b := s.Broker.(*Broker)

	c := dialRole(t, ts, "tourist")
	waitFor(t, "registration", func() bool { return s.Registry.Count("tourist") == 1 })

	_ = c.Close()
	waitFor(t, "teardown", func() bool {
		return s.Registry.Count("tourist") == 0 &&
			b.subscriberCount("tourist_alerts") == 0 &&
			b.subscriberCount("geofence_alerts") == 0
	})
}

func TestWSMalformedMessageCloses(t *testing.T) {
	s, ts := newWSTestServer(t)
	c := dialRole(t, ts, "police")
	waitFor(t, "registration", func() bool { return s.Registry.Count("police") == 1 })

	if err := c.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "disconnect", func() bool { return s.Registry.Count("police") == 0 })
}
