package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"safetour/internal/metrics"
	"safetour/internal/model"
)

// roleChannels is the static role -> subscribed channels table, resolved once
// when a bridge opens.
var roleChannels = map[string][]string{
	"tourist": {"tourist_alerts", "geofence_alerts"},
	"police":  {"police_alerts", "panic_alerts"},
	"tourism": {"tourism_alerts", "analytics_updates"},
}

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

const (
	writeWait     = 5 * time.Second
	sendQueueSize = 32
	maxMessageLen = 1 << 20
)

// wsClient wraps one websocket connection. A single writer goroutine owns the
// conn; the ping-reply path and the broker-forward path both go through the
// bounded send queue, so writes never interleave.
type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	closed chan struct{}
	once   sync.Once
}

func newWSClient(conn *websocket.Conn) *wsClient {
	c := &wsClient{conn: conn, send: make(chan []byte, sendQueueSize), closed: make(chan struct{})}
	go c.writePump()
	return c
}

func (c *wsClient) writePump() {
	defer func() { _ = c.conn.Close() }()
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}
		case <-c.closed:
			return
		}
	}
}

// enqueue submits a message to the writer. A full queue or a closed client
// counts as a failed send.
func (c *wsClient) enqueue(msg []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	case <-c.closed:
		return false
	default:
		return false
	}
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.closed) })
}

type wsLocationUpdate struct {
	TouristID json.Number `json:"tourist_id"`
	Location  struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	Timestamp string `json:"timestamp"`
}

// WSHandler handles GET /api/v1/ws/{role}. Unknown roles are rejected before
// the upgrade rather than left idling with no subscriptions.
func (s *Server) WSHandler(w http.ResponseWriter, r *http.Request) {
	role := strings.TrimPrefix(r.URL.Path, "/api/v1/ws/")
	channels, ok := roleChannels[role]
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Unknown role", "role must be one of tourist, police, tourism", r.URL.Path)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := newWSClient(conn)
	s.Registry.Register(client, role)
	metrics.WSConnections.WithLabelValues(role).Inc()
	log.Printf("ws: %s connected (%d live)", role, s.Registry.Count(role))

	// Outbound duty: one forwarder per subscribed channel, all feeding the
	// single writer. Unsubscribe closes the broker chan, which ends the loop.
	subs := make(map[string]chan Event, len(channels))
	for _, name := range channels {
		ch := s.Broker.Subscribe(name)
		subs[name] = ch
		go func(ch chan Event) {
			for evt := range ch {
				payload, err := json.Marshal(evt)
				if err != nil {
					continue
				}
				if !client.enqueue(payload) {
					client.close()
					return
				}
			}
		}(ch)
	}

	// Inbound duty: runs on the handler goroutine until disconnect or
	// malformed input.
	conn.SetReadLimit(maxMessageLen)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("ws: %s sent malformed message, closing: %v", role, err)
			break
		}
		switch msg.Type {
		case "ping":
			client.enqueue([]byte(`{"type":"pong"}`))
		case "location_update":
			var upd wsLocationUpdate
			if err := json.Unmarshal(data, &upd); err == nil {
				// side effect must not block the outbound duty
				go s.handleLocationUpdate(upd, role)
			}
		default:
			// unrecognized types are ignored
		}
	}

	// Teardown: neither duty may outlive the other.
	client.close()
	for name, ch := range subs {
		s.Broker.Unsubscribe(name, ch)
	}
	s.Registry.Unregister(client, role)
	metrics.WSConnections.WithLabelValues(role).Dec()
	log.Printf("ws: %s disconnected (%d live)", role, s.Registry.Count(role))
}

// handleLocationUpdate applies the geofence rule to tourist location pushes.
// The latitude threshold is configuration standing in for a real geospatial
// check.
func (s *Server) handleLocationUpdate(upd wsLocationUpdate, role string) {
	if role != "tourist" {
		return
	}
	if upd.Location.Latitude >= s.GeofenceMinLat {
		return
	}
	tourist := model.Tourist{ID: upd.TouristID.String(), Name: "Tourist"}
	zone := map[string]any{"zone_type": "risk", "timestamp": upd.Timestamp}
	s.Notifier.GeofenceAlert(tourist, zone)
}
