package api

import (
	"encoding/json"
	"sync"
)

// Event is a pub/sub payload. It marshals flat: the type discriminator and the
// data fields share one JSON object, which is the shape clients expect.
type Event struct {
	Type string
	Data map[string]any
}

func (e Event) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		m[k] = v
	}
	m["type"] = e.Type
	return json.Marshal(m)
}

func (e *Event) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	if t, ok := m["type"].(string); ok {
		e.Type = t
	}
	delete(m, "type")
	e.Data = m
	return nil
}

// EventBroker is the pub/sub boundary between notification producers and
// websocket bridges.
type EventBroker interface {
	Subscribe(channel string) chan Event
	Unsubscribe(channel string, ch chan Event)
	Publish(channel string, evt Event)
}

// Broker is the in-process EventBroker used when no REDIS_URL is set.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{} // channel name -> set of subscriber chans
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan Event]struct{}{}}
}

func (b *Broker) Subscribe(channel string) chan Event {
	ch := make(chan Event, 8)
	b.mu.Lock()
	if b.subs[channel] == nil {
		b.subs[channel] = map[chan Event]struct{}{}
	}
	b.subs[channel][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(channel string, ch chan Event) {
	b.mu.Lock()
	m := b.subs[channel]
	if _, ok := m[ch]; !ok {
		b.mu.Unlock()
		return
	}
	delete(m, ch)
	if len(m) == 0 {
		delete(b.subs, channel)
	}
	b.mu.Unlock()
	close(ch)
}

// Publish fans the event out to every subscriber. Slow subscribers are skipped
// rather than blocked on.
func (b *Broker) Publish(channel string, evt Event) {
	b.mu.Lock()
	for ch := range b.subs[channel] {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}

// subscriberCount reports live subscriptions for a channel (test helper).
func (b *Broker) subscriberCount(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[channel])
}
