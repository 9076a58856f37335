package api

import (
	"sync"
)

// Roles recognized by the realtime layer. A connection carries exactly one.
var Roles = []string{"tourist", "police", "tourism"}

func validRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Registry maps a role to its live websocket clients, in insertion order. It is
// owned by the Server and injected into every bridge; there is no package-level
// state.
type Registry struct {
	mu      sync.Mutex
	buckets map[string][]*wsClient
}

func NewRegistry() *Registry {
	return &Registry{buckets: map[string][]*wsClient{}}
}

// Register adds the client under role. Unknown roles are ignored; the handshake
// has already rejected them.
func (r *Registry) Register(c *wsClient, role string) {
	if !validRole(role) {
		return
	}
	r.mu.Lock()
	r.buckets[role] = append(r.buckets[role], c)
	r.mu.Unlock()
}

// Unregister removes the client from role's bucket. Idempotent.
func (r *Registry) Unregister(c *wsClient, role string) {
	r.mu.Lock()
	bucket := r.buckets[role]
	for i, other := range bucket {
		if other == c {
			r.buckets[role] = append(bucket[:i:i], bucket[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
}

// BroadcastToRole enqueues message on every client in role's bucket. Membership
// is snapshotted first; clients whose queue rejects the message are treated as
// dead and removed in a second pass, so the send loop never races a removal.
func (r *Registry) BroadcastToRole(role string, message []byte) {
	r.mu.Lock()
	snapshot := make([]*wsClient, len(r.buckets[role]))
	copy(snapshot, r.buckets[role])
	r.mu.Unlock()

	var dead []*wsClient
	for _, c := range snapshot {
		if !c.enqueue(message) {
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		c.close()
		r.Unregister(c, role)
	}
}

// Count reports the number of live clients for a role.
func (r *Registry) Count(role string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets[role])
}
