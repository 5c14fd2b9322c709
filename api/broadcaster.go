package api

import "sync"

// Broadcaster fans a single stream of Events out to every connected
// WebSocket client, the same shape as the teacher's session broadcaster
// but scoped to one VM instead of one per session - BURST's API serves a
// single debugging session per server (spec.md §6 names no multi-session
// requirement).
type Broadcaster struct {
	mu      sync.Mutex
	clients map[chan Event]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[chan Event]struct{})}
}

// Subscribe registers a new client channel; the caller must eventually
// call Unsubscribe.
func (b *Broadcaster) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a client channel.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.clients[ch]; ok {
		delete(b.clients, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish sends ev to every subscribed client, dropping it for any
// client whose buffer is full rather than blocking the VM thread.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close disconnects every client.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		close(ch)
	}
	b.clients = make(map[chan Event]struct{})
}
