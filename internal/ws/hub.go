// Package ws carries the live socket plumbing: the fan-out hub, the
// per-socket client pumps, and the connection registry.
package ws

import "sync"

// Hub fans events out to every client subscribed to a named channel. Two
// channel families exist: pair rooms ("room:<hash>") shared by the two
// participants of a conversation, and personal channels ("user:<id>") that
// reach all of one user's connected devices at once.
//
// Delivery is best effort: only currently connected sockets receive an
// event, and a client whose send buffer is full is dropped rather than
// allowed to stall everyone else. Clients re-derive state over HTTP on
// reconnect instead of replaying missed events.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*Client]bool // channel name -> subscribers
	byClient map[*Client]map[string]bool // reverse index for teardown
}

// NewHub creates an empty hub. Hubs are injected, not global, so tests can
// build and discard them freely.
func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[*Client]bool),
		byClient: make(map[*Client]map[string]bool),
	}
}

// Subscribe joins the client to the given channels.
func (h *Hub) Subscribe(client *Client, channels ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, name := range channels {
		if h.channels[name] == nil {
			h.channels[name] = make(map[*Client]bool)
		}
		h.channels[name][client] = true
		if h.byClient[client] == nil {
			h.byClient[client] = make(map[string]bool)
		}
		h.byClient[client][name] = true
	}
}

// Unsubscribe removes the client from the given channels only.
func (h *Hub) Unsubscribe(client *Client, channels ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, name := range channels {
		h.removeLocked(client, name)
	}
}

// Drop removes the client from every channel and closes its send queue.
func (h *Hub) Drop(client *Client) {
	h.mu.Lock()
	for name := range h.byClient[client] {
		h.removeLocked(client, name)
	}
	h.mu.Unlock()
	client.CloseSend()
}

func (h *Hub) removeLocked(client *Client, channel string) {
	if subs, ok := h.channels[channel]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.channels, channel)
		}
	}
	if names, ok := h.byClient[client]; ok {
		delete(names, channel)
		if len(names) == 0 {
			delete(h.byClient, client)
		}
	}
}

// Publish delivers data to every subscriber of the channel.
func (h *Hub) Publish(channel string, data []byte) {
	h.PublishExcept(channel, data, nil)
}

// PublishExcept delivers data to every subscriber of the channel except
// skip. Slow clients are detached so the hub never blocks on one socket.
func (h *Hub) PublishExcept(channel string, data []byte, skip *Client) {
	h.mu.Lock()
	var stalled []*Client
	for client := range h.channels[channel] {
		if client == skip {
			continue
		}
		if !client.Enqueue(data) {
			stalled = append(stalled, client)
		}
	}
	for _, client := range stalled {
		for name := range h.byClient[client] {
			h.removeLocked(client, name)
		}
	}
	h.mu.Unlock()

	for _, client := range stalled {
		client.CloseSend()
	}
}

// Subscribers reports how many clients are currently subscribed to the
// channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}
