package ws

import (
	"sync"
	"time"
)

// Session is the ephemeral state of one socket focused on one chat. It is
// rebuilt fresh on every reconnect and never persisted.
type Session struct {
	SocketID    string
	UserID      string
	PeerID      string
	Room        string
	DisplayName string // advisory, presence events only
	JoinedAt    time.Time
}

// Registry maps live sockets to their sessions. It lives for the server
// process's uptime, starts empty on every restart, and is constructed
// explicitly so tests get a fresh one each run.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session // socket id -> session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register stores the session, overwriting any prior session for the same
// socket (a socket represents one chat focus at a time). It returns the
// replaced session, if any, so the caller can leave the old room.
func (r *Registry) Register(session *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.sessions[session.SocketID]
	r.sessions[session.SocketID] = session
	return prev
}

// Lookup returns the session for the socket, if one exists.
func (r *Registry) Lookup(socketID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[socketID]
	return session, ok
}

// Remove discards the socket's session and returns it. Removing an unknown
// socket is a no-op, not an error.
func (r *Registry) Remove(socketID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[socketID]
	if ok {
		delete(r.sessions, socketID)
	}
	return session, ok
}

// Len reports how many sockets currently hold sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
