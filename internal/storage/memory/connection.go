package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kushvardhan/CodeMate-Backend/internal/models"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage"
)

// ConnectionStore keeps match requests in process memory. It resolves peer
// profiles through the user store the way the postgres implementation joins
// on the users table.
type ConnectionStore struct {
	mu       sync.RWMutex
	requests map[string]*models.ConnectionRequest // id -> request
	users    *UserStore
}

// NewConnectionStore creates an empty in-memory connection store backed by
// the given user store for profile lookups.
func NewConnectionStore(users *UserStore) *ConnectionStore {
	return &ConnectionStore{
		requests: make(map[string]*models.ConnectionRequest),
		users:    users,
	}
}

// betweenLocked returns the request between the pair, in either direction.
// Callers must hold at least the read lock.
func (s *ConnectionStore) betweenLocked(userA, userB string) *models.ConnectionRequest {
	for _, req := range s.requests {
		if (req.FromUserID == userA && req.ToUserID == userB) ||
			(req.FromUserID == userB && req.ToUserID == userA) {
			return req
		}
	}
	return nil
}

// CreateRequest implements storage.ConnectionStore.
func (s *ConnectionStore) CreateRequest(_ context.Context, fromUserID, toUserID, status string) (*models.ConnectionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.betweenLocked(fromUserID, toUserID) != nil {
		return nil, storage.ErrDuplicate
	}
	now := time.Now().UTC()
	req := &models.ConnectionRequest{
		ID:         uuid.NewString(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.requests[req.ID] = req
	out := *req
	return &out, nil
}

// RequestByID implements storage.ConnectionStore.
func (s *ConnectionStore) RequestByID(_ context.Context, id string) (*models.ConnectionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *req
	return &out, nil
}

// UpdateRequestStatus implements storage.ConnectionStore.
func (s *ConnectionStore) UpdateRequestStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return storage.ErrNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now().UTC()
	return nil
}

// RequestsReceived implements storage.ConnectionStore.
func (s *ConnectionStore) RequestsReceived(_ context.Context, userID string) ([]*models.ConnectionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.ConnectionRequest
	for _, req := range s.requests {
		if req.ToUserID == userID && req.Status == models.StatusInterested {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out, nil
}

// IsAccepted implements storage.ConnectionStore.
func (s *ConnectionStore) IsAccepted(_ context.Context, userA, userB string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req := s.betweenLocked(userA, userB)
	return req != nil && req.Status == models.StatusAccepted, nil
}

// AcceptedConnectionsFor implements storage.ConnectionStore.
func (s *ConnectionStore) AcceptedConnectionsFor(ctx context.Context, userID string) ([]*models.Connection, error) {
	s.mu.RLock()
	var accepted []*models.ConnectionRequest
	for _, req := range s.requests {
		if req.Status != models.StatusAccepted {
			continue
		}
		if req.FromUserID == userID || req.ToUserID == userID {
			cp := *req
			accepted = append(accepted, &cp)
		}
	}
	s.mu.RUnlock()

	var out []*models.Connection
	for _, req := range accepted {
		peerID := req.FromUserID
		if peerID == userID {
			peerID = req.ToUserID
		}
		peer, err := s.users.UserByID(ctx, peerID)
		if err != nil {
			// Dangling edge; skip rather than fail the whole listing.
			continue
		}
		out = append(out, &models.Connection{Peer: *peer, AcceptedAt: req.UpdatedAt})
	}
	return out, nil
}
