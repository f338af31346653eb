package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kushvardhan/CodeMate-Backend/internal/models"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage"
)

// ChatStore is the in-memory conversation log, used in development and in
// tests. Conversations are keyed by the sorted participant pair, so the
// uniqueness invariant holds by construction: find-or-create happens under
// one lock against one map key.
type ChatStore struct {
	mu            sync.RWMutex
	conversations map[[2]string]*models.Conversation // sorted pair -> conversation
}

// NewChatStore creates an empty in-memory chat store.
func NewChatStore() *ChatStore {
	return &ChatStore{
		conversations: make(map[[2]string]*models.Conversation),
	}
}

func pairKey(userA, userB string) [2]string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return [2]string{userA, userB}
}

// findOrCreateLocked returns the conversation for the pair, creating it if
// absent. Callers must hold the write lock.
func (s *ChatStore) findOrCreateLocked(userA, userB string) *models.Conversation {
	key := pairKey(userA, userB)
	if conv, ok := s.conversations[key]; ok {
		return conv
	}
	now := time.Now().UTC()
	conv := &models.Conversation{
		ID:           uuid.NewString(),
		Participants: key,
		Messages:     []models.Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.conversations[key] = conv
	return conv
}

// FindOrCreateConversation implements storage.ChatStore.
func (s *ChatStore) FindOrCreateConversation(_ context.Context, userA, userB string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneConversation(s.findOrCreateLocked(userA, userB)), nil
}

// ConversationBetween implements storage.ChatStore.
func (s *ChatStore) ConversationBetween(_ context.Context, userA, userB string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[pairKey(userA, userB)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneConversation(conv), nil
}

// AppendMessage implements storage.ChatStore.
func (s *ChatStore) AppendMessage(_ context.Context, senderID, receiverID, text string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findOrCreateLocked(senderID, receiverID)
	msg := models.Message{
		ID:       uuid.NewString(),
		SenderID: senderID,
		Text:     text,
		Seen: models.SeenMap{
			senderID:   true,
			receiverID: false,
		},
		CreatedAt: time.Now().UTC(),
	}
	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = msg.CreatedAt

	out := msg
	out.Seen = cloneSeen(msg.Seen)
	return &out, nil
}

// ConversationsFor implements storage.ChatStore.
func (s *ChatStore) ConversationsFor(_ context.Context, userID string) ([]*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Conversation
	for _, conv := range s.conversations {
		if conv.Participants[0] == userID || conv.Participants[1] == userID {
			out = append(out, cloneConversation(conv))
		}
	}
	return out, nil
}

// MarkSeen implements storage.ChatStore.
func (s *ChatStore) MarkSeen(_ context.Context, userID, peerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[pairKey(userID, peerID)]
	if !ok {
		return 0, storage.ErrNotFound
	}

	changed := 0
	for i := range conv.Messages {
		m := &conv.Messages[i]
		if m.SenderID == peerID && !m.Seen.Seen(userID) {
			m.Seen[userID] = true
			changed++
		}
	}
	return changed, nil
}

// Clones keep callers from mutating shared state outside the lock.

func cloneConversation(conv *models.Conversation) *models.Conversation {
	out := *conv
	out.Messages = make([]models.Message, len(conv.Messages))
	for i, m := range conv.Messages {
		m.Seen = cloneSeen(m.Seen)
		out.Messages[i] = m
	}
	return &out
}

func cloneSeen(seen models.SeenMap) models.SeenMap {
	out := make(models.SeenMap, len(seen))
	for k, v := range seen {
		out[k] = v
	}
	return out
}
