// Package chat implements the messaging core: room resolution, message
// ingestion, and the read-side queries (history, unseen counts, chat list).
// It talks to persistence through storage interfaces and to live sockets
// through a Publisher, so both are injectable.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/kushvardhan/CodeMate-Backend/internal/models"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage"
)

var (
	// ErrInvalidPayload marks a join or send with a missing or empty
	// required field. Reported to the originating socket only.
	ErrInvalidPayload = errors.New("chat: missing or empty required field")
	// ErrNotConnected marks an operation between users without an accepted
	// connection. Refused before any persistence.
	ErrNotConnected = errors.New("chat: users are not an accepted connection")
)

// Publisher delivers an event to every socket subscribed to a channel.
// *ws.Hub satisfies it directly; notify.Bridge satisfies it when events must
// also reach sockets on other server instances.
type Publisher interface {
	Publish(channel string, data []byte)
}

// Service wires ingestion and queries to storage and the notification bus.
type Service struct {
	store       storage.ChatStore
	connections storage.ConnectionStore
	users       storage.UserStore
	bus         Publisher
}

// NewService constructs the messaging service.
func NewService(store storage.ChatStore, connections storage.ConnectionStore, users storage.UserStore, bus Publisher) *Service {
	return &Service{store: store, connections: connections, users: users, bus: bus}
}

// Authorize reports whether the pair holds an accepted connection. Socket
// joins and sends both gate on it.
func (s *Service) Authorize(ctx context.Context, userID, peerID string) error {
	accepted, err := s.connections.IsAccepted(ctx, userID, peerID)
	if err != nil {
		return fmt.Errorf("check connection: %w", err)
	}
	if !accepted {
		return ErrNotConnected
	}
	return nil
}

// SubmitMessage validates, authorizes, and durably appends a message, then
// fans it out: the message payload to the pair room, and an
// unseen-count-changed nudge to the receiver's personal channel. Nothing is
// broadcast unless the append succeeded.
func (s *Service) SubmitMessage(ctx context.Context, senderID, receiverID, text string) (*models.Message, error) {
	if senderID == "" || receiverID == "" || text == "" {
		return nil, ErrInvalidPayload
	}
	if senderID == receiverID {
		return nil, ErrInvalidPayload
	}
	if err := s.Authorize(ctx, senderID, receiverID); err != nil {
		return nil, err
	}

	msg, err := s.store.AppendMessage(ctx, senderID, receiverID, text)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	room := ResolveRoom(senderID, receiverID)
	s.publish(RoomChannel(room), EncodeEvent(EventMessageReceived, MessagePayload{
		ID:        msg.ID,
		SenderID:  msg.SenderID,
		Text:      msg.Text,
		Timestamp: msg.CreatedAt,
	}))
	s.publish(PersonalChannel(receiverID), EncodeEvent(EventUnseenCountChanged, UnseenCountChangedPayload{
		UserID: receiverID,
	}))

	return msg, nil
}

// History returns the full ordered log for the pair, creating an empty
// conversation on first read so a fresh chat screen has something to render.
func (s *Service) History(ctx context.Context, userID, peerID string) ([]models.Message, error) {
	if userID == "" || peerID == "" {
		return nil, ErrInvalidPayload
	}
	conv, err := s.store.FindOrCreateConversation(ctx, userID, peerID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return conv.Messages, nil
}

// MessagePreview is the last-message snippet attached to chat lists and
// unseen summaries.
type MessagePreview struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func previewOf(m *models.Message) *MessagePreview {
	if m == nil {
		return nil
	}
	return &MessagePreview{ID: m.ID, SenderID: m.SenderID, Text: m.Text, CreatedAt: m.CreatedAt}
}

// UnseenSummary reports one conversation with unread messages.
type UnseenSummary struct {
	PeerID      string          `json:"userId"`
	Peer        *models.Card    `json:"userInfo,omitempty"`
	UnseenCount int             `json:"unseenCount"`
	LastUnseen  *MessagePreview `json:"lastUnseen,omitempty"`
}

// UnseenCounts returns, for every conversation of the user that has unread
// peer messages, the count and a preview of the newest unread message.
// Conversations with nothing unread are omitted.
func (s *Service) UnseenCounts(ctx context.Context, userID string) ([]UnseenSummary, error) {
	convs, err := s.store.ConversationsFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}

	out := []UnseenSummary{}
	for _, conv := range convs {
		count := conv.UnseenCountFor(userID)
		if count == 0 {
			continue
		}
		peerID := conv.PeerOf(userID)
		summary := UnseenSummary{PeerID: peerID, UnseenCount: count}
		for i := len(conv.Messages) - 1; i >= 0; i-- {
			m := &conv.Messages[i]
			if m.SenderID == peerID && !m.Seen.Seen(userID) {
				summary.LastUnseen = previewOf(m)
				break
			}
		}
		if peer, err := s.users.UserByID(ctx, peerID); err == nil {
			card := peer.Card()
			summary.Peer = &card
		}
		out = append(out, summary)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].PeerID < out[j].PeerID })
	return out, nil
}

// ChatListEntry is one row of the sorted chat list.
type ChatListEntry struct {
	Peer         models.Card     `json:"user"`
	LastMessage  *MessagePreview `json:"lastMessage"`
	UnseenCount  int             `json:"unseenCount"`
	LastActivity time.Time       `json:"lastMessageTime"`
}

// ChatList joins the user's accepted connections with their conversations.
// Peers without any messages still appear, ordered by when the connection
// was accepted. Entries sort by last activity descending, ties broken by
// peer id so the order is deterministic.
func (s *Service) ChatList(ctx context.Context, userID string) ([]ChatListEntry, error) {
	connections, err := s.connections.AcceptedConnectionsFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load connections: %w", err)
	}

	out := make([]ChatListEntry, 0, len(connections))
	for _, conn := range connections {
		entry := ChatListEntry{
			Peer:         conn.Peer.Card(),
			LastActivity: conn.AcceptedAt,
		}

		conv, err := s.store.ConversationBetween(ctx, userID, conn.Peer.ID)
		switch {
		case err == nil:
			if last := conv.LastMessage(); last != nil {
				entry.LastMessage = previewOf(last)
				entry.LastActivity = last.CreatedAt
			}
			entry.UnseenCount = conv.UnseenCountFor(userID)
		case errors.Is(err, storage.ErrNotFound):
			// No chat yet; the connection alone puts the peer on the list.
		default:
			return nil, fmt.Errorf("load conversation with %s: %w", conn.Peer.ID, err)
		}

		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastActivity.Equal(out[j].LastActivity) {
			return out[i].LastActivity.After(out[j].LastActivity)
		}
		return out[i].Peer.ID < out[j].Peer.ID
	})
	return out, nil
}

// MarkSeen flips the caller's seen flag on every unread message from the
// peer. Idempotent: when nothing changed, nothing is persisted and no event
// is emitted. When something changed, the caller's own personal channel gets
// an unseen-count-changed event so their other devices clear the badge too.
func (s *Service) MarkSeen(ctx context.Context, userID, peerID string) error {
	if userID == "" || peerID == "" {
		return ErrInvalidPayload
	}
	changed, err := s.store.MarkSeen(ctx, userID, peerID)
	if err != nil {
		return err
	}
	if changed > 0 {
		s.publish(PersonalChannel(userID), EncodeEvent(EventUnseenCountChanged, UnseenCountChangedPayload{
			UserID: userID,
		}))
		log.Printf("[Chat] Marked %d messages seen for user %s in chat with %s", changed, userID, peerID)
	}
	return nil
}

func (s *Service) publish(channel string, data []byte) {
	if data == nil {
		return
	}
	s.bus.Publish(channel, data)
}
