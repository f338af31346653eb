// Package storage defines the persistence contracts consumed by the chat
// core and the HTTP handlers. Implementations live in the memory and
// postgres subpackages; handlers and services are wired against these
// interfaces so either backend can be injected.
package storage

import (
	"context"
	"errors"

	"github.com/kushvardhan/CodeMate-Backend/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("storage: duplicate")
)

// ChatStore is the durable conversation log. All mutations are atomic at
// single-conversation granularity, and exactly one conversation exists per
// unordered participant pair.
type ChatStore interface {
	// FindOrCreateConversation returns the conversation for the unordered
	// pair, creating an empty one if none exists. Concurrent first contact
	// from both sides must still yield a single record.
	FindOrCreateConversation(ctx context.Context, userA, userB string) (*models.Conversation, error)

	// ConversationBetween returns the conversation for the pair, or
	// ErrNotFound without creating one.
	ConversationBetween(ctx context.Context, userA, userB string) (*models.Conversation, error)

	// AppendMessage appends a message to the pair's conversation, creating
	// the conversation if needed. The stored message is seen by the sender
	// and unseen by the receiver.
	AppendMessage(ctx context.Context, senderID, receiverID, text string) (*models.Message, error)

	// ConversationsFor returns every conversation the user participates in,
	// messages included.
	ConversationsFor(ctx context.Context, userID string) ([]*models.Conversation, error)

	// MarkSeen flips seen[userID] to true on every message authored by
	// peerID that userID had not seen, and returns how many flags changed.
	// Returns ErrNotFound when the pair has no conversation.
	MarkSeen(ctx context.Context, userID, peerID string) (int, error)
}

// UserStore persists registered accounts.
type UserStore interface {
	// CreateUser stores a new user. Returns ErrDuplicate when the email is
	// already registered.
	CreateUser(ctx context.Context, user *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	// UpdateUser persists profile edits for an existing user.
	UpdateUser(ctx context.Context, user *models.User) error
}

// ConnectionStore persists match requests and answers the accepted-connection
// checks the messaging core authorizes against.
type ConnectionStore interface {
	// CreateRequest stores a new request. Returns ErrDuplicate when a
	// request already exists between the pair in either direction.
	CreateRequest(ctx context.Context, fromUserID, toUserID, status string) (*models.ConnectionRequest, error)
	RequestByID(ctx context.Context, id string) (*models.ConnectionRequest, error)
	UpdateRequestStatus(ctx context.Context, id, status string) error
	// RequestsReceived lists pending "interested" requests addressed to the
	// user.
	RequestsReceived(ctx context.Context, userID string) ([]*models.ConnectionRequest, error)
	// IsAccepted reports whether the pair has an accepted connection.
	IsAccepted(ctx context.Context, userA, userB string) (bool, error)
	// AcceptedConnectionsFor lists the user's accepted connections with the
	// peer's profile attached.
	AcceptedConnectionsFor(ctx context.Context, userID string) ([]*models.Connection, error)
}
