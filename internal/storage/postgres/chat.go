package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/kushvardhan/CodeMate-Backend/internal/models"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage"
)

// ChatStore implements storage.ChatStore on PostgreSQL.
type ChatStore struct {
	db *sql.DB
}

// NewChatStore creates a ChatStore over an open database handle.
func NewChatStore(db *sql.DB) *ChatStore {
	return &ChatStore{db: db}
}

// FindOrCreateConversation implements storage.ChatStore. The insert races
// against concurrent first contact from the other side; ON CONFLICT DO
// NOTHING followed by a re-select resolves the race without surfacing it.
func (s *ChatStore) FindOrCreateConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	p1, p2 := sortPair(userA, userB)

	conv, err := s.conversationByPair(ctx, p1, p2)
	if err == nil {
		return conv, nil
	}
	if err != storage.ErrNotFound {
		return nil, err
	}

	insert := `
		INSERT INTO conversations (participant1_id, participant2_id)
		VALUES ($1, $2)
		ON CONFLICT (participant1_id, participant2_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, insert, p1, p2); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	// Either our insert won or the concurrent one did; the re-select finds
	// the single surviving row.
	return s.conversationByPair(ctx, p1, p2)
}

// ConversationBetween implements storage.ChatStore.
func (s *ChatStore) ConversationBetween(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	p1, p2 := sortPair(userA, userB)
	return s.conversationByPair(ctx, p1, p2)
}

func (s *ChatStore) conversationByPair(ctx context.Context, p1, p2 string) (*models.Conversation, error) {
	conv := &models.Conversation{}
	query := `
		SELECT id, participant1_id, participant2_id, created_at, updated_at
		FROM conversations
		WHERE participant1_id = $1 AND participant2_id = $2
	`
	err := s.db.QueryRowContext(ctx, query, p1, p2).Scan(
		&conv.ID, &conv.Participants[0], &conv.Participants[1], &conv.CreatedAt, &conv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	conv.Messages, err = s.messagesFor(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *ChatStore) messagesFor(ctx context.Context, conversationID string) ([]models.Message, error) {
	query := `
		SELECT id, sender_id, text, seen, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY seq ASC
	`
	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		var msg models.Message
		var seen []byte
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.Text, &seen, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if err := json.Unmarshal(seen, &msg.Seen); err != nil {
			return nil, fmt.Errorf("decode seen map: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}

// AppendMessage implements storage.ChatStore.
func (s *ChatStore) AppendMessage(ctx context.Context, senderID, receiverID, text string) (*models.Message, error) {
	conv, err := s.FindOrCreateConversation(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	seen, err := json.Marshal(models.SeenMap{senderID: true, receiverID: false})
	if err != nil {
		return nil, fmt.Errorf("encode seen map: %w", err)
	}

	msg := &models.Message{
		SenderID: senderID,
		Text:     text,
		Seen:     models.SeenMap{senderID: true, receiverID: false},
	}
	insert := `
		INSERT INTO messages (conversation_id, sender_id, text, seen)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = s.db.QueryRowContext(ctx, insert, conv.ID, senderID, text, seen).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, conv.ID); err != nil {
		// Non-fatal for the send itself; the message is durable.
		log.Printf("[Postgres] Error touching conversation %s: %v", conv.ID, err)
	}
	return msg, nil
}

// ConversationsFor implements storage.ChatStore.
func (s *ChatStore) ConversationsFor(ctx context.Context, userID string) ([]*models.Conversation, error) {
	query := `
		SELECT id, participant1_id, participant2_id, created_at, updated_at
		FROM conversations
		WHERE participant1_id = $1 OR participant2_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get conversations: %w", err)
	}
	defer rows.Close()

	var convs []*models.Conversation
	for rows.Next() {
		conv := &models.Conversation{}
		if err := rows.Scan(&conv.ID, &conv.Participants[0], &conv.Participants[1], &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}

	for _, conv := range convs {
		conv.Messages, err = s.messagesFor(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
	}
	return convs, nil
}

// MarkSeen implements storage.ChatStore. One statement flips every unseen
// flag, so the transition is atomic and false -> true only.
func (s *ChatStore) MarkSeen(ctx context.Context, userID, peerID string) (int, error) {
	p1, p2 := sortPair(userID, peerID)

	var conversationID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM conversations WHERE participant1_id = $1 AND participant2_id = $2`,
		p1, p2,
	).Scan(&conversationID)
	if err == sql.ErrNoRows {
		return 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get conversation: %w", err)
	}

	update := `
		UPDATE messages
		SET seen = seen || jsonb_build_object($3::text, true)
		WHERE conversation_id = $1
		  AND sender_id = $2
		  AND COALESCE((seen ->> $3)::boolean, false) = false
	`
	res, err := s.db.ExecContext(ctx, update, conversationID, peerID, userID)
	if err != nil {
		return 0, fmt.Errorf("mark seen: %w", err)
	}
	changed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark seen rows: %w", err)
	}
	return int(changed), nil
}
