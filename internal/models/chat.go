package models

import "time"

// SeenMap records which participants have viewed a message, keyed by user ID.
// A missing entry means "not seen". Entries only ever flip false -> true.
type SeenMap map[string]bool

// Seen reports whether the given user has viewed the message.
func (s SeenMap) Seen(userID string) bool {
	return s[userID]
}

// Message is a single chat message. Immutable once created, except for
// seen-flag transitions.
type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Seen      SeenMap   `json:"seen"`
	CreatedAt time.Time `json:"createdAt"`
}

// Conversation is the persisted, append-only message log for exactly one
// unordered pair of users. Participants are stored sorted so the pair forms
// a natural unique key regardless of who messaged first.
type Conversation struct {
	ID           string    `json:"id"`
	Participants [2]string `json:"participants"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PeerOf returns the other participant of the conversation.
func (c *Conversation) PeerOf(userID string) string {
	if c.Participants[0] == userID {
		return c.Participants[1]
	}
	return c.Participants[0]
}

// LastMessage returns the most recent message, or nil for an empty log.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// UnseenCountFor counts messages authored by the peer that userID has not
// seen yet.
func (c *Conversation) UnseenCountFor(userID string) int {
	count := 0
	for i := range c.Messages {
		m := &c.Messages[i]
		if m.SenderID != userID && !m.Seen.Seen(userID) {
			count++
		}
	}
	return count
}
