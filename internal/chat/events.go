package chat

import (
	"encoding/json"
	"log"
	"time"
)

// Socket event names. The wire format is a JSON envelope
// {"event": <name>, "data": <payload>} in both directions.
const (
	// client -> server
	EventJoinChat    = "joinChat"
	EventSendMessage = "sendMessage"

	// server -> client
	EventJoinedChat         = "joinedChat"
	EventPeerJoined         = "peerJoined"
	EventPeerLeft           = "peerLeft"
	EventMessageReceived    = "messageReceived"
	EventUnseenCountChanged = "unseenCountChanged"
	EventMessageError       = "messageError"
)

// Envelope frames every socket event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinChatPayload is sent by a client to focus this socket on one peer.
type JoinChatPayload struct {
	DisplayName string `json:"displayName"`
	UserID      string `json:"userId"`
	PeerID      string `json:"peerId"`
}

// SendMessagePayload is sent by a client to deliver one message.
type SendMessagePayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
}

// JoinedChatPayload acknowledges a join to the caller.
type JoinedChatPayload struct {
	RoomID string `json:"roomId"`
}

// PresencePayload announces a peer joining or leaving the room.
type PresencePayload struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// MessagePayload carries a delivered message into the pair room.
type MessagePayload struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// UnseenCountChangedPayload nudges a user's devices to refresh their badge.
type UnseenCountChangedPayload struct {
	UserID string `json:"userId"`
}

// ErrorPayload reports a failed operation to the originating socket only.
type ErrorPayload struct {
	Reason string `json:"reason"`
}

// EncodeEvent marshals an envelope. Payloads are plain structs, so a
// marshal failure is a programming error; it is logged and yields nil,
// which publishers treat as "nothing to send".
func EncodeEvent(event string, payload any) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Chat] Error encoding %s payload: %v", event, err)
		return nil
	}
	out, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		log.Printf("[Chat] Error encoding %s envelope: %v", event, err)
		return nil
	}
	return out
}
