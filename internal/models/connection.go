package models

import "time"

// Connection request statuses. A pair may chat only once a request between
// them has been accepted.
const (
	StatusIgnored    = "ignored"
	StatusInterested = "interested"
	StatusAccepted   = "accepted"
	StatusRejected   = "rejected"
)

// ConnectionRequest is a directed match request between two users. At most
// one request exists per pair, in either direction.
type ConnectionRequest struct {
	ID         string    `json:"_id"`
	FromUserID string    `json:"fromUserId"`
	ToUserID   string    `json:"toUserId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Connection is an accepted edge viewed from one user's side.
type Connection struct {
	Peer       User      `json:"peer"`
	AcceptedAt time.Time `json:"acceptedAt"`
}
