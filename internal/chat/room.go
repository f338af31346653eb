package chat

import (
	"crypto/sha256"
	"encoding/hex"
)

// roomIDBytes is the truncated width of a room identifier. 16 bytes keeps
// the accidental-collision probability across all user pairs far below one
// in a million even at hundreds of millions of users, while staying short
// enough to use as a channel name.
const roomIDBytes = 16

// ResolveRoom derives the broadcast room identifier for a pair of users.
// It is order-independent and pure, so both clients and the server can
// compute it without a lookup: ResolveRoom(a, b) == ResolveRoom(b, a).
// Each id is hashed to a fixed width before the pair is combined, so ids
// of any shape map to distinct pairs; no separator ambiguity exists.
func ResolveRoom(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	ha := sha256.Sum256([]byte(userA))
	hb := sha256.Sum256([]byte(userB))
	h := sha256.New()
	h.Write(ha[:])
	h.Write(hb[:])
	return hex.EncodeToString(h.Sum(nil)[:roomIDBytes])
}

// RoomChannel names the hub channel for a pair room.
func RoomChannel(roomID string) string {
	return "room:" + roomID
}

// PersonalChannel names the hub channel spanning all of one user's sockets.
// It carries cross-conversation notifications such as unseen-count changes.
func PersonalChannel(userID string) string {
	return "user:" + userID
}
