package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kushvardhan/CodeMate-Backend/internal/chat"
	"github.com/kushvardhan/CodeMate-Backend/internal/middleware"
	"github.com/kushvardhan/CodeMate-Backend/internal/models"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage"
	"github.com/kushvardhan/CodeMate-Backend/internal/ws"
)

// SocketServer upgrades websocket connections and dispatches their events.
type SocketServer struct {
	Service   *chat.Service
	Hub       *ws.Hub
	Registry  *ws.Registry
	Users     storage.UserStore
	JWTSecret string
	Upgrader  websocket.Upgrader
}

// NewSocketServer builds the socket endpoint. Origin checks are relaxed here
// because the browser client authenticates with the same JWT as the HTTP API.
func NewSocketServer(service *chat.Service, hub *ws.Hub, registry *ws.Registry, users storage.UserStore, jwtSecret string) *SocketServer {
	return &SocketServer{
		Service:   service,
		Hub:       hub,
		Registry:  registry,
		Users:     users,
		JWTSecret: jwtSecret,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeWS handles GET /ws. The token comes from the session cookie or, for
// clients that cannot send one, the "token" query parameter.
func (s *SocketServer) ServeWS(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.Authenticate(r, s.Users, s.JWTSecret)
	if err != nil {
		log.Printf("[Socket] Rejected connection: %v", err)
		http.Error(w, "Unauthorized.", http.StatusUnauthorized)
		return
	}

	conn, err := s.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Socket] Upgrade failed for user %s: %v", user.ID, err)
		return
	}

	client := ws.NewClient(uuid.NewString(), user.ID, conn)
	// Every device of a user joins the personal channel at connect time, so
	// badge updates arrive without an explicit join.
	s.Hub.Subscribe(client, chat.PersonalChannel(user.ID))
	go client.WritePump()

	log.Printf("[Socket] User %s connected on socket %s", user.ID, client.ID)
	s.readLoop(client, user)
}

// readLoop is the only reader of the socket, so events on one connection are
// handled strictly in arrival order. It returns when the socket closes, and
// cleanup always runs.
func (s *SocketServer) readLoop(client *ws.Client, user *models.User) {
	defer s.disconnect(client)

	for {
		data, err := client.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Socket] Read error on socket %s: %v", client.ID, err)
			}
			return
		}

		var envelope chat.Envelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			s.sendError(client, "Malformed event.")
			continue
		}

		switch envelope.Event {
		case chat.EventJoinChat:
			s.handleJoin(client, user, envelope.Data)
		case chat.EventSendMessage:
			s.handleSend(client, envelope.Data)
		default:
			log.Printf("[Socket] Unknown event %q on socket %s", envelope.Event, client.ID)
		}
	}
}

// handleJoin focuses the socket on one peer: it resolves the pair room,
// replaces any previous focus, and announces presence to the peer.
func (s *SocketServer) handleJoin(client *ws.Client, user *models.User, data json.RawMessage) {
	var payload chat.JoinChatPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.UserID == "" || payload.PeerID == "" {
		s.sendError(client, "joinChat requires userId and peerId.")
		return
	}
	if payload.UserID == payload.PeerID {
		s.sendError(client, "joinChat requires two distinct users.")
		return
	}
	// The socket's identity comes from the token, never from the payload.
	if payload.UserID != user.ID {
		s.sendError(client, "joinChat userId does not match the authenticated user.")
		return
	}
	if err := s.Service.Authorize(context.Background(), user.ID, payload.PeerID); err != nil {
		if errors.Is(err, chat.ErrNotConnected) {
			s.sendError(client, "You are not connected with this user.")
		} else {
			log.Printf("[Socket] Error authorizing join on socket %s: %v", client.ID, err)
			s.sendError(client, "Could not join chat.")
		}
		return
	}

	room := chat.ResolveRoom(user.ID, payload.PeerID)
	prev := s.Registry.Register(&ws.Session{
		SocketID:    client.ID,
		UserID:      user.ID,
		PeerID:      payload.PeerID,
		Room:        room,
		DisplayName: payload.DisplayName,
		JoinedAt:    time.Now().UTC(),
	})
	if prev != nil && prev.Room != room {
		s.Hub.Unsubscribe(client, chat.RoomChannel(prev.Room))
		s.Hub.PublishExcept(chat.RoomChannel(prev.Room), chat.EncodeEvent(chat.EventPeerLeft, chat.PresencePayload{
			UserID:    user.ID,
			Timestamp: time.Now().UTC(),
		}), client)
	}
	s.Hub.Subscribe(client, chat.RoomChannel(room))

	client.Enqueue(chat.EncodeEvent(chat.EventJoinedChat, chat.JoinedChatPayload{RoomID: room}))
	s.Hub.PublishExcept(chat.RoomChannel(room), chat.EncodeEvent(chat.EventPeerJoined, chat.PresencePayload{
		UserID:      user.ID,
		DisplayName: payload.DisplayName,
		Timestamp:   time.Now().UTC(),
	}), client)

	log.Printf("[Socket] User %s joined room %s", user.ID, room)
}

// handleSend pushes one message through the service. Failures go back to the
// sending socket only; the peer never sees half-delivered traffic.
func (s *SocketServer) handleSend(client *ws.Client, data json.RawMessage) {
	var payload chat.SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.sendError(client, "sendMessage requires senderId, receiverId, and text.")
		return
	}
	if payload.SenderID != client.UserID {
		s.sendError(client, "sendMessage senderId does not match the authenticated user.")
		return
	}

	if _, err := s.Service.SubmitMessage(context.Background(), payload.SenderID, payload.ReceiverID, payload.Text); err != nil {
		switch {
		case errors.Is(err, chat.ErrInvalidPayload):
			s.sendError(client, "sendMessage requires senderId, receiverId, and text.")
		case errors.Is(err, chat.ErrNotConnected):
			s.sendError(client, "You are not connected with this user.")
		default:
			log.Printf("[Socket] Error delivering message on socket %s: %v", client.ID, err)
			s.sendError(client, "Could not deliver message.")
		}
	}
}

// disconnect tears the socket down: presence out, session gone, subscriptions
// dropped. Failures are logged and swallowed so cleanup always completes.
func (s *SocketServer) disconnect(client *ws.Client) {
	if session, ok := s.Registry.Remove(client.ID); ok {
		s.Hub.PublishExcept(chat.RoomChannel(session.Room), chat.EncodeEvent(chat.EventPeerLeft, chat.PresencePayload{
			UserID:      session.UserID,
			DisplayName: session.DisplayName,
			Timestamp:   time.Now().UTC(),
		}), client)
	}
	s.Hub.Drop(client)
	log.Printf("[Socket] Socket %s disconnected", client.ID)
}

func (s *SocketServer) sendError(client *ws.Client, reason string) {
	client.Enqueue(chat.EncodeEvent(chat.EventMessageError, chat.ErrorPayload{Reason: reason}))
}
