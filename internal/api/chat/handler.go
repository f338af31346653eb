// Package chat exposes the messaging core over HTTP and websocket. The HTTP
// side serves the read model (history, unseen counts, chat list) and seen
// receipts; the socket side carries live joins, sends, and presence.
package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kushvardhan/CodeMate-Backend/internal/chat"
	"github.com/kushvardhan/CodeMate-Backend/internal/middleware"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage"
)

// Handler holds the dependencies for the chat HTTP endpoints.
type Handler struct {
	Service *chat.Service
}

// GetChat handles GET /chat/getChat/{userId}: the full ordered history with
// the named peer. Opening a chat for the first time creates the conversation.
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}
	peerID := mux.Vars(r)["userId"]

	messages, err := h.Service.History(r.Context(), user.ID, peerID)
	if err != nil {
		if errors.Is(err, chat.ErrInvalidPayload) {
			writeMessage(w, http.StatusBadRequest, "Invalid chat request.")
			return
		}
		log.Printf("[Chat] Error loading history for %s with %s: %v", user.ID, peerID, err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Chat fetched successfully.",
		"data":    messages,
	})
}

// UnseenCounts handles GET /chat/unseen-counts.
func (h *Handler) UnseenCounts(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	summaries, err := h.Service.UnseenCounts(r.Context(), user.ID)
	if err != nil {
		log.Printf("[Chat] Error loading unseen counts for %s: %v", user.ID, err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Unseen counts fetched successfully.",
		"data":    summaries,
	})
}

// ChatList handles GET /chat/chat-list.
func (h *Handler) ChatList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	entries, err := h.Service.ChatList(r.Context(), user.ID)
	if err != nil {
		log.Printf("[Chat] Error loading chat list for %s: %v", user.ID, err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Chat list fetched successfully.",
		"data":    entries,
	})
}

// MarkSeen handles POST /chat/mark-seen/{userId}: flips the caller's seen
// flag on every unread message from that peer.
func (h *Handler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}
	peerID := mux.Vars(r)["userId"]

	if err := h.Service.MarkSeen(r.Context(), user.ID, peerID); err != nil {
		switch {
		case errors.Is(err, chat.ErrInvalidPayload):
			writeMessage(w, http.StatusBadRequest, "Invalid chat request.")
		case errors.Is(err, storage.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "Chat not found.")
		default:
			log.Printf("[Chat] Error marking seen for %s with %s: %v", user.ID, peerID, err)
			writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		}
		return
	}

	writeMessage(w, http.StatusOK, "Messages marked as seen.")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
