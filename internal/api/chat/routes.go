package chat

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes mounts the chat HTTP endpoints on an authenticated
// router. The websocket endpoint is registered separately because it carries
// its own token check inside the upgrade.
func RegisterChatRoutes(r *mux.Router, handler *Handler) {
	r.HandleFunc("/chat/getChat/{userId}", handler.GetChat).Methods(http.MethodGet)
	r.HandleFunc("/chat/unseen-counts", handler.UnseenCounts).Methods(http.MethodGet)
	r.HandleFunc("/chat/chat-list", handler.ChatList).Methods(http.MethodGet)
	r.HandleFunc("/chat/mark-seen/{userId}", handler.MarkSeen).Methods(http.MethodPost)
}
