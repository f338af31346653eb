// Package requests implements the connection-request workflow. Its accepted
// set is what authorizes every chat join and send, so the chat core depends
// on its store but never on its handlers.
package requests

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kushvardhan/CodeMate-Backend/internal/middleware"
	"github.com/kushvardhan/CodeMate-Backend/internal/models"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage"
)

// Handler holds the dependencies for the connection-request endpoints.
type Handler struct {
	Connections storage.ConnectionStore
	Users       storage.UserStore
}

// SendRequest handles POST /request/send/{status}/{toUserId}.
func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}
	vars := mux.Vars(r)
	status, toUserID := vars["status"], vars["toUserId"]

	if status != models.StatusIgnored && status != models.StatusInterested {
		writeMessage(w, http.StatusBadRequest, "Invalid status. Only 'ignored' and 'interested' are allowed.")
		return
	}
	if toUserID == user.ID {
		writeMessage(w, http.StatusBadRequest, "You cannot send a request to yourself.")
		return
	}
	if _, err := h.Users.UserByID(r.Context(), toUserID); err != nil {
		writeMessage(w, http.StatusNotFound, "User not found.")
		return
	}

	req, err := h.Connections.CreateRequest(r.Context(), user.ID, toUserID, status)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeMessage(w, http.StatusBadRequest, "Request already sent.")
			return
		}
		log.Printf("[Request] Error creating request: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Request sent successfully.",
		"data":    req,
	})
}

// ReviewRequest handles POST /request/review/{status}/{requestId}. Only the
// recipient of a pending "interested" request may accept or reject it.
func (h *Handler) ReviewRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}
	vars := mux.Vars(r)
	status, requestID := vars["status"], vars["requestId"]

	if status != models.StatusAccepted && status != models.StatusRejected {
		writeMessage(w, http.StatusBadRequest, "Invalid status. Only 'accepted' and 'rejected' are allowed.")
		return
	}

	req, err := h.Connections.RequestByID(r.Context(), requestID)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Connection request not found.")
		return
	}
	if req.ToUserID != user.ID || req.Status != models.StatusInterested {
		writeMessage(w, http.StatusNotFound, "Connection request not found.")
		return
	}

	if err := h.Connections.UpdateRequestStatus(r.Context(), requestID, status); err != nil {
		log.Printf("[Request] Error updating request %s: %v", requestID, err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Request " + status + " successfully.",
	})
}

// ReceivedRequests handles GET /user/requests/received.
func (h *Handler) ReceivedRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	reqs, err := h.Connections.RequestsReceived(r.Context(), user.ID)
	if err != nil {
		log.Printf("[Request] Error listing received requests: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	type received struct {
		*models.ConnectionRequest
		From models.Card `json:"fromUser"`
	}
	out := []received{}
	for _, req := range reqs {
		entry := received{ConnectionRequest: req}
		if from, err := h.Users.UserByID(r.Context(), req.FromUserID); err == nil {
			entry.From = from.Card()
		}
		out = append(out, entry)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Connection Requests fetched successfully.",
		"data":    out,
	})
}

// ListConnections handles GET /user/connections.
func (h *Handler) ListConnections(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	connections, err := h.Connections.AcceptedConnectionsFor(r.Context(), user.ID)
	if err != nil {
		log.Printf("[Request] Error listing connections: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	cards := []models.Card{}
	for _, conn := range connections {
		cards = append(cards, conn.Peer.Card())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Connections fetched successfully.",
		"data":    cards,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
