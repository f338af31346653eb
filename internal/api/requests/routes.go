package requests

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRequestRoutes mounts the connection-request endpoints. All of them
// require an authenticated session; auth is applied by the caller's router.
func RegisterRequestRoutes(r *mux.Router, handler *Handler) {
	r.HandleFunc("/request/send/{status}/{toUserId}", handler.SendRequest).Methods(http.MethodPost)
	r.HandleFunc("/request/review/{status}/{requestId}", handler.ReviewRequest).Methods(http.MethodPost)
	r.HandleFunc("/user/requests/received", handler.ReceivedRequests).Methods(http.MethodGet)
	r.HandleFunc("/user/connections", handler.ListConnections).Methods(http.MethodGet)
}
