package auth

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterAuthRoutes mounts the account endpoints. None of them require an
// existing session; logout simply clears the cookie.
func RegisterAuthRoutes(r *mux.Router, handler *Handler) {
	r.HandleFunc("/signup", handler.Signup).Methods(http.MethodPost)
	r.HandleFunc("/login", handler.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", handler.Logout).Methods(http.MethodPost)
}
