package profile

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterProfileRoutes mounts the profile endpoints on an authenticated
// router.
func RegisterProfileRoutes(r *mux.Router, handler *Handler) {
	r.HandleFunc("/profile", handler.View).Methods(http.MethodGet)
	r.HandleFunc("/profile/edit", handler.Edit).Methods(http.MethodPatch)
}
