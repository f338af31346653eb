// Package profile serves the authenticated user's own profile.
package profile

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/kushvardhan/CodeMate-Backend/internal/middleware"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage"
)

const aboutMaxLen = 500

// Handler holds the dependencies for the profile endpoints.
type Handler struct {
	Users storage.UserStore
}

// View handles GET /profile.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile fetched successfully.",
		"data":    user,
	})
}

// editPayload carries only the fields a user may change. Pointers distinguish
// "absent" from "set to zero value".
type editPayload struct {
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	Gender    *string   `json:"gender"`
	Age       *int      `json:"age"`
	About     *string   `json:"about"`
	Skills    *[]string `json:"skills"`
	PhotoURL  *string   `json:"photoUrl"`
}

func (p *editPayload) validate() error {
	if p.FirstName != nil {
		if n := len(strings.TrimSpace(*p.FirstName)); n < 3 || n > 20 {
			return errors.New("First name must be between 3 and 20 characters.")
		}
	}
	if p.LastName != nil && strings.TrimSpace(*p.LastName) == "" {
		return errors.New("Last name is required.")
	}
	if p.Age != nil && *p.Age < 16 {
		return errors.New("Age must be at least 16.")
	}
	if p.About != nil && len(*p.About) > aboutMaxLen {
		return errors.New("About must be at most 500 characters.")
	}
	return nil
}

// Edit handles PATCH /profile/edit. Email and password are never editable
// through this endpoint.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	var payload editPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := payload.validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	updated := *user
	if payload.FirstName != nil {
		updated.FirstName = strings.TrimSpace(*payload.FirstName)
	}
	if payload.LastName != nil {
		updated.LastName = strings.TrimSpace(*payload.LastName)
	}
	if payload.Gender != nil {
		updated.Gender = *payload.Gender
	}
	if payload.Age != nil {
		updated.Age = *payload.Age
	}
	if payload.About != nil {
		updated.About = *payload.About
	}
	if payload.Skills != nil {
		updated.Skills = *payload.Skills
	}
	if payload.PhotoURL != nil {
		updated.PhotoURL = *payload.PhotoURL
	}

	if err := h.Users.UpdateUser(r.Context(), &updated); err != nil {
		log.Printf("[Profile] Error updating user %s: %v", user.ID, err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": updated.FirstName + ", your profile was updated successfully.",
		"data":    updated,
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
