// Package auth implements the account endpoints: signup, login, logout.
// The messaging core never talks to it directly; it only consumes the
// verified identity the token middleware derives from what login minted.
package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kushvardhan/CodeMate-Backend/internal/middleware"
	"github.com/kushvardhan/CodeMate-Backend/internal/models"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage"
)

// Handler holds the dependencies for the auth endpoints.
type Handler struct {
	Users     storage.UserStore
	JWTSecret string
}

// Signup handles POST /signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := ValidateSignup(req.FirstName, req.LastName, req.Email, req.Password); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		log.Printf("[Auth] Error hashing password: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  string(hashed),
	}
	if err := h.Users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeMessage(w, http.StatusBadRequest, "Email already exists.")
			return
		}
		log.Printf("[Auth] Error creating user: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	log.Printf("[Auth] Registered user %s", user.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully.",
		"data":    user,
	})
}

// Login handles POST /login. A matching password is the success path; the
// token is set as a cookie so both the HTTP API and the websocket handshake
// can present it.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := ValidateLogin(req.Email, req.Password); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.Users.UserByEmail(r.Context(), req.Email)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid credentials.")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid credentials.")
		return
	}

	token, err := middleware.MintToken(user.ID, h.JWTSecret)
	if err != nil {
		log.Printf("[Auth] Error minting token for %s: %v", user.ID, err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(middleware.TokenTTL),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful.",
		"user":    user,
	})
}

// Logout handles POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	writeMessage(w, http.StatusOK, "Logout successful.")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
