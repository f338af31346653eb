package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/kushvardhan/CodeMate-Backend/internal/models"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage"
)

// TokenCookie is the cookie carrying the session JWT.
const TokenCookie = "token"

// TokenTTL is how long a minted session token stays valid.
const TokenTTL = 24 * time.Hour

type contextKey int

const userKey contextKey = iota

// MintToken signs a session token for the user id.
func MintToken(userID, secret string) (string, error) {
	claims := jwt.MapClaims{
		"_id": userID,
		"exp": time.Now().Add(TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyToken parses a session token and returns the user id it names.
func VerifyToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("token not valid")
	}
	id, ok := claims["_id"].(string)
	if !ok || id == "" {
		return "", errors.New("token missing user id")
	}
	return id, nil
}

// UserAuth verifies the token cookie, loads the account, and attaches it to
// the request context. Requests without a valid identity get a 401.
func UserAuth(users storage.UserStore, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authenticate(r, users, secret)
			if err != nil {
				log.Printf("[Auth] Rejected %s %s: %v", r.Method, r.URL.Path, err)
				writeUnauthorized(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// Authenticate resolves the request's identity without wrapping a handler;
// the websocket upgrade path uses it directly.
func Authenticate(r *http.Request, users storage.UserStore, secret string) (*models.User, error) {
	return authenticate(r, users, secret)
}

func authenticate(r *http.Request, users storage.UserStore, secret string) (*models.User, error) {
	tokenString := ""
	if cookie, err := r.Cookie(TokenCookie); err == nil {
		tokenString = cookie.Value
	} else if t := r.URL.Query().Get(TokenCookie); t != "" {
		// Websocket clients that cannot send cookies pass the token as a
		// query parameter instead.
		tokenString = t
	}
	if tokenString == "" {
		return nil, errors.New("token not found")
	}
	userID, err := VerifyToken(tokenString, secret)
	if err != nil {
		return nil, err
	}
	user, err := users.UserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return user, nil
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFrom returns the authenticated user attached by UserAuth.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
}
