package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/kushvardhan/CodeMate-Backend/internal/middleware"
	"github.com/kushvardhan/CodeMate-Backend/internal/models"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage/memory"
)

const testSecret = "test-secret"

func newHandler(t *testing.T) (*Handler, *memory.UserStore) {
	t.Helper()
	users := memory.NewUserStore()
	return &Handler{Users: users, JWTSecret: testSecret}, users
}

func seedUser(t *testing.T, users *memory.UserStore, email, password string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{FirstName: "Kush", LastName: "Dev", Email: email, Password: string(hashed)}
	if err := users.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func postJSON(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestLogin_CorrectPasswordSucceeds(t *testing.T) {
	h, users := newHandler(t)
	seedUser(t, users, "kush@codemate.dev", "Sup3r$ecret")

	rec := postJSON(h.Login, `{"email":"kush@codemate.dev","password":"Sup3r$ecret"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}

	// A session cookie must be set and verifiable.
	res := rec.Result()
	var token string
	for _, c := range res.Cookies() {
		if c.Name == middleware.TokenCookie {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatal("login did not set a token cookie")
	}
	userID, err := middleware.VerifyToken(token, testSecret)
	if err != nil {
		t.Fatalf("minted token does not verify: %v", err)
	}
	if userID == "" {
		t.Error("token carries no user id")
	}
}

func TestLogin_WrongPasswordFails(t *testing.T) {
	h, users := newHandler(t)
	seedUser(t, users, "kush@codemate.dev", "Sup3r$ecret")

	rec := postJSON(h.Login, `{"email":"kush@codemate.dev","password":"Wr0ng!pass"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("login with wrong password = %d, want 400", rec.Code)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookie && c.Value != "" {
			t.Error("failed login set a session cookie")
		}
	}
}

func TestLogin_UnknownUserFails(t *testing.T) {
	h, _ := newHandler(t)
	rec := postJSON(h.Login, `{"email":"nobody@codemate.dev","password":"Sup3r$ecret"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("login for unknown user = %d, want 400", rec.Code)
	}
}

func TestSignup_DuplicateEmailRejected(t *testing.T) {
	h, _ := newHandler(t)

	body := `{"firstName":"Kush","lastName":"Dev","email":"kush@codemate.dev","password":"Sup3r$ecret"}`
	if rec := postJSON(h.Signup, body); rec.Code != http.StatusCreated {
		t.Fatalf("first signup = %d, body %s", rec.Code, rec.Body.String())
	}
	rec := postJSON(h.Signup, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup = %d, want 400", rec.Code)
	}

	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["message"] != "Email already exists." {
		t.Errorf("duplicate signup message = %q", resp["message"])
	}
}

func TestValidateSignup(t *testing.T) {
	cases := []struct {
		name    string
		first   string
		last    string
		email   string
		pass    string
		wantErr bool
	}{
		{"valid", "Kush", "Dev", "kush@codemate.dev", "Sup3r$ecret", false},
		{"short first name", "Ku", "Dev", "kush@codemate.dev", "Sup3r$ecret", true},
		{"missing last name", "Kush", "", "kush@codemate.dev", "Sup3r$ecret", true},
		{"bad email", "Kush", "Dev", "not-an-email", "Sup3r$ecret", true},
		{"weak password", "Kush", "Dev", "kush@codemate.dev", "password", true},
		{"no symbol", "Kush", "Dev", "kush@codemate.dev", "Passw0rdd", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSignup(tc.first, tc.last, tc.email, tc.pass)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateSignup = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
