package profile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kushvardhan/CodeMate-Backend/internal/middleware"
	"github.com/kushvardhan/CodeMate-Backend/internal/models"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage/memory"
)

func setup(t *testing.T) (*Handler, *memory.UserStore, *models.User) {
	t.Helper()
	users := memory.NewUserStore()
	user := &models.User{ID: "u1", FirstName: "Kush", LastName: "Dev", Email: "kush@codemate.dev"}
	if err := users.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &Handler{Users: users}, users, user
}

func patch(h *Handler, user *models.User, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/profile/edit", strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.Edit(rec, req)
	return rec
}

func TestEdit_UpdatesAllowedFields(t *testing.T) {
	h, users, user := setup(t)

	rec := patch(h, user, `{"about":"Go and distributed systems.","age":24,"skills":["go","postgres"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit = %d, body %s", rec.Code, rec.Body.String())
	}

	stored, err := users.UserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.About != "Go and distributed systems." || stored.Age != 24 {
		t.Errorf("stored profile = %+v", stored)
	}
	if len(stored.Skills) != 2 {
		t.Errorf("skills = %v", stored.Skills)
	}
}

func TestEdit_EmailIsImmutable(t *testing.T) {
	h, users, user := setup(t)

	// Unknown fields are simply ignored by the allow list.
	rec := patch(h, user, `{"email":"evil@codemate.dev","firstName":"Kushal"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit = %d, body %s", rec.Code, rec.Body.String())
	}

	stored, err := users.UserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.Email != "kush@codemate.dev" {
		t.Errorf("email changed to %q", stored.Email)
	}
	if stored.FirstName != "Kushal" {
		t.Errorf("first name = %q", stored.FirstName)
	}
}

func TestEdit_Validation(t *testing.T) {
	h, _, user := setup(t)

	cases := []struct {
		name string
		body string
	}{
		{"short first name", `{"firstName":"Ku"}`},
		{"underage", `{"age":12}`},
		{"about too long", `{"about":"` + strings.Repeat("a", 501) + `"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := patch(h, user, tc.body); rec.Code != http.StatusBadRequest {
				t.Errorf("edit = %d, want 400", rec.Code)
			}
		})
	}
}
