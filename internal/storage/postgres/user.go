package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/kushvardhan/CodeMate-Backend/internal/models"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage"
)

// UserStore implements storage.UserStore on PostgreSQL.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a UserStore over an open database handle.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, first_name, last_name, email, password, gender, age, about, skills, photo_url, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	var skills pq.StringArray
	err := row.Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Password,
		&user.Gender, &user.Age, &user.About, &skills, &user.PhotoURL, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Skills = []string(skills)
	return user, nil
}

// CreateUser implements storage.UserStore.
func (s *UserStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.PhotoURL == "" {
		user.PhotoURL = models.DefaultPhotoURL
	}
	insert := `
		INSERT INTO users (first_name, last_name, email, password, gender, age, about, skills, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, insert,
		user.FirstName, user.LastName, strings.ToLower(user.Email), user.Password,
		user.Gender, user.Age, user.About, pq.Array(user.Skills), user.PhotoURL,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UserByEmail implements storage.UserStore.
func (s *UserStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, strings.ToLower(email)))
}

// UserByID implements storage.UserStore.
func (s *UserStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

// UpdateUser implements storage.UserStore. Email and password are not
// editable through this path.
func (s *UserStore) UpdateUser(ctx context.Context, user *models.User) error {
	update := `
		UPDATE users
		SET first_name = $2, last_name = $3, gender = $4, age = $5,
		    about = $6, skills = $7, photo_url = $8
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, update,
		user.ID, user.FirstName, user.LastName, user.Gender, user.Age,
		user.About, pq.Array(user.Skills), user.PhotoURL,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
