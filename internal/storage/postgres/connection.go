package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/kushvardhan/CodeMate-Backend/internal/models"
	"github.com/kushvardhan/CodeMate-Backend/internal/storage"
)

// ConnectionStore implements storage.ConnectionStore on PostgreSQL.
type ConnectionStore struct {
	db *sql.DB
}

// NewConnectionStore creates a ConnectionStore over an open database handle.
func NewConnectionStore(db *sql.DB) *ConnectionStore {
	return &ConnectionStore{db: db}
}

const requestColumns = `id, from_user_id, to_user_id, status, created_at, updated_at`

func scanRequest(row interface{ Scan(...any) error }) (*models.ConnectionRequest, error) {
	req := &models.ConnectionRequest{}
	err := row.Scan(&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan connection request: %w", err)
	}
	return req, nil
}

// CreateRequest implements storage.ConnectionStore. The unique index on the
// normalized pair rejects a second request in either direction.
func (s *ConnectionStore) CreateRequest(ctx context.Context, fromUserID, toUserID, status string) (*models.ConnectionRequest, error) {
	insert := `
		INSERT INTO connection_requests (from_user_id, to_user_id, status)
		VALUES ($1, $2, $3)
		RETURNING ` + requestColumns
	req, err := scanRequest(s.db.QueryRowContext(ctx, insert, fromUserID, toUserID, status))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, storage.ErrDuplicate
		}
		return nil, err
	}
	return req, nil
}

// RequestByID implements storage.ConnectionStore.
func (s *ConnectionStore) RequestByID(ctx context.Context, id string) (*models.ConnectionRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM connection_requests WHERE id = $1`
	return scanRequest(s.db.QueryRowContext(ctx, query, id))
}

// UpdateRequestStatus implements storage.ConnectionStore.
func (s *ConnectionStore) UpdateRequestStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE connection_requests SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update request rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// RequestsReceived implements storage.ConnectionStore.
func (s *ConnectionStore) RequestsReceived(ctx context.Context, userID string) ([]*models.ConnectionRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM connection_requests
		WHERE to_user_id = $1 AND status = $2
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, models.StatusInterested)
	if err != nil {
		return nil, fmt.Errorf("get received requests: %w", err)
	}
	defer rows.Close()

	var out []*models.ConnectionRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return out, nil
}

// IsAccepted implements storage.ConnectionStore.
func (s *ConnectionStore) IsAccepted(ctx context.Context, userA, userB string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM connection_requests
			WHERE status = $3
			  AND ((from_user_id = $1 AND to_user_id = $2)
			    OR (from_user_id = $2 AND to_user_id = $1))
		)
	`
	var accepted bool
	if err := s.db.QueryRowContext(ctx, query, userA, userB, models.StatusAccepted).Scan(&accepted); err != nil {
		return false, fmt.Errorf("check accepted connection: %w", err)
	}
	return accepted, nil
}

// AcceptedConnectionsFor implements storage.ConnectionStore.
func (s *ConnectionStore) AcceptedConnectionsFor(ctx context.Context, userID string) ([]*models.Connection, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.email, u.password, u.gender,
		       u.age, u.about, u.skills, u.photo_url, u.created_at,
		       r.updated_at
		FROM connection_requests r
		JOIN users u ON u.id = CASE WHEN r.from_user_id = $1 THEN r.to_user_id ELSE r.from_user_id END
		WHERE r.status = $2 AND (r.from_user_id = $1 OR r.to_user_id = $1)
	`
	rows, err := s.db.QueryContext(ctx, query, userID, models.StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("get connections: %w", err)
	}
	defer rows.Close()

	var out []*models.Connection
	for rows.Next() {
		conn := &models.Connection{}
		var skills pq.StringArray
		err := rows.Scan(
			&conn.Peer.ID, &conn.Peer.FirstName, &conn.Peer.LastName, &conn.Peer.Email,
			&conn.Peer.Password, &conn.Peer.Gender, &conn.Peer.Age, &conn.Peer.About,
			&skills, &conn.Peer.PhotoURL, &conn.Peer.CreatedAt, &conn.AcceptedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conn.Peer.Skills = []string(skills)
		out = append(out, conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connections: %w", err)
	}
	return out, nil
}
