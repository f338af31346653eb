// Package postgres implements the storage contracts on PostgreSQL using
// database/sql and lib/pq. Conversation uniqueness is enforced by a UNIQUE
// constraint on the sorted participant pair; see schema.sql.
package postgres

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Open connects to PostgreSQL and configures the connection pool.
func Open(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("[Postgres] Connected.")
	return db, nil
}

// sortPair returns the participant pair in lexicographic order, matching the
// (participant1_id, participant2_id) unique constraint.
func sortPair(userA, userB string) (string, string) {
	if userB < userA {
		return userB, userA
	}
	return userA, userB
}
