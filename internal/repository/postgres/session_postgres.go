package postgres

import (
	"context"
	"database/sql"

	"docvault/internal/repository"
)

// SessionPostgres resolves bearer tokens against the sessions table owned by
// the platform's identity system.
type SessionPostgres struct {
	db *sql.DB
}

// NewSessionPostgres creates a new SessionPostgres repository.
func NewSessionPostgres(db *sql.DB) *SessionPostgres {
	return &SessionPostgres{db: db}
}

var _ repository.SessionRepository = (*SessionPostgres)(nil)

// UserIDForToken returns the user id for a live session token.
// Expiry is checked in SQL so clock handling stays in one place.
func (r *SessionPostgres) UserIDForToken(ctx context.Context, token string) (string, error) {
	const q = `SELECT user_id FROM sessions WHERE token = $1 AND expires_at > now()`
	var userID string
	if err := r.db.QueryRowContext(ctx, q, token).Scan(&userID); err != nil {
		return "", err
	}
	return userID, nil
}
