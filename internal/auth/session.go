package auth

import (
	"context"

	"docvault/internal/repository"
	"docvault/internal/repository/postgres"
)

// SessionAuthenticator verifies bearer tokens against the platform's
// sessions table.
type SessionAuthenticator struct {
	sessions repository.SessionRepository
}

// NewSessionAuthenticator builds the production authenticator.
func NewSessionAuthenticator(sessions repository.SessionRepository) *SessionAuthenticator {
	return &SessionAuthenticator{sessions: sessions}
}

var _ Authenticator = (*SessionAuthenticator)(nil)

// Authenticate resolves a live session token to its user.
func (a *SessionAuthenticator) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthenticated
	}
	userID, err := a.sessions.UserIDForToken(ctx, token)
	if err != nil {
		if postgres.IsNoRows(err) {
			return Identity{}, ErrUnauthenticated
		}
		return Identity{}, err
	}
	return Identity{UserID: userID}, nil
}

// StaticAuthenticator returns a fixed identity for every call. It exists for
// local development and tests only and is selected by config at startup.
type StaticAuthenticator struct {
	UserID string
}

var _ Authenticator = (*StaticAuthenticator)(nil)

// Authenticate ignores the token and returns the configured identity.
func (a *StaticAuthenticator) Authenticate(ctx context.Context, token string) (Identity, error) {
	if a.UserID == "" {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{UserID: a.UserID}, nil
}
