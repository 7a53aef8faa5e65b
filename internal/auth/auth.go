// Package auth resolves a caller's identity from request credentials.
//
// Which implementation runs is decided once at process wiring time; request
// handling never branches on environment. The fixed-identity double replaces
// an older pattern of an env-gated bypass inside the handlers.
package auth

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned for missing, unknown or expired credentials.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the authenticated caller as the document service sees it.
// Roles are resolved separately per offering by the access gate.
type Identity struct {
	UserID string
}

// Authenticator turns a bearer token into an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}
