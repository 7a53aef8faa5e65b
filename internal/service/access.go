package service

import (
	"context"
	"fmt"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/repository/postgres"
)

// AccessGate maps a caller's per-offering role onto the permission each
// operation requires. It is the single authorization seam: handlers and the
// document service never inspect roles directly.
type AccessGate struct {
	memberships repository.MembershipRepository
}

// NewAccessGate constructs an AccessGate over the membership store.
func NewAccessGate(memberships repository.MembershipRepository) *AccessGate {
	return &AccessGate{memberships: memberships}
}

// Authorize returns the caller's role when it satisfies the required
// permission. A missing offering yields ErrOfferingNotFound; a missing
// membership or insufficient role yields ErrAccessDenied, regardless of how
// valid the caller's global identity is.
func (g *AccessGate) Authorize(ctx context.Context, userID, offeringID string, p model.Permission) (model.Role, error) {
	exists, err := g.memberships.OfferingExists(ctx, offeringID)
	if err != nil {
		return "", fmt.Errorf("check offering: %w", err)
	}
	if !exists {
		return "", ErrOfferingNotFound
	}

	role, err := g.memberships.RoleForOffering(ctx, userID, offeringID)
	if err != nil {
		if postgres.IsNoRows(err) {
			return "", ErrAccessDenied
		}
		return "", fmt.Errorf("resolve role: %w", err)
	}
	if !role.Allows(p) {
		return "", ErrAccessDenied
	}
	return role, nil
}
