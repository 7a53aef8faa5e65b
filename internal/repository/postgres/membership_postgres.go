package postgres

import (
	"context"
	"database/sql"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// MembershipPostgres reads offering and membership rows owned by the wider
// platform. The document service never writes these tables.
type MembershipPostgres struct {
	db *sql.DB
}

// NewMembershipPostgres creates a new MembershipPostgres repository.
func NewMembershipPostgres(db *sql.DB) *MembershipPostgres {
	return &MembershipPostgres{db: db}
}

var _ repository.MembershipRepository = (*MembershipPostgres)(nil)

// OfferingExists reports whether the offering row is present.
func (r *MembershipPostgres) OfferingExists(ctx context.Context, offeringID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM offerings WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, offeringID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// RoleForOffering returns the caller's role in the organization owning the
// offering. sql.ErrNoRows means no membership record.
func (r *MembershipPostgres) RoleForOffering(ctx context.Context, userID, offeringID string) (model.Role, error) {
	const q = `
		SELECT m.role
		FROM memberships m
		JOIN offerings o ON o.organization_id = m.organization_id
		WHERE m.user_id = $1 AND o.id = $2
	`
	var role model.Role
	if err := r.db.QueryRowContext(ctx, q, userID, offeringID).Scan(&role); err != nil {
		return "", err
	}
	return role, nil
}
