package repository

import (
	"context"

	"docvault/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document row and returns the stored record.
	// A violation of the per-offering checksum uniqueness constraint is
	// returned as-is; callers detect it with postgres.IsUniqueViolation.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindByChecksum returns the document with the given content hash inside
	// one offering, or sql.ErrNoRows. This is the dedup fast path; the
	// unique constraint is the actual guarantee under concurrency.
	FindByChecksum(ctx context.Context, offeringID, checksum string) (*model.Document, error)

	// ListByOffering returns the offering's documents matching the filter,
	// newest first.
	ListByOffering(ctx context.Context, offeringID string, f DocumentFilter) ([]model.Document, error)

	// UpdateMeta applies the non-nil patch fields and returns the updated row.
	UpdateMeta(ctx context.Context, id string, p MetaPatch) (*model.Document, error)

	// UpdateStorageKey rewrites the blob key. Only the explicit migration
	// operation calls this.
	UpdateStorageKey(ctx context.Context, id, key string) error

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// IncrementDownloadCount atomically bumps the counter in SQL and returns
	// the new value. Never read-modify-write in application code: concurrent
	// issuance must not lose updates.
	IncrementDownloadCount(ctx context.Context, id string) (int64, error)
}

// DocumentFilter narrows ListByOffering. Empty fields match everything;
// Query is a case-insensitive substring match on title and filename.
type DocumentFilter struct {
	Category   string
	Visibility string
	Query      string
}

// MetaPatch carries the mutable document fields; nil means "leave as is".
type MetaPatch struct {
	Title      *string
	Category   *model.Category
	Visibility *model.Visibility
}

// MembershipRepository resolves a caller's standing with respect to an
// offering. Offerings and memberships are owned by the wider platform; the
// document service only reads them.
type MembershipRepository interface {
	// OfferingExists reports whether the offering is known.
	OfferingExists(ctx context.Context, offeringID string) (bool, error)

	// RoleForOffering returns the caller's role in the organization that
	// owns the offering, or sql.ErrNoRows when there is no membership.
	RoleForOffering(ctx context.Context, userID, offeringID string) (model.Role, error)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, e *model.AuditEntry) error
}

// SessionRepository resolves bearer tokens to user ids at the identity
// boundary.
type SessionRepository interface {
	// UserIDForToken returns the user owning a live session token, or
	// sql.ErrNoRows for unknown or expired tokens.
	UserIDForToken(ctx context.Context, token string) (string, error)
}
