package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// AuditPostgres persists audit entries.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

// Insert writes a single audit row. Document and offering ids are nullable.
func (r *AuditPostgres) Insert(ctx context.Context, e *model.AuditEntry) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO audit_logs (id, action, actor_id, document_id, offering_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, q,
		e.ID,
		e.Action,
		e.ActorID,
		nullString(e.DocumentID),
		nullString(e.OfferingID),
		meta,
		e.CreatedAt,
	)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
