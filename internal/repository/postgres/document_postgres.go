package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, offering_id, title, filename, mime_type, size_bytes,
	category, visibility, storage_key, download_count, checksum_sha256,
	uploaded_by, uploaded_at, updated_at`

// scanner abstracts *sql.Row and *sql.Rows for the shared row mapping.
type scanner interface {
	Scan(dest ...any) error
}

// scanDocument is the single place raw rows become model.Document values.
func scanDocument(s scanner) (*model.Document, error) {
	var d model.Document
	if err := s.Scan(
		&d.ID,
		&d.OfferingID,
		&d.Title,
		&d.Filename,
		&d.MimeType,
		&d.SizeBytes,
		&d.Category,
		&d.Visibility,
		&d.StorageKey,
		&d.DownloadCount,
		&d.ChecksumSHA256,
		&d.UploadedBy,
		&d.UploadedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	q := `
		INSERT INTO documents (id, offering_id, title, filename, mime_type, size_bytes,
			category, visibility, storage_key, download_count, checksum_sha256,
			uploaded_by, uploaded_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.OfferingID,
		doc.Title,
		doc.Filename,
		doc.MimeType,
		doc.SizeBytes,
		doc.Category,
		doc.Visibility,
		doc.StorageKey,
		doc.DownloadCount,
		doc.ChecksumSHA256,
		doc.UploadedBy,
		doc.UploadedAt,
		doc.UpdatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// FindByChecksum fetches the document with the given content hash within an offering.
func (r *DocumentPostgres) FindByChecksum(ctx context.Context, offeringID, checksum string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents
		WHERE offering_id = $1 AND checksum_sha256 = $2`
	return scanDocument(r.db.QueryRowContext(ctx, q, offeringID, checksum))
}

// ListByOffering returns an offering's documents matching the filter, newest first.
func (r *DocumentPostgres) ListByOffering(ctx context.Context, offeringID string, f repository.DocumentFilter) ([]model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE offering_id = $1`
	args := []any{offeringID}

	if f.Category != "" {
		args = append(args, f.Category)
		q += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if f.Visibility != "" {
		args = append(args, f.Visibility)
		q += fmt.Sprintf(" AND visibility = $%d", len(args))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		q += fmt.Sprintf(" AND (title ILIKE $%d OR filename ILIKE $%d)", len(args), len(args))
	}
	q += ` ORDER BY uploaded_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateMeta applies the non-nil patch fields and returns the updated row.
func (r *DocumentPostgres) UpdateMeta(ctx context.Context, id string, p repository.MetaPatch) (*model.Document, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}

	if p.Title != nil {
		args = append(args, *p.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if p.Category != nil {
		args = append(args, *p.Category)
		sets = append(sets, fmt.Sprintf("category = $%d", len(args)))
	}
	if p.Visibility != nil {
		args = append(args, *p.Visibility)
		sets = append(sets, fmt.Sprintf("visibility = $%d", len(args)))
	}

	args = append(args, id)
	q := fmt.Sprintf(`UPDATE documents SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), documentColumns)

	return scanDocument(r.db.QueryRowContext(ctx, q, args...))
}

// UpdateStorageKey rewrites the blob key for a document.
func (r *DocumentPostgres) UpdateStorageKey(ctx context.Context, id, key string) error {
	const q = `UPDATE documents SET storage_key = $1, updated_at = now() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, q, key, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	// Ignore rows affected: deletion is idempotent by contract.
	_, _ = res.RowsAffected()
	return nil
}

// IncrementDownloadCount bumps the counter atomically in SQL and returns the new value.
func (r *DocumentPostgres) IncrementDownloadCount(ctx context.Context, id string) (int64, error) {
	const q = `UPDATE documents SET download_count = download_count + 1
		WHERE id = $1 RETURNING download_count`
	var n int64
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
