package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"docvault/internal/docpath"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/repository/postgres"
	"docvault/internal/storage"
	"docvault/internal/validate"
)

// PresignRequest is the client's declaration of the file it intends to
// upload. Everything in it is untrusted and re-checked.
type PresignRequest struct {
	Filename   string           `json:"filename"`
	MimeType   string           `json:"mimeType"`
	Size       int64            `json:"size"`
	Category   model.Category   `json:"category"`
	Visibility model.Visibility `json:"visibility"`
	Title      string           `json:"title,omitempty"`
}

// UploadMetadata is what the client must echo back verbatim at confirmation.
// The server validates the echoed values again rather than trusting them.
type UploadMetadata struct {
	Filename   string           `json:"filename"`
	MimeType   string           `json:"mimeType"`
	Size       int64            `json:"size"`
	Category   model.Category   `json:"category"`
	Visibility model.Visibility `json:"visibility"`
	Title      string           `json:"title,omitempty"`
}

// PresignResult carries the time-boxed write URL and the metadata contract.
type PresignResult struct {
	UploadURL string         `json:"uploadUrl"`
	Token     string         `json:"token"`
	Path      string         `json:"path"`
	Metadata  UploadMetadata `json:"metadata"`
}

// ConfirmRequest reports a completed client transfer.
type ConfirmRequest struct {
	Path       string           `json:"path"`
	Title      string           `json:"title"`
	Filename   string           `json:"filename"`
	Category   model.Category   `json:"category"`
	Visibility model.Visibility `json:"visibility"`
	MimeType   string           `json:"mimeType"`
	Size       int64            `json:"size"`
}

// UpdateRequest patches mutable document metadata; nil fields are untouched.
type UpdateRequest struct {
	Title      *string           `json:"title,omitempty"`
	Category   *model.Category   `json:"category,omitempty"`
	Visibility *model.Visibility `json:"visibility,omitempty"`
}

// SignedURLResult is a time-limited read link for a document.
type SignedURLResult struct {
	SignedURL     string    `json:"signed_url"`
	ExpiresIn     int       `json:"expires_in"`
	ExpiresAt     time.Time `json:"expires_at"`
	DownloadCount int64     `json:"download_count"`
}

// DownloadResult streams a document's bytes through the server.
type DownloadResult struct {
	Body     io.ReadCloser
	Filename string
	MimeType string
	Size     int64
}

// DocumentService defines the use cases of the per-offering document store.
type DocumentService interface {
	// List returns the offering's documents visible to the caller.
	List(ctx context.Context, userID, offeringID string, f repository.DocumentFilter) ([]model.Document, error)

	// Presign validates the declared upload and issues a time-boxed direct
	// write URL. No bytes pass through the server.
	Presign(ctx context.Context, userID, offeringID string, req PresignRequest) (*PresignResult, error)

	// Confirm commits a completed transfer: re-validates content (including
	// the signature check), dedups by checksum, and persists the document.
	// Every failing exit removes the uploaded blob.
	Confirm(ctx context.Context, userID, offeringID string, req ConfirmRequest) (*model.Document, error)

	// Update patches title/category/visibility.
	Update(ctx context.Context, userID, documentID string, req UpdateRequest) (*model.Document, error)

	// Delete removes blob and row. Deleting an absent document is a no-op.
	Delete(ctx context.Context, userID, documentID string) error

	// ViewURL and DownloadURL issue signed read links and bump the
	// download counter.
	ViewURL(ctx context.Context, userID, documentID string) (*SignedURLResult, error)
	DownloadURL(ctx context.Context, userID, documentID string) (*SignedURLResult, error)

	// Download proxies the document bytes and bumps the download counter.
	Download(ctx context.Context, userID, documentID string) (*DownloadResult, error)

	// Migrate relocates a legacy-stored blob to the canonical key and
	// rewrites storage_key. This is the only operation that rewrites it.
	Migrate(ctx context.Context, userID, documentID string) (*model.Document, error)
}

// documentService is the concrete implementation of DocumentService.
type documentService struct {
	store     storage.Storage
	resolver  *storage.Resolver
	paths     *docpath.Resolver
	repo      repository.DocumentRepository
	gate      *AccessGate
	audit     *Auditor
	uploadTTL time.Duration
	signedTTL time.Duration
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	store storage.Storage,
	resolver *storage.Resolver,
	paths *docpath.Resolver,
	repo repository.DocumentRepository,
	gate *AccessGate,
	audit *Auditor,
	uploadTTL, signedTTL time.Duration,
) DocumentService {
	return &documentService{
		store:     store,
		resolver:  resolver,
		paths:     paths,
		repo:      repo,
		gate:      gate,
		audit:     audit,
		uploadTTL: uploadTTL,
		signedTTL: signedTTL,
	}
}

func (s *documentService) List(ctx context.Context, userID, offeringID string, f repository.DocumentFilter) ([]model.Document, error) {
	if _, err := s.gate.Authorize(ctx, userID, offeringID, model.PermRead); err != nil {
		return nil, err
	}
	docs, err := s.repo.ListByOffering(ctx, offeringID, f)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	s.audit.Record(model.AuditList, userID, "", offeringID, nil)
	return docs, nil
}

func (s *documentService) Presign(ctx context.Context, userID, offeringID string, req PresignRequest) (*PresignResult, error) {
	if _, err := s.gate.Authorize(ctx, userID, offeringID, model.PermWrite); err != nil {
		return nil, err
	}
	if !req.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrBadRequest, req.Category)
	}
	if !req.Visibility.Valid() {
		return nil, fmt.Errorf("%w: unknown visibility %q", ErrBadRequest, req.Visibility)
	}
	// Cheap half of validation: reject bad size/type before any storage write.
	if vErr := validate.CheckMeta(req.Filename, req.MimeType, req.Size); vErr != nil {
		return nil, vErr
	}

	filename := docpath.GeneratedName(req.Filename, randomSuffix())
	key := s.paths.Canonical(offeringID, filename)

	uploadURL, err := s.store.PresignPut(ctx, key, s.uploadTTL)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &PresignResult{
		UploadURL: uploadURL,
		Token:     uuid.NewString(),
		Path:      key,
		Metadata: UploadMetadata{
			Filename:   filename,
			MimeType:   req.MimeType,
			Size:       req.Size,
			Category:   req.Category,
			Visibility: req.Visibility,
			Title:      req.Title,
		},
	}, nil
}

func (s *documentService) Confirm(ctx context.Context, userID, offeringID string, req ConfirmRequest) (*model.Document, error) {
	if _, err := s.gate.Authorize(ctx, userID, offeringID, model.PermWrite); err != nil {
		return nil, err
	}
	// The path's leading segment must be the offering being confirmed.
	// Without this check a write-capable caller could register, and later
	// delete, another offering's blob. The foreign blob is left untouched.
	if owner, _ := docpath.SplitKey(req.Path); owner != offeringID {
		return nil, fmt.Errorf("%w: path %q does not belong to offering %s", ErrBadRequest, req.Path, offeringID)
	}
	// The echoed metadata is re-validated, not trusted. The object is
	// already in the store on these exits, so rejection removes it.
	if !req.Category.Valid() {
		s.cleanupUploaded(ctx, req.Path)
		return nil, fmt.Errorf("%w: unknown category %q", ErrBadRequest, req.Category)
	}
	if !req.Visibility.Valid() {
		s.cleanupUploaded(ctx, req.Path)
		return nil, fmt.Errorf("%w: unknown visibility %q", ErrBadRequest, req.Visibility)
	}
	if vErr := validate.CheckMeta(req.Filename, req.MimeType, req.Size); vErr != nil {
		s.cleanupUploaded(ctx, req.Path)
		return nil, vErr
	}

	// Fetch the just-uploaded bytes back. The blob store may report a path
	// that resolves in legacy form; whichever candidate works is where the
	// blob actually lives.
	res, actualPath, err := s.resolver.Download(ctx, req.Path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("fetch uploaded object: %w", err)
	}
	defer res.Body.Close()

	// Clients can PUT more than they declared; cap the read at one byte
	// past the ceiling so oversize uploads are caught and removed.
	content, err := io.ReadAll(io.LimitReader(res.Body, validate.MaxSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read uploaded object: %w", err)
	}
	if int64(len(content)) > validate.MaxSizeBytes {
		s.cleanupBlob(ctx, actualPath)
		return nil, validate.CheckMeta(req.Filename, req.MimeType, int64(len(content)))
	}
	if vErr := validate.CheckContent(content); vErr != nil {
		s.cleanupBlob(ctx, actualPath)
		return nil, vErr
	}

	sum := sha256.Sum256(content)
	checksum := hex.EncodeToString(sum[:])

	// Fast-path dedup check. The unique constraint below is the guarantee.
	existing, err := s.repo.FindByChecksum(ctx, offeringID, checksum)
	if err == nil {
		s.cleanupBlob(ctx, actualPath)
		return nil, &DuplicateError{Existing: existing}
	}
	if !postgres.IsNoRows(err) {
		s.cleanupBlob(ctx, actualPath)
		return nil, fmt.Errorf("dedup lookup: %w", err)
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:             uuid.NewString(),
		OfferingID:     offeringID,
		Title:          req.Title,
		Filename:       docpath.SanitizeFilename(req.Filename),
		MimeType:       req.MimeType,
		SizeBytes:      int64(len(content)),
		Category:       req.Category,
		Visibility:     req.Visibility,
		StorageKey:     actualPath,
		ChecksumSHA256: checksum,
		UploadedBy:     userID,
		UploadedAt:     now,
		UpdatedAt:      now,
	}

	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		s.cleanupBlob(ctx, actualPath)
		if postgres.IsUniqueViolation(err) {
			// Lost the confirm race: another request inserted identical
			// content between our check and our insert.
			winner, findErr := s.repo.FindByChecksum(ctx, offeringID, checksum)
			if findErr == nil {
				return nil, &DuplicateError{Existing: winner}
			}
		}
		return nil, fmt.Errorf("persist document: %w", err)
	}

	s.audit.Record(model.AuditUpload, userID, stored.ID, offeringID, map[string]any{
		"filename": stored.Filename,
		"size":     stored.SizeBytes,
	})
	return stored, nil
}

func (s *documentService) Update(ctx context.Context, userID, documentID string, req UpdateRequest) (*model.Document, error) {
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.Authorize(ctx, userID, doc.OfferingID, model.PermWrite); err != nil {
		return nil, err
	}
	if req.Category != nil && !req.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrBadRequest, *req.Category)
	}
	if req.Visibility != nil && !req.Visibility.Valid() {
		return nil, fmt.Errorf("%w: unknown visibility %q", ErrBadRequest, *req.Visibility)
	}

	updated, err := s.repo.UpdateMeta(ctx, documentID, repository.MetaPatch{
		Title:      req.Title,
		Category:   req.Category,
		Visibility: req.Visibility,
	})
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("update document: %w", err)
	}

	s.audit.Record(model.AuditEdit, userID, documentID, doc.OfferingID, nil)
	return updated, nil
}

func (s *documentService) Delete(ctx context.Context, userID, documentID string) error {
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			// Idempotent: deleting an already-absent document succeeds.
			return nil
		}
		return err
	}
	if _, err := s.gate.Authorize(ctx, userID, doc.OfferingID, model.PermDelete); err != nil {
		return err
	}

	if _, err := s.resolver.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete blob: %w", err)
	}
	if err := s.repo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete document row: %w", err)
	}

	s.audit.Record(model.AuditDelete, userID, documentID, doc.OfferingID, map[string]any{
		"filename": doc.Filename,
	})
	return nil
}

func (s *documentService) ViewURL(ctx context.Context, userID, documentID string) (*SignedURLResult, error) {
	return s.signedURL(ctx, userID, documentID, model.AuditView)
}

func (s *documentService) DownloadURL(ctx context.Context, userID, documentID string) (*SignedURLResult, error) {
	return s.signedURL(ctx, userID, documentID, model.AuditDownload)
}

func (s *documentService) signedURL(ctx context.Context, userID, documentID string, action model.AuditAction) (*SignedURLResult, error) {
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.Authorize(ctx, userID, doc.OfferingID, model.PermRead); err != nil {
		return nil, err
	}

	url, _, err := s.resolver.PresignGet(ctx, doc.StorageKey, s.signedTTL)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("sign url: %w", err)
	}

	// Server-side issuance is what counts as a download; the client never
	// drives this number.
	count, err := s.repo.IncrementDownloadCount(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("increment download count: %w", err)
	}

	s.audit.Record(action, userID, documentID, doc.OfferingID, nil)

	now := time.Now().UTC()
	return &SignedURLResult{
		SignedURL:     url,
		ExpiresIn:     int(s.signedTTL.Seconds()),
		ExpiresAt:     now.Add(s.signedTTL),
		DownloadCount: count,
	}, nil
}

func (s *documentService) Download(ctx context.Context, userID, documentID string) (*DownloadResult, error) {
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.Authorize(ctx, userID, doc.OfferingID, model.PermRead); err != nil {
		return nil, err
	}

	res, _, err := s.resolver.Download(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("download blob: %w", err)
	}

	if _, err := s.repo.IncrementDownloadCount(ctx, documentID); err != nil {
		res.Body.Close()
		return nil, fmt.Errorf("increment download count: %w", err)
	}

	s.audit.Record(model.AuditDownload, userID, documentID, doc.OfferingID, nil)

	return &DownloadResult{
		Body:     res.Body,
		Filename: doc.Filename,
		MimeType: doc.MimeType,
		Size:     doc.SizeBytes,
	}, nil
}

func (s *documentService) Migrate(ctx context.Context, userID, documentID string) (*model.Document, error) {
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.Authorize(ctx, userID, doc.OfferingID, model.PermDelete); err != nil {
		return nil, err
	}

	_, filename := docpath.SplitKey(doc.StorageKey)
	canonical := s.paths.Canonical(doc.OfferingID, filename)

	// Locate the blob before touching anything; migration must never lose
	// the only copy.
	res, actualPath, err := s.resolver.Download(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("locate blob: %w", err)
	}
	res.Body.Close()

	if actualPath != canonical {
		if err := s.store.Copy(ctx, actualPath, canonical); err != nil {
			return nil, fmt.Errorf("copy blob: %w", err)
		}
		if err := s.store.Delete(ctx, actualPath); err != nil && !errors.Is(err, storage.ErrNotFound) {
			// The canonical copy exists; a stale source is only garbage,
			// not data loss. Log and move on.
			logBlobCleanupFailure(actualPath, err)
		}
	}

	if doc.StorageKey != canonical {
		if err := s.repo.UpdateStorageKey(ctx, documentID, canonical); err != nil {
			return nil, fmt.Errorf("update storage key: %w", err)
		}
	}

	s.audit.Record(model.AuditMigrate, userID, documentID, doc.OfferingID, map[string]any{
		"from": doc.StorageKey,
		"to":   canonical,
	})

	doc.StorageKey = canonical
	return doc, nil
}

func (s *documentService) findDocument(ctx context.Context, documentID string) (*model.Document, error) {
	doc, err := s.repo.FindByID(ctx, documentID)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return doc, nil
}

// cleanupBlob removes an orphaned upload best-effort. Cleanup failure does
// not change the outcome of the operation that triggered it.
func (s *documentService) cleanupBlob(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logBlobCleanupFailure(key, err)
	}
}

// cleanupUploaded removes a rejected upload whose exact location was never
// resolved, trying the key's fallback candidates.
func (s *documentService) cleanupUploaded(ctx context.Context, key string) {
	if _, err := s.resolver.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logBlobCleanupFailure(key, err)
	}
}

func randomSuffix() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is unrecoverable for url-safety purposes;
		// fall back to a time-derived suffix.
		return fmt.Sprintf("%06x", time.Now().UnixNano()&0xffffff)
	}
	return hex.EncodeToString(b)
}
