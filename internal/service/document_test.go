package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docvault/internal/docpath"
	"docvault/internal/model"
	"docvault/internal/repository"
	repoMocks "docvault/internal/repository/mocks"
	"docvault/internal/storage"
	storeMocks "docvault/internal/storage/mocks"
	"docvault/internal/validate"
)

const (
	testUser     = "user-1"
	testOffering = "off-1"
)

type fixture struct {
	store       *storeMocks.MockStorage
	repo        *repoMocks.MockDocumentRepository
	memberships *repoMocks.MockMembershipRepository
	auditRepo   *repoMocks.MockAuditRepository
	svc         DocumentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:       new(storeMocks.MockStorage),
		repo:        new(repoMocks.MockDocumentRepository),
		memberships: new(repoMocks.MockMembershipRepository),
		auditRepo:   new(repoMocks.MockAuditRepository),
	}
	// Audit inserts run on their own goroutine; tests don't pin them down.
	f.auditRepo.On("Insert", mock.Anything, mock.Anything).Return(nil).Maybe()

	paths := docpath.NewResolver("documents")
	f.svc = NewDocumentService(
		f.store,
		storage.NewResolver(f.store, paths),
		paths,
		f.repo,
		NewAccessGate(f.memberships),
		NewAuditor(f.auditRepo),
		10*time.Minute,
		time.Hour,
	)
	return f
}

func (f *fixture) member(role model.Role) {
	f.memberships.On("OfferingExists", mock.Anything, testOffering).Return(true, nil)
	f.memberships.On("RoleForOffering", mock.Anything, testUser, testOffering).Return(role, nil)
}

func storedDoc() *model.Document {
	now := time.Now().UTC()
	return &model.Document{
		ID:             uuid.NewString(),
		OfferingID:     testOffering,
		Title:          "Lease agreement",
		Filename:       "1700000000000_lease_ab12cd.pdf",
		MimeType:       "application/pdf",
		SizeBytes:      14,
		Category:       model.CategoryLegal,
		Visibility:     model.VisibilityPublic,
		StorageKey:     "off-1/documents/1700000000000_lease_ab12cd.pdf",
		ChecksumSHA256: "cafe",
		UploadedBy:     testUser,
		UploadedAt:     now,
		UpdatedAt:      now,
	}
}

func pdfBody(content []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(content))
}

func validPresignRequest() PresignRequest {
	return PresignRequest{
		Filename:   "lease.pdf",
		MimeType:   "application/pdf",
		Size:       1024,
		Category:   model.CategoryLegal,
		Visibility: model.VisibilityPublic,
		Title:      "Lease agreement",
	}
}

func TestDocumentService_Presign(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		var signedKey string
		f.store.On("PresignPut", ctx, mock.MatchedBy(func(key string) bool {
			signedKey = key
			return strings.HasPrefix(key, "off-1/documents/") && strings.HasSuffix(key, ".pdf")
		}), 10*time.Minute).Return("https://upload.example/put", nil)

		res, err := f.svc.Presign(ctx, testUser, testOffering, validPresignRequest())

		require.NoError(t, err)
		assert.Equal(t, "https://upload.example/put", res.UploadURL)
		assert.Equal(t, signedKey, res.Path)
		assert.NotEmpty(t, res.Token)
		// The metadata contract echoes the validated values, with the
		// generated stored filename.
		assert.Equal(t, "application/pdf", res.Metadata.MimeType)
		assert.Equal(t, int64(1024), res.Metadata.Size)
		assert.Equal(t, model.CategoryLegal, res.Metadata.Category)
		assert.True(t, strings.HasSuffix(res.Path, "/"+res.Metadata.Filename))
		f.store.AssertExpectations(t)
	})

	t.Run("oversize rejected before any URL is issued", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		req := validPresignRequest()
		req.Size = validate.MaxSizeBytes + 1

		_, err := f.svc.Presign(ctx, testUser, testOffering, req)

		var vErr *validate.Error
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, 413, vErr.Status)
		f.store.AssertNotCalled(t, "PresignPut", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong declared mime type", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		req := validPresignRequest()
		req.MimeType = "image/png"

		_, err := f.svc.Presign(ctx, testUser, testOffering, req)

		var vErr *validate.Error
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, 415, vErr.Status)
	})

	t.Run("unknown category", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		req := validPresignRequest()
		req.Category = "blueprints"

		_, err := f.svc.Presign(ctx, testUser, testOffering, req)
		assert.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("viewer cannot presign", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleViewer)

		_, err := f.svc.Presign(ctx, testUser, testOffering, validPresignRequest())
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("unknown offering", func(t *testing.T) {
		f := newFixture(t)
		f.memberships.On("OfferingExists", mock.Anything, testOffering).Return(false, nil)

		_, err := f.svc.Presign(ctx, testUser, testOffering, validPresignRequest())
		assert.ErrorIs(t, err, ErrOfferingNotFound)
	})
}

func confirmRequest(path string) ConfirmRequest {
	return ConfirmRequest{
		Path:       path,
		Title:      "Lease agreement",
		Filename:   "1700000000000_lease_ab12cd.pdf",
		Category:   model.CategoryLegal,
		Visibility: model.VisibilityPublic,
		MimeType:   "application/pdf",
		Size:       14,
	}
}

func TestDocumentService_Confirm(t *testing.T) {
	ctx := context.Background()
	canonical := "off-1/documents/1700000000000_lease_ab12cd.pdf"
	legacy := "off-1/1700000000000_lease_ab12cd.pdf"
	content := []byte("%PDF-1.7 lease")
	sum := sha256.Sum256(content)
	checksum := hex.EncodeToString(sum[:])

	t.Run("happy path sets checksum and actual path", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		f.store.On("Get", ctx, canonical).
			Return(pdfBody(content), storage.ObjectInfo{Key: canonical, Size: int64(len(content))}, nil)
		f.repo.On("FindByChecksum", ctx, testOffering, checksum).Return(nil, sql.ErrNoRows)
		f.repo.On("Create", ctx, mock.MatchedBy(func(d *model.Document) bool {
			return d.ChecksumSHA256 == checksum &&
				d.StorageKey == canonical &&
				d.SizeBytes == int64(len(content)) &&
				d.UploadedBy == testUser
		})).Return(storedDoc(), nil)

		doc, err := f.svc.Confirm(ctx, testUser, testOffering, confirmRequest(canonical))

		require.NoError(t, err)
		assert.NotNil(t, doc)
		f.store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		f.repo.AssertExpectations(t)
	})

	t.Run("blob found at legacy path is recorded there", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		f.store.On("Get", ctx, canonical).
			Return(nil, storage.ObjectInfo{}, storage.ErrNotFound)
		f.store.On("Get", ctx, legacy).
			Return(pdfBody(content), storage.ObjectInfo{Key: legacy, Size: int64(len(content))}, nil)
		f.repo.On("FindByChecksum", ctx, testOffering, checksum).Return(nil, sql.ErrNoRows)
		f.repo.On("Create", ctx, mock.MatchedBy(func(d *model.Document) bool {
			// storage_key records where the blob actually was, not the
			// originally presigned path.
			return d.StorageKey == legacy
		})).Return(storedDoc(), nil)

		_, err := f.svc.Confirm(ctx, testUser, testOffering, confirmRequest(canonical))
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("forged content rejected and blob removed", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		exe := []byte("MZ\x90\x00 pretending to be a pdf")
		f.store.On("Get", ctx, canonical).
			Return(pdfBody(exe), storage.ObjectInfo{Key: canonical}, nil)
		f.store.On("Delete", ctx, canonical).Return(nil)

		_, err := f.svc.Confirm(ctx, testUser, testOffering, confirmRequest(canonical))

		var vErr *validate.Error
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, 415, vErr.Status)
		f.store.AssertCalled(t, "Delete", ctx, canonical)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate content returns existing and removes blob", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		existing := storedDoc()
		f.store.On("Get", ctx, canonical).
			Return(pdfBody(content), storage.ObjectInfo{Key: canonical}, nil)
		f.store.On("Delete", ctx, canonical).Return(nil)
		f.repo.On("FindByChecksum", ctx, testOffering, checksum).Return(existing, nil)

		_, err := f.svc.Confirm(ctx, testUser, testOffering, confirmRequest(canonical))

		var dup *DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, existing.ID, dup.Existing.ID)
		f.store.AssertCalled(t, "Delete", ctx, canonical)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("race-lost insert is a duplicate, not a 500", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		winner := storedDoc()
		f.store.On("Get", ctx, canonical).
			Return(pdfBody(content), storage.ObjectInfo{Key: canonical}, nil)
		f.store.On("Delete", ctx, canonical).Return(nil)
		// First lookup sees nothing; the constraint rejects our insert; the
		// second lookup finds the concurrent winner.
		f.repo.On("FindByChecksum", ctx, testOffering, checksum).Return(nil, sql.ErrNoRows).Once()
		f.repo.On("Create", ctx, mock.Anything).
			Return(nil, &pgconn.PgError{Code: "23505", ConstraintName: "documents_offering_checksum_key"})
		f.repo.On("FindByChecksum", ctx, testOffering, checksum).Return(winner, nil).Once()

		_, err := f.svc.Confirm(ctx, testUser, testOffering, confirmRequest(canonical))

		var dup *DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, winner.ID, dup.Existing.ID)
		f.store.AssertCalled(t, "Delete", ctx, canonical)
	})

	t.Run("insert failure removes blob", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		f.store.On("Get", ctx, canonical).
			Return(pdfBody(content), storage.ObjectInfo{Key: canonical}, nil)
		f.store.On("Delete", ctx, canonical).Return(nil)
		f.repo.On("FindByChecksum", ctx, testOffering, checksum).Return(nil, sql.ErrNoRows)
		f.repo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db down"))

		_, err := f.svc.Confirm(ctx, testUser, testOffering, confirmRequest(canonical))

		assert.Error(t, err)
		f.store.AssertCalled(t, "Delete", ctx, canonical)
	})

	t.Run("no blob at any candidate", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		f.store.On("Get", ctx, canonical).Return(nil, storage.ObjectInfo{}, storage.ErrNotFound)
		f.store.On("Get", ctx, legacy).Return(nil, storage.ObjectInfo{}, storage.ErrNotFound)

		_, err := f.svc.Confirm(ctx, testUser, testOffering, confirmRequest(canonical))
		assert.ErrorIs(t, err, ErrBlobNotFound)
	})

	t.Run("echoed mime rejection removes the uploaded blob", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		f.store.On("Delete", ctx, canonical).Return(nil)

		req := confirmRequest(canonical)
		req.MimeType = "image/png"
		_, err := f.svc.Confirm(ctx, testUser, testOffering, req)

		var vErr *validate.Error
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, 415, vErr.Status)
		// The object is already in the store; rejection must not orphan it.
		f.store.AssertCalled(t, "Delete", ctx, canonical)
		f.store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("unknown category removes the uploaded blob", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		f.store.On("Delete", ctx, canonical).Return(nil)

		req := confirmRequest(canonical)
		req.Category = "memes"
		_, err := f.svc.Confirm(ctx, testUser, testOffering, req)

		assert.ErrorIs(t, err, ErrBadRequest)
		f.store.AssertCalled(t, "Delete", ctx, canonical)
	})

	t.Run("path under another offering is rejected untouched", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		foreign := "off-2/documents/1700000000000_lease_ab12cd.pdf"
		_, err := f.svc.Confirm(ctx, testUser, testOffering, confirmRequest(foreign))

		assert.ErrorIs(t, err, ErrBadRequest)
		// The foreign blob must be neither read nor deleted.
		f.store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		f.store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("client filename is sanitized before persisting", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		f.store.On("Get", ctx, canonical).
			Return(pdfBody(content), storage.ObjectInfo{Key: canonical, Size: int64(len(content))}, nil)
		f.repo.On("FindByChecksum", ctx, testOffering, checksum).Return(nil, sql.ErrNoRows)
		f.repo.On("Create", ctx, mock.MatchedBy(func(d *model.Document) bool {
			return d.Filename == "lease_agreement_.pdf"
		})).Return(storedDoc(), nil)

		req := confirmRequest(canonical)
		req.Filename = "lease agreement!.pdf"
		_, err := f.svc.Confirm(ctx, testUser, testOffering, req)

		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("viewer cannot confirm", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleViewer)

		_, err := f.svc.Confirm(ctx, testUser, testOffering, confirmRequest(canonical))
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("member lists with filters", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleViewer)

		filter := repository.DocumentFilter{Category: "legal", Query: "lease"}
		f.repo.On("ListByOffering", ctx, testOffering, filter).
			Return([]model.Document{*storedDoc()}, nil)

		docs, err := f.svc.List(ctx, testUser, testOffering, filter)

		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("non-member denied", func(t *testing.T) {
		f := newFixture(t)
		f.memberships.On("OfferingExists", mock.Anything, testOffering).Return(true, nil)
		f.memberships.On("RoleForOffering", mock.Anything, testUser, testOffering).
			Return(model.Role(""), sql.ErrNoRows)

		_, err := f.svc.List(ctx, testUser, testOffering, repository.DocumentFilter{})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestDocumentService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("editor updates metadata", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		doc := storedDoc()
		title := "Signed lease"
		f.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
		f.repo.On("UpdateMeta", ctx, doc.ID, repository.MetaPatch{Title: &title}).Return(doc, nil)

		_, err := f.svc.Update(ctx, testUser, doc.ID, UpdateRequest{Title: &title})
		assert.NoError(t, err)
	})

	t.Run("viewer denied", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleViewer)

		doc := storedDoc()
		title := "x"
		f.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)

		_, err := f.svc.Update(ctx, testUser, doc.ID, UpdateRequest{Title: &title})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("missing document", func(t *testing.T) {
		f := newFixture(t)

		f.repo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		_, err := f.svc.Update(ctx, testUser, "missing", UpdateRequest{})
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("manager deletes blob then row", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleManager)

		doc := storedDoc()
		f.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
		f.store.On("Delete", ctx, doc.StorageKey).Return(nil)
		f.repo.On("Delete", ctx, doc.ID).Return(nil)

		assert.NoError(t, f.svc.Delete(ctx, testUser, doc.ID))
		f.repo.AssertExpectations(t)
	})

	t.Run("absent document is a successful no-op", func(t *testing.T) {
		f := newFixture(t)

		f.repo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		assert.NoError(t, f.svc.Delete(ctx, testUser, "missing"))
		f.memberships.AssertNotCalled(t, "RoleForOffering", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("editor denied", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		doc := storedDoc()
		f.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)

		assert.ErrorIs(t, f.svc.Delete(ctx, testUser, doc.ID), ErrAccessDenied)
	})

	t.Run("legacy-stored blob is found and removed", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleManager)

		doc := storedDoc()
		legacy := "off-1/1700000000000_lease_ab12cd.pdf"
		f.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
		f.store.On("Delete", ctx, doc.StorageKey).Return(storage.ErrNotFound)
		f.store.On("Delete", ctx, legacy).Return(nil)
		f.repo.On("Delete", ctx, doc.ID).Return(nil)

		assert.NoError(t, f.svc.Delete(ctx, testUser, doc.ID))
		// Reads never rewrite storage_key.
		f.repo.AssertNotCalled(t, "UpdateStorageKey", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blob already gone still deletes row", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleManager)

		doc := storedDoc()
		f.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
		f.store.On("Delete", ctx, mock.Anything).Return(storage.ErrNotFound)
		f.repo.On("Delete", ctx, doc.ID).Return(nil)

		assert.NoError(t, f.svc.Delete(ctx, testUser, doc.ID))
		f.repo.AssertExpectations(t)
	})
}

func TestDocumentService_SignedURLs(t *testing.T) {
	ctx := context.Background()

	t.Run("view url increments counter", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleViewer)

		doc := storedDoc()
		f.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
		f.store.On("PresignGet", ctx, doc.StorageKey, time.Hour).
			Return("https://signed.example/doc", nil)
		f.repo.On("IncrementDownloadCount", ctx, doc.ID).Return(int64(3), nil)

		res, err := f.svc.ViewURL(ctx, testUser, doc.ID)

		require.NoError(t, err)
		assert.Equal(t, "https://signed.example/doc", res.SignedURL)
		assert.Equal(t, 3600, res.ExpiresIn)
		assert.Equal(t, int64(3), res.DownloadCount)
		assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), res.ExpiresAt, 5*time.Second)
	})

	t.Run("legacy fallback leaves metadata untouched", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleViewer)

		doc := storedDoc()
		doc.StorageKey = "off-1/1700000000000_lease_ab12cd.pdf" // legacy form
		canonical := "off-1/documents/1700000000000_lease_ab12cd.pdf"
		f.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
		f.store.On("PresignGet", ctx, doc.StorageKey, time.Hour).
			Return("", storage.ErrNotFound)
		f.store.On("PresignGet", ctx, canonical, time.Hour).
			Return("https://signed.example/migrated", nil)
		f.repo.On("IncrementDownloadCount", ctx, doc.ID).Return(int64(1), nil)

		res, err := f.svc.DownloadURL(ctx, testUser, doc.ID)

		require.NoError(t, err)
		assert.Equal(t, "https://signed.example/migrated", res.SignedURL)
		f.repo.AssertNotCalled(t, "UpdateStorageKey", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blob gone everywhere", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleViewer)

		doc := storedDoc()
		f.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
		f.store.On("PresignGet", ctx, mock.Anything, time.Hour).Return("", storage.ErrNotFound)

		_, err := f.svc.ViewURL(ctx, testUser, doc.ID)
		assert.ErrorIs(t, err, ErrBlobNotFound)
		f.repo.AssertNotCalled(t, "IncrementDownloadCount", mock.Anything, mock.Anything)
	})
}

func TestDocumentService_Download(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	f.member(model.RoleViewer)

	doc := storedDoc()
	content := []byte("%PDF-1.7 lease")
	f.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
	f.store.On("Get", ctx, doc.StorageKey).
		Return(pdfBody(content), storage.ObjectInfo{Key: doc.StorageKey, Size: int64(len(content))}, nil)
	f.repo.On("IncrementDownloadCount", ctx, doc.ID).Return(int64(1), nil)

	res, err := f.svc.Download(ctx, testUser, doc.ID)

	require.NoError(t, err)
	defer res.Body.Close()
	got, _ := io.ReadAll(res.Body)
	assert.Equal(t, content, got)
	assert.Equal(t, doc.Filename, res.Filename)
	assert.Equal(t, "application/pdf", res.MimeType)
}

func TestDocumentService_Migrate(t *testing.T) {
	ctx := context.Background()

	t.Run("legacy blob relocated and key rewritten", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleManager)

		doc := storedDoc()
		doc.StorageKey = "off-1/1700000000000_lease_ab12cd.pdf"
		canonical := "off-1/documents/1700000000000_lease_ab12cd.pdf"

		f.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
		f.store.On("Get", ctx, doc.StorageKey).
			Return(pdfBody([]byte("%PDF-1.7")), storage.ObjectInfo{Key: doc.StorageKey}, nil)
		f.store.On("Copy", ctx, doc.StorageKey, canonical).Return(nil)
		f.store.On("Delete", ctx, doc.StorageKey).Return(nil)
		f.repo.On("UpdateStorageKey", ctx, doc.ID, canonical).Return(nil)

		migrated, err := f.svc.Migrate(ctx, testUser, doc.ID)

		require.NoError(t, err)
		assert.Equal(t, canonical, migrated.StorageKey)
		f.repo.AssertExpectations(t)
		f.store.AssertExpectations(t)
	})

	t.Run("already canonical is a no-op", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleManager)

		doc := storedDoc()
		f.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)
		f.store.On("Get", ctx, doc.StorageKey).
			Return(pdfBody([]byte("%PDF-1.7")), storage.ObjectInfo{Key: doc.StorageKey}, nil)

		_, err := f.svc.Migrate(ctx, testUser, doc.ID)

		require.NoError(t, err)
		f.store.AssertNotCalled(t, "Copy", mock.Anything, mock.Anything, mock.Anything)
		f.repo.AssertNotCalled(t, "UpdateStorageKey", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("editor denied", func(t *testing.T) {
		f := newFixture(t)
		f.member(model.RoleEditor)

		doc := storedDoc()
		f.repo.On("FindByID", ctx, doc.ID).Return(doc, nil)

		_, err := f.svc.Migrate(ctx, testUser, doc.ID)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}
