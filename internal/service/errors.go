package service

import (
	"errors"
	"fmt"

	"docvault/internal/model"
)

// Failure taxonomy of the document service. Validation failures carry their
// own type (validate.Error); everything else is one of these. Handlers map
// them to HTTP statuses in one place.
var (
	// ErrBadRequest marks malformed request shapes (unknown enum values,
	// missing fields).
	ErrBadRequest = errors.New("bad request")

	// ErrAccessDenied means the caller has no membership or an insufficient
	// role for the operation.
	ErrAccessDenied = errors.New("access denied")

	// ErrOfferingNotFound means the offering row does not exist.
	ErrOfferingNotFound = errors.New("offering not found")

	// ErrDocumentNotFound means the document row does not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrBlobNotFound means no blob was located after exhausting every
	// path candidate.
	ErrBlobNotFound = errors.New("stored file not found")
)

// DuplicateError reports that identical content already exists within the
// offering. Existing is the document that won.
type DuplicateError struct {
	Existing *model.Document
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate file content, existing document %s", e.Existing.ID)
}
