// Package validate enforces the upload content rules: size ceiling, the
// single allowed MIME type and extension, and a magic-byte signature check
// once bytes exist. The product scope is PDF-only.
package validate

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// MaxSizeBytes is the upload ceiling (25 MiB), enforced at presign time
	// before any bytes are transferred.
	MaxSizeBytes = 25 << 20

	// AllowedMimeType is the only MIME type the service accepts.
	AllowedMimeType = "application/pdf"

	// AllowedExtension is matched case-insensitively against the filename.
	AllowedExtension = ".pdf"
)

// pdfSignature is the fixed magic prefix every PDF starts with.
var pdfSignature = []byte("%PDF-")

// Kind classifies a validation failure.
type Kind string

const (
	KindFileTooLarge    Kind = "FILE_TOO_LARGE"
	KindUnsupportedType Kind = "UNSUPPORTED_FILE_TYPE"
)

// Error is a typed validation failure carrying the HTTP status it maps to.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func tooLarge(size int64) *Error {
	return &Error{
		Kind:    KindFileTooLarge,
		Status:  413,
		Message: fmt.Sprintf("file size %d exceeds maximum of %d bytes", size, MaxSizeBytes),
	}
}

func unsupported(msg string) *Error {
	return &Error{Kind: KindUnsupportedType, Status: 415, Message: msg}
}

// CheckMeta runs the cheap presign-phase checks against client-declared
// metadata: size ceiling, declared MIME type, filename extension. It never
// sees file bytes; those do not exist yet at presign time.
func CheckMeta(filename, mimeType string, size int64) *Error {
	if size > MaxSizeBytes {
		return tooLarge(size)
	}
	if mimeType != AllowedMimeType {
		return unsupported(fmt.Sprintf("mime type %q is not allowed, expected %s", mimeType, AllowedMimeType))
	}
	if !strings.EqualFold(filepath.Ext(filename), AllowedExtension) {
		return unsupported(fmt.Sprintf("file extension %q is not allowed, expected %s", filepath.Ext(filename), AllowedExtension))
	}
	return nil
}

// CheckContent verifies the magic-byte signature of the uploaded bytes.
// It runs only at confirmation, after the client-side transfer, and closes
// the gap where declared MIME and extension pass but the content lies.
func CheckContent(head []byte) *Error {
	if len(head) < len(pdfSignature) || !bytes.Equal(head[:len(pdfSignature)], pdfSignature) {
		return unsupported("file content does not match the PDF signature")
	}
	return nil
}
