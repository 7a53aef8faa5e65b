package model

import "time"

// Category classifies a document within an offering's data room.
type Category string

const (
	CategoryFinancial Category = "financial"
	CategoryAppraisal Category = "appraisal"
	CategoryLegal     Category = "legal"
	CategoryTechnical Category = "technical"
	CategoryOther     Category = "other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFinancial, CategoryAppraisal, CategoryLegal, CategoryTechnical, CategoryOther:
		return true
	}
	return false
}

// Visibility controls whether a document is shown to all members or only
// to the offering's managers.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is one of the known visibility values.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Document represents a stored file belonging to exactly one offering.
// This is a pure domain model with no database-specific dependencies or tags.
//
// StorageKey points at the blob and is rewritten only by the explicit
// migration operation, never as a side effect of a read. ChecksumSHA256 is
// unique per offering: one row per distinct content, regardless of filename.
type Document struct {
	ID             string     `json:"id"`
	OfferingID     string     `json:"offering_id"`
	Title          string     `json:"title"`
	Filename       string     `json:"filename"`
	MimeType       string     `json:"mime_type"`
	SizeBytes      int64      `json:"size_bytes"`
	Category       Category   `json:"category"`
	Visibility     Visibility `json:"visibility"`
	StorageKey     string     `json:"storage_key"`
	DownloadCount  int64      `json:"download_count"`
	ChecksumSHA256 string     `json:"checksum_sha256"`
	UploadedBy     string     `json:"uploaded_by"`
	UploadedAt     time.Time  `json:"uploaded_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
