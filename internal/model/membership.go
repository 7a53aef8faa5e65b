package model

import "time"

// Role is a caller's role within the organization that owns an offering.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleEditor  Role = "editor"
	RoleManager Role = "manager"
	RoleOwner   Role = "owner"
)

// Level maps roles onto a strict ordering: viewer < editor < manager < owner.
// Unknown roles map to 0 and therefore satisfy no permission.
func (r Role) Level() int {
	switch r {
	case RoleViewer:
		return 1
	case RoleEditor:
		return 2
	case RoleManager:
		return 3
	case RoleOwner:
		return 4
	}
	return 0
}

// Permission is the minimum role level an operation requires.
type Permission int

// Permission values are role levels: a role satisfies a permission when its
// level is at least the permission's value.
const (
	// PermRead covers list, view-url, download-url and download.
	PermRead Permission = 1
	// PermWrite covers presign, confirm and metadata edits.
	PermWrite Permission = 2
	// PermDelete covers document deletion and storage-key migration.
	PermDelete Permission = 3
)

// Allows reports whether the role satisfies the required permission.
func (r Role) Allows(p Permission) bool {
	return r.Level() >= int(p)
}

// AuditAction names an auditable operation.
type AuditAction string

const (
	AuditList     AuditAction = "LIST"
	AuditUpload   AuditAction = "UPLOAD"
	AuditEdit     AuditAction = "EDIT"
	AuditDelete   AuditAction = "DELETE"
	AuditView     AuditAction = "VIEW"
	AuditDownload AuditAction = "DOWNLOAD"
	AuditMigrate  AuditAction = "MIGRATE"
)

// AuditEntry is one best-effort record of a mutating or sensitive-read
// action. DocumentID and OfferingID are optional depending on the action.
type AuditEntry struct {
	ID         string         `json:"id"`
	Action     AuditAction    `json:"action"`
	ActorID    string         `json:"actor_id"`
	DocumentID string         `json:"document_id,omitempty"`
	OfferingID string         `json:"offering_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
