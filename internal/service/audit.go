package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// Auditor records actions best-effort. Record returns immediately; the
// insert runs on its own goroutine with its own deadline, and a failure is
// logged and swallowed. An audit outage must never fail the operation that
// triggered it.
type Auditor struct {
	repo    repository.AuditRepository
	timeout time.Duration
}

// NewAuditor constructs an Auditor with a 5s insert deadline.
func NewAuditor(repo repository.AuditRepository) *Auditor {
	return &Auditor{repo: repo, timeout: 5 * time.Second}
}

// Record fires an audit entry without blocking the caller.
func (a *Auditor) Record(action model.AuditAction, actorID, documentID, offeringID string, metadata map[string]any) {
	entry := &model.AuditEntry{
		ID:         uuid.NewString(),
		Action:     action,
		ActorID:    actorID,
		DocumentID: documentID,
		OfferingID: offeringID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}

	go func() {
		// Detached from the request context: the response should not wait
		// on the audit write, and a cancelled request still gets audited.
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		if err := a.repo.Insert(ctx, entry); err != nil {
			logAuditFailure(entry, err)
		}
	}()
}

func logBlobCleanupFailure(key string, err error) {
	b, mErr := json.Marshal(map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": "error",
		"msg":   "blob_cleanup_failed",
		"key":   key,
		"error": err.Error(),
	})
	if mErr != nil {
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}

func logAuditFailure(e *model.AuditEntry, err error) {
	b, mErr := json.Marshal(map[string]any{
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		"level":  "error",
		"msg":    "audit_write_failed",
		"action": e.Action,
		"actor":  e.ActorID,
		"error":  err.Error(),
	})
	if mErr != nil {
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
