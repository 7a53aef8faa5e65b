package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"docvault/internal/model"

	"github.com/stretchr/testify/assert"
)

// recordingAuditRepo captures inserts so the fire-and-forget goroutine can
// be observed deterministically.
type recordingAuditRepo struct {
	mu      sync.Mutex
	entries []*model.AuditEntry
	err     error
	done    chan struct{}
}

func (r *recordingAuditRepo) Insert(ctx context.Context, e *model.AuditEntry) error {
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
	close(r.done)
	return r.err
}

func TestAuditor_Record(t *testing.T) {
	repo := &recordingAuditRepo{done: make(chan struct{})}
	a := NewAuditor(repo)

	a.Record(model.AuditUpload, "user-1", "doc-1", "off-1", map[string]any{"filename": "a.pdf"})

	select {
	case <-repo.done:
	case <-time.After(2 * time.Second):
		t.Fatal("audit insert never happened")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Len(t, repo.entries, 1)
	e := repo.entries[0]
	assert.Equal(t, model.AuditUpload, e.Action)
	assert.Equal(t, "user-1", e.ActorID)
	assert.Equal(t, "doc-1", e.DocumentID)
	assert.Equal(t, "off-1", e.OfferingID)
	assert.NotEmpty(t, e.ID)
}

func TestAuditor_RecordSwallowsFailure(t *testing.T) {
	repo := &recordingAuditRepo{done: make(chan struct{}), err: errors.New("audit table gone")}
	a := NewAuditor(repo)

	// Record must not panic or propagate anything; it returns before the
	// insert even runs.
	a.Record(model.AuditDelete, "user-1", "doc-1", "off-1", nil)

	select {
	case <-repo.done:
	case <-time.After(2 * time.Second):
		t.Fatal("audit insert never happened")
	}
}
