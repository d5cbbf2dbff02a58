package report

import (
	"context"
	"fmt"
	"time"

	"github.com/worklens/triage/triage"
)

// Record wraps a completed workflow result for persistence. The workflow
// itself holds no cross-request state; callers persist records after Run
// returns and page through them for the user-facing history view.
type Record struct {
	ID        string        `json:"id"`
	UserRef   string        `json:"user_ref,omitempty"`
	Result    triage.Result `json:"result"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Store defines the persistence collaborator for workflow results.
type Store interface {
	// Save upserts a record, assigning an ID and timestamps when missing.
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns records for a user, newest first.
	List(ctx context.Context, userRef string, limit int) ([]*Record, error)

	// Delete removes a record by ID.
	Delete(ctx context.Context, id string) error
}

// GenerateRecordID returns a time-based record identifier.
func GenerateRecordID() string {
	return fmt.Sprintf("rep:%d", time.Now().UnixNano())
}
