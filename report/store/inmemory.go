package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	errorskg "github.com/worklens/triage/errors"
	"github.com/worklens/triage/report"
)

// InMemoryStore implements report.Store using in-memory storage; mainly
// useful for tests and demos.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*report.Record
}

// NewInMemoryStore creates a new in-memory report store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]*report.Record),
	}
}

// Save upserts a record.
func (s *InMemoryStore) Save(ctx context.Context, rec *report.Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if rec.ID == "" {
		rec.ID = report.GenerateRecordID()
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *rec
	s.records[rec.ID] = &clone
	return nil
}

// Get retrieves a record by ID.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*report.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("report %s: %w", id, errorskg.ErrNotFound)
	}
	clone := *rec
	return &clone, nil
}

// List returns records for a user, newest first.
func (s *InMemoryStore) List(ctx context.Context, userRef string, limit int) ([]*report.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*report.Record, 0, len(s.records))
	for _, rec := range s.records {
		if userRef != "" && rec.UserRef != userRef {
			continue
		}
		clone := *rec
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a record by ID.
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("report %s: %w", id, errorskg.ErrNotFound)
	}
	delete(s.records, id)
	return nil
}
