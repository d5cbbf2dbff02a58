package store

import (
	"context"
	"errors"
	"testing"
	"time"

	errorskg "github.com/worklens/triage/errors"
	"github.com/worklens/triage/report"
	"github.com/worklens/triage/triage"
)

func sampleRecord(userRef string, created time.Time) *report.Record {
	return &report.Record{
		UserRef:   userRef,
		CreatedAt: created,
		Result: triage.Result{
			Category:  "wage",
			RiskScore: 55,
			RiskLevel: triage.RiskMedium,
		},
	}
}

func TestInMemorySaveAssignsIDAndTimestamps(t *testing.T) {
	s := NewInMemoryStore()
	rec := sampleRecord("user-1", time.Time{})
	if err := s.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID == "" {
		t.Error("expected generated ID")
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Error("expected timestamps set")
	}
}

func TestInMemorySaveNilRecord(t *testing.T) {
	s := NewInMemoryStore()
	if err := s.Save(context.Background(), nil); err == nil {
		t.Error("expected error for nil record")
	}
}

func TestInMemoryGetRoundTrip(t *testing.T) {
	s := NewInMemoryStore()
	rec := sampleRecord("user-1", time.Time{})
	if err := s.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Result.Category != "wage" || got.UserRef != "user-1" {
		t.Errorf("unexpected record: %+v", got)
	}

	// Stored record is isolated from caller mutation.
	got.Result.Category = "changed"
	again, _ := s.Get(context.Background(), rec.ID)
	if again.Result.Category != "wage" {
		t.Error("store leaked a mutable reference")
	}
}

func TestInMemoryGetNotFound(t *testing.T) {
	s := NewInMemoryStore()
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, errorskg.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryListFiltersAndOrders(t *testing.T) {
	s := NewInMemoryStore()
	base := time.Now().Add(-time.Hour)
	ctx := context.Background()

	older := sampleRecord("user-1", base)
	older.ID = "rep:1"
	newer := sampleRecord("user-1", base.Add(time.Minute))
	newer.ID = "rep:2"
	other := sampleRecord("user-2", base.Add(2*time.Minute))
	other.ID = "rep:3"
	for _, rec := range []*report.Record{older, newer, other} {
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	records, err := s.List(ctx, "user-1", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records for user-1, got %d", len(records))
	}
	if !records[0].CreatedAt.After(records[1].CreatedAt) {
		t.Error("expected newest-first ordering")
	}

	limited, err := s.List(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit applied, got %d", len(limited))
	}

	all, err := s.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected all records for empty user filter, got %d", len(all))
	}
}

func TestInMemoryDelete(t *testing.T) {
	s := NewInMemoryStore()
	rec := sampleRecord("user-1", time.Time{})
	ctx := context.Background()
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, rec.ID); !errors.Is(err, errorskg.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
